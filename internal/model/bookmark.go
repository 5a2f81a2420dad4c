package model

import "time"

// Bookmark is a (work, user) pair. Like reactions, presence of the row is
// the state; the storage layer guarantees at most one row per pair.
type Bookmark struct {
	WorkID    string    `json:"workId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
