package model

import "time"

// ReactionKind is one of the five fixed reactions a user can leave on a work.
type ReactionKind string

const (
	ReactionHilarious ReactionKind = "hilarious"
	ReactionMindBlown ReactionKind = "mind_blown"
	ReactionCool      ReactionKind = "cool"
	ReactionWTF       ReactionKind = "wtf"
	ReactionPromising ReactionKind = "promising"
)

// ReactionKinds lists every kind in a stable order. Counts and stats iterate
// this so all five kinds always appear in responses, zero-valued or not.
var ReactionKinds = []ReactionKind{
	ReactionHilarious,
	ReactionMindBlown,
	ReactionCool,
	ReactionWTF,
	ReactionPromising,
}

// Valid reports whether k is one of the five known kinds.
func (k ReactionKind) Valid() bool {
	switch k {
	case ReactionHilarious, ReactionMindBlown, ReactionCool, ReactionWTF, ReactionPromising:
		return true
	default:
		return false
	}
}

// Reaction is a (work, user, kind) triple. Presence of the row is the
// "active" state — toggling off deletes it, so at most one row ever exists
// per triple. The storage layer enforces that with a uniqueness constraint.
type Reaction struct {
	ID        string       `json:"id"`
	WorkID    string       `json:"workId"`
	UserID    string       `json:"userId"`
	Kind      ReactionKind `json:"kind"`
	Anonymous bool         `json:"anonymous"`
	CreatedAt time.Time    `json:"createdAt"`
}

// ReactionCounts holds per-kind aggregate counts for one work (or one user's
// whole catalogue). Always derived from raw reaction rows, never stored.
type ReactionCounts struct {
	Hilarious int `json:"hilarious"`
	MindBlown int `json:"mind_blown"`
	Cool      int `json:"cool"`
	WTF       int `json:"wtf"`
	Promising int `json:"promising"`
}

// Add increments the counter for kind by n. Unknown kinds are ignored.
func (c *ReactionCounts) Add(kind ReactionKind, n int) {
	switch kind {
	case ReactionHilarious:
		c.Hilarious += n
	case ReactionMindBlown:
		c.MindBlown += n
	case ReactionCool:
		c.Cool += n
	case ReactionWTF:
		c.WTF += n
	case ReactionPromising:
		c.Promising += n
	}
}

// Get returns the counter for kind.
func (c *ReactionCounts) Get(kind ReactionKind) int {
	switch kind {
	case ReactionHilarious:
		return c.Hilarious
	case ReactionMindBlown:
		return c.MindBlown
	case ReactionCool:
		return c.Cool
	case ReactionWTF:
		return c.WTF
	case ReactionPromising:
		return c.Promising
	default:
		return 0
	}
}

// Total sums all five counters.
func (c *ReactionCounts) Total() int {
	return c.Hilarious + c.MindBlown + c.Cool + c.WTF + c.Promising
}
