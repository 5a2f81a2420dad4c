package model

// Tag is a named category from a small, seedable vocabulary. Works reference
// tags through a (work, tag) join — tags are shared, never owned by a work.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SeedTagNames is the default vocabulary installed by migrations on an empty
// store. The set is extensible; submissions just have to reference names
// that exist.
var SeedTagNames = []string{"game", "tool", "art", "music", "useless", "funny"}

// Tag cardinality limits for a submission.
const (
	MinWorkTags = 1
	MaxWorkTags = 3
)
