// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// WorkKind discriminates the two submission types.
//
// A "link" work points at something hosted elsewhere; an "embedded-code"
// work carries its own HTML/CSS/JS payload which we render into a sandbox
// document. The kind decides which payload fields are meaningful — a link
// work has an empty code payload and vice versa. That invariant is enforced
// at submission time, not by the type system.
type WorkKind string

const (
	WorkKindLink WorkKind = "link"
	WorkKindCode WorkKind = "embedded-code"
)

// Valid reports whether k is one of the known kinds.
func (k WorkKind) Valid() bool {
	return k == WorkKindLink || k == WorkKindCode
}

// MaxCodeBytes is the combined byte budget for the three code blobs of an
// embedded-code work. Measured with len() on the raw strings (bytes, not
// runes) so the limit bounds storage, not display width.
const MaxCodeBytes = 500 * 1024

// Work is a user-submitted item: either an external link or an embedded
// HTML/CSS/JS snippet.
//
// UserID is retained even for anonymous works (moderation needs it), but
// anonymous works never expose their owner through the API — the service
// layer blanks the field before responding.
//
// Works are immutable after creation except for the Hidden flag, which only
// moderation flips. Hidden works disappear from every public listing but
// stay in storage for audit.
type Work struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId,omitempty"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Kind            WorkKind  `json:"kind"`
	URL             string    `json:"url,omitempty"`
	CodeHTML        string    `json:"codeHtml,omitempty"`
	CodeCSS         string    `json:"codeCss,omitempty"`
	CodeJS          string    `json:"codeJs,omitempty"`
	SandboxURL      string    `json:"sandboxUrl,omitempty"`
	PreviewImageURL string    `json:"previewImageUrl,omitempty"`
	Anonymous       bool      `json:"anonymous"`
	Hidden          bool      `json:"hidden"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CodeBytes returns the combined byte length of the code payload.
func (w *Work) CodeBytes() int {
	return len(w.CodeHTML) + len(w.CodeCSS) + len(w.CodeJS)
}

// EnrichedWork is a Work decorated with everything a feed entry needs:
// the resolved tag list, per-kind reaction counts (all five kinds always
// present, zero-valued when nobody reacted), and the owner profile when the
// work isn't anonymous.
type EnrichedWork struct {
	Work
	Owner          *User          `json:"user,omitempty"`
	Tags           []Tag          `json:"tags"`
	ReactionCounts ReactionCounts `json:"reactionsCount"`
}
