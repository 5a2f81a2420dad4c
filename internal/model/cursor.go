package model

import (
	"fmt"
	"strings"
	"time"
)

// Cursor is the pagination token for the feed. It is the sort key of the
// last item on the previous page: creation timestamp plus the work ID as a
// tiebreaker, so two works sharing an identical timestamp neither repeat nor
// get skipped across page boundaries.
//
// The wire format is "<RFC3339Nano>|<id>". A bare timestamp (no "|") is also
// accepted for callers that only kept the old timestamp cursor; with an
// empty ID the query degrades to strictly-older-than-timestamp, which skips
// works whose timestamp equals the cursor exactly. That loss is documented
// and accepted — pass the composite form to avoid it.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// String encodes the cursor in its wire format.
func (c Cursor) String() string {
	ts := c.CreatedAt.UTC().Format(time.RFC3339Nano)
	if c.ID == "" {
		return ts
	}
	return ts + "|" + c.ID
}

// ParseCursor decodes a wire-format cursor. An empty string yields a nil
// cursor (first page).
func ParseCursor(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}

	ts, id, _ := strings.Cut(s, "|")
	at, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		// Second chance: older clients hold cursors with plain RFC3339
		// timestamps and no id part.
		at, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor %q: %w", s, err)
		}
	}

	return &Cursor{CreatedAt: at, ID: id}, nil
}
