package model

import "time"

// ReportReason is the fixed set of reasons a user can report a work for.
type ReportReason string

const (
	ReasonMalicious     ReportReason = "malicious"
	ReasonSpam          ReportReason = "spam"
	ReasonInappropriate ReportReason = "inappropriate"
)

// Valid reports whether r is one of the known reasons.
func (r ReportReason) Valid() bool {
	switch r {
	case ReasonMalicious, ReasonSpam, ReasonInappropriate:
		return true
	default:
		return false
	}
}

// ReportStatus is the lifecycle state of a report. Transitions only go
// pending→reviewed or pending→dismissed, never backwards.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportReviewed  ReportStatus = "reviewed"
	ReportDismissed ReportStatus = "dismissed"
)

// Report is a user's complaint about a work, waiting in the moderation
// queue until an admin resolves it.
type Report struct {
	ID         string       `json:"id"`
	WorkID     string       `json:"workId"`
	ReporterID string       `json:"reporterId"`
	Reason     ReportReason `json:"reason"`
	Status     ReportStatus `json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// ReportedWork is the work summary shown next to a pending report in the
// admin queue. When the work was already deleted the summary is a
// placeholder, so the queue never dereferences a dangling work ID.
type ReportedWork struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	PreviewImageURL string `json:"previewImageUrl,omitempty"`
	Hidden          bool   `json:"hidden"`
	UserID          string `json:"userId,omitempty"`
	Deleted         bool   `json:"deleted"`
}

// PendingReport is a Report joined with its work summary and the reporter's
// display name, ready for the admin dashboard.
type PendingReport struct {
	Report
	Work         ReportedWork `json:"work"`
	ReporterName string       `json:"reporterName"`
}
