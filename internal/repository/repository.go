// Package repository defines the persistence adapter contract.
//
// Two implementations exist: repository/sqlite (the durable backend) and
// repository/filestore (a JSON-document mock for local development). The
// service layer only ever sees these interfaces, so the two backends cannot
// leak distinct semantics upward — anything one does observably differently
// from the other is a bug in the backend, not a feature.
package repository

import (
	"context"

	"github.com/wilson400hong/slop-museum/internal/model"
)

// FeedOptions parameterises the paginated, tag-filtered feed query.
//
// Cursor: nil means first page; otherwise the composite (created_at, id)
// sort key of the last item of the previous page, exclusive.
// Tags: OR semantics — a work qualifies if its tag set intersects this set.
// Empty means no tag filter.
// Limit: page size, already clamped by the service.
type FeedOptions struct {
	Cursor *model.Cursor
	Tags   []string
	Limit  int
}

// WorkRepository stores works and the (work, tag) join rows.
type WorkRepository interface {
	// CreateWork inserts the work and its tag attachments in one logical
	// step. The work's ID and CreatedAt are generated here.
	CreateWork(ctx context.Context, work *model.Work, tagIDs []int64) error

	// GetWork fetches a single work, hidden or not. Visibility policy is
	// the caller's concern.
	GetWork(ctx context.Context, id string) (*model.Work, error)

	// ListFeed returns non-hidden works ordered by (created_at DESC,
	// id DESC), after the cursor, optionally restricted to works carrying
	// at least one of the named tags.
	ListFeed(ctx context.Context, opts FeedOptions) ([]model.Work, error)

	// ListWorksByUser returns a user's non-hidden works, newest first.
	ListWorksByUser(ctx context.Context, userID string) ([]model.Work, error)

	// WorkIDsByUser returns the IDs of all of a user's non-hidden works.
	WorkIDsByUser(ctx context.Context, userID string) ([]string, error)

	// ListBookmarkedWorks returns the non-hidden works the user has
	// bookmarked, most recently bookmarked first.
	ListBookmarkedWorks(ctx context.Context, userID string) ([]model.Work, error)

	// SetWorkHidden flips the moderation visibility flag.
	SetWorkHidden(ctx context.Context, id string, hidden bool) error

	// DeleteWork removes the work permanently. Tag joins, reactions and
	// bookmarks go with it; report rows survive and are filtered by
	// existence checks when listed.
	DeleteWork(ctx context.Context, id string) error
}

// TagRepository reads the tag vocabulary.
type TagRepository interface {
	ListTags(ctx context.Context) ([]model.Tag, error)

	// TagsByName resolves names to tag rows. Unknown names are simply
	// absent from the result; the caller decides whether that's an error.
	TagsByName(ctx context.Context, names []string) ([]model.Tag, error)

	// TagsForWorks returns the resolved tag list per work ID.
	TagsForWorks(ctx context.Context, workIDs []string) (map[string][]model.Tag, error)
}

// ReactionRepository stores (work, user, kind) reaction rows.
//
// TOGGLE INVARIANT: at most one row per (work, user, kind) triple. The
// backend MUST enforce this with a uniqueness constraint (or equivalent
// serialization) so that two concurrent identical inserts cannot leave two
// rows — the loser of the race observes "already present" and no row is
// duplicated.
type ReactionRepository interface {
	// InsertReaction adds a reaction row. Returns false (and no error) if
	// the row already existed — the duplicate is swallowed as a no-op.
	InsertReaction(ctx context.Context, reaction *model.Reaction) (inserted bool, err error)

	// DeleteReaction removes the row for the triple if present. Returns
	// whether a row was actually deleted.
	DeleteReaction(ctx context.Context, workID, userID string, kind model.ReactionKind) (deleted bool, err error)

	// ReactionCounts aggregates per-kind counts for the given works.
	// Works nobody reacted to are absent from the map.
	ReactionCounts(ctx context.Context, workIDs []string) (map[string]model.ReactionCounts, error)

	// UserReactionKinds returns the kinds the user currently has active on
	// the work.
	UserReactionKinds(ctx context.Context, workID, userID string) ([]model.ReactionKind, error)
}

// BookmarkRepository stores (work, user) bookmark rows under the same
// uniqueness discipline as reactions, minus the kind dimension.
type BookmarkRepository interface {
	InsertBookmark(ctx context.Context, bookmark *model.Bookmark) (inserted bool, err error)
	DeleteBookmark(ctx context.Context, workID, userID string) (deleted bool, err error)
	IsBookmarked(ctx context.Context, workID, userID string) (bool, error)
}

// ReportRepository stores moderation reports.
type ReportRepository interface {
	CreateReport(ctx context.Context, report *model.Report) error
	GetReport(ctx context.Context, id string) (*model.Report, error)

	// ListPendingReports returns pending reports newest first.
	ListPendingReports(ctx context.Context) ([]model.Report, error)

	// TransitionReport moves the report from ReportPending to `to`,
	// conditionally: if the report is no longer pending the update affects
	// zero rows and the method returns false. This makes the
	// pending-precondition race-safe — two admins resolving the same
	// report cannot both win.
	TransitionReport(ctx context.Context, id string, to model.ReportStatus) (done bool, err error)
}

// UserRepository stores accounts.
type UserRepository interface {
	// UpsertUser creates the user on first login and refreshes profile
	// fields on subsequent logins, keyed by (provider, provider_id).
	// The user's internal ID is populated either way.
	UpsertUser(ctx context.Context, user *model.User) error

	GetUserByID(ctx context.Context, id string) (*model.User, error)

	// UsersByID batch-fetches users for feed enrichment. Missing IDs are
	// absent from the map.
	UsersByID(ctx context.Context, ids []string) (map[string]model.User, error)

	// SetUserBanned flips the banned flag.
	SetUserBanned(ctx context.Context, id string, banned bool) error
}

// Store is the full persistence adapter — everything a backend must provide.
// Services depend on the narrow interfaces above; only the wiring layer
// (internal/server) holds a Store.
type Store interface {
	WorkRepository
	TagRepository
	ReactionRepository
	BookmarkRepository
	ReportRepository
	UserRepository

	Close() error
}
