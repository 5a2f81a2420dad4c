package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wilson400hong/slop-museum/internal/apperror"
	"github.com/wilson400hong/slop-museum/internal/model"
	"github.com/wilson400hong/slop-museum/internal/repository"
)

// ReactionStats is everything the work page needs to render the reaction
// bar: aggregate counts plus which kinds the caller has active (empty for
// anonymous viewers).
type ReactionStats struct {
	Counts      model.ReactionCounts `json:"counts"`
	UserActive  []model.ReactionKind `json:"userActive"`
	Total       int                  `json:"total"`
}

// ToggleService implements the toggle semantics shared by reactions and
// bookmarks: the first call turns the state on, the next identical call
// turns it off. There is no separate "add" and "remove" API.
type ToggleService struct {
	works     repository.WorkRepository
	reactions repository.ReactionRepository
	bookmarks repository.BookmarkRepository
	logger    *slog.Logger
}

func NewToggleService(
	works repository.WorkRepository,
	reactions repository.ReactionRepository,
	bookmarks repository.BookmarkRepository,
	logger *slog.Logger,
) *ToggleService {
	return &ToggleService{
		works:     works,
		reactions: reactions,
		bookmarks: bookmarks,
		logger:    logger,
	}
}

// ToggleReaction flips the (work, user, kind) reaction and reports the
// resulting state: true means the reaction is now active.
//
// Delete-first ordering makes the toggle self-healing under races: if two
// identical toggles interleave, one deletes and re-inserts, the other
// observes "already present" and treats it as active — neither errors and
// no duplicate row can exist.
func (s *ToggleService) ToggleReaction(ctx context.Context, userID, workID string, kind model.ReactionKind) (bool, error) {
	if !kind.Valid() {
		return false, apperror.ValidationFailed("kind", fmt.Sprintf("unknown reaction kind %q", kind))
	}
	if err := s.requireVisibleWork(ctx, workID); err != nil {
		return false, err
	}

	deleted, err := s.reactions.DeleteReaction(ctx, workID, userID, kind)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info("reaction removed", "work_id", workID, "kind", kind)
		return false, nil
	}

	// Whether this insert wins or loses a race, the reaction is active
	// afterwards; inserted=false just means someone else got there first.
	if _, err := s.reactions.InsertReaction(ctx, &model.Reaction{
		WorkID: workID,
		UserID: userID,
		Kind:   kind,
	}); err != nil {
		return false, err
	}
	s.logger.Info("reaction added", "work_id", workID, "kind", kind)
	return true, nil
}

// ToggleBookmark flips the user's bookmark on the work and reports the
// resulting state.
func (s *ToggleService) ToggleBookmark(ctx context.Context, userID, workID string) (bool, error) {
	if err := s.requireVisibleWork(ctx, workID); err != nil {
		return false, err
	}

	deleted, err := s.bookmarks.DeleteBookmark(ctx, workID, userID)
	if err != nil {
		return false, err
	}
	if deleted {
		return false, nil
	}

	if _, err := s.bookmarks.InsertBookmark(ctx, &model.Bookmark{
		WorkID: workID,
		UserID: userID,
	}); err != nil {
		return false, err
	}
	return true, nil
}

// WorkReactionStats returns the aggregate counts for one work plus the
// caller's active kinds. callerID may be empty for anonymous viewers.
func (s *ToggleService) WorkReactionStats(ctx context.Context, workID, callerID string) (*ReactionStats, error) {
	if err := s.requireVisibleWork(ctx, workID); err != nil {
		return nil, err
	}

	counts, err := s.reactions.ReactionCounts(ctx, []string{workID})
	if err != nil {
		return nil, err
	}

	stats := &ReactionStats{
		Counts:     counts[workID],
		UserActive: []model.ReactionKind{},
	}
	stats.Total = stats.Counts.Total()

	if callerID != "" {
		kinds, err := s.reactions.UserReactionKinds(ctx, workID, callerID)
		if err != nil {
			return nil, err
		}
		stats.UserActive = kinds
	}
	return stats, nil
}

// IsBookmarked reports whether the caller has the work bookmarked.
func (s *ToggleService) IsBookmarked(ctx context.Context, workID, callerID string) (bool, error) {
	if err := s.requireVisibleWork(ctx, workID); err != nil {
		return false, err
	}
	return s.bookmarks.IsBookmarked(ctx, workID, callerID)
}

func (s *ToggleService) requireVisibleWork(ctx context.Context, workID string) error {
	work, err := s.works.GetWork(ctx, workID)
	if err != nil {
		return err
	}
	if work.Hidden {
		return apperror.NotFound("work", workID)
	}
	return nil
}
