package filestore

import (
	"context"
	"time"

	"github.com/rs/xid"

	"github.com/wilson400hong/slop-museum/internal/model"
)

// InsertReaction adds the (work, user, kind) row unless it already exists.
// The mutex plays the role sqlite's UNIQUE constraint plays: inside the
// lock, check-then-append cannot race.
func (s *Store) InsertReaction(ctx context.Context, reaction *model.Reaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.doc.Reactions {
		if r.WorkID == reaction.WorkID && r.UserID == reaction.UserID && r.Kind == reaction.Kind {
			return false, nil
		}
	}

	reaction.ID = xid.New().String()
	reaction.CreatedAt = time.Now().UTC()
	s.doc.Reactions = append(s.doc.Reactions, *reaction)
	return true, s.save()
}

func (s *Store) DeleteReaction(ctx context.Context, workID, userID string, kind model.ReactionKind) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.doc.Reactions {
		if r.WorkID == workID && r.UserID == userID && r.Kind == kind {
			s.doc.Reactions = append(s.doc.Reactions[:i], s.doc.Reactions[i+1:]...)
			return true, s.save()
		}
	}
	return false, nil
}

func (s *Store) ReactionCounts(ctx context.Context, workIDs []string) (map[string]model.ReactionCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]bool, len(workIDs))
	for _, id := range workIDs {
		wanted[id] = true
	}

	counts := make(map[string]model.ReactionCounts)
	for _, r := range s.doc.Reactions {
		if !wanted[r.WorkID] {
			continue
		}
		c := counts[r.WorkID]
		c.Add(r.Kind, 1)
		counts[r.WorkID] = c
	}
	return counts, nil
}

func (s *Store) UserReactionKinds(ctx context.Context, workID, userID string) ([]model.ReactionKind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kinds := make([]model.ReactionKind, 0)
	for _, r := range s.doc.Reactions {
		if r.WorkID == workID && r.UserID == userID {
			kinds = append(kinds, r.Kind)
		}
	}
	return kinds, nil
}
