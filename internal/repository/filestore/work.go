package filestore

import (
	"context"
	"sort"
	"time"

	"github.com/rs/xid"

	"github.com/wilson400hong/slop-museum/internal/apperror"
	"github.com/wilson400hong/slop-museum/internal/model"
	"github.com/wilson400hong/slop-museum/internal/repository"
)

func (s *Store) CreateWork(ctx context.Context, work *model.Work, tagIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work.ID = xid.New().String()
	work.CreatedAt = time.Now().UTC()

	s.doc.Works = append(s.doc.Works, *work)
	s.doc.WorkTags[work.ID] = append([]int64(nil), tagIDs...)
	return s.save()
}

func (s *Store) GetWork(ctx context.Context, id string) (*model.Work, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w := s.findWork(id); w != nil {
		out := *w
		return &out, nil
	}
	return nil, apperror.NotFound("work", id)
}

// findWork returns a pointer into the document slice, valid only under s.mu.
func (s *Store) findWork(id string) *model.Work {
	for i := range s.doc.Works {
		if s.doc.Works[i].ID == id {
			return &s.doc.Works[i]
		}
	}
	return nil
}

func (s *Store) ListFeed(ctx context.Context, opts repository.FeedOptions) ([]model.Work, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tagIDs map[int64]bool
	if len(opts.Tags) > 0 {
		tagIDs = make(map[int64]bool, len(opts.Tags))
		wanted := make(map[string]bool, len(opts.Tags))
		for _, name := range opts.Tags {
			wanted[name] = true
		}
		for _, tag := range s.doc.Tags {
			if wanted[tag.Name] {
				tagIDs[tag.ID] = true
			}
		}
	}

	works := make([]model.Work, 0)
	for _, w := range s.doc.Works {
		if w.Hidden {
			continue
		}
		if opts.Cursor != nil && !beforeCursor(w, opts.Cursor) {
			continue
		}
		if tagIDs != nil && !hasAnyTag(s.doc.WorkTags[w.ID], tagIDs) {
			continue
		}
		works = append(works, w)
	}

	sortNewestFirst(works)
	if opts.Limit > 0 && len(works) > opts.Limit {
		works = works[:opts.Limit]
	}
	return works, nil
}

// beforeCursor reports whether w sorts strictly after the cursor position,
// i.e. belongs on a later page. Matches the sqlite predicate: older
// timestamp wins outright; an equal timestamp falls back to the ID
// tiebreaker, and a bare cursor (no ID) excludes equal timestamps entirely.
func beforeCursor(w model.Work, c *model.Cursor) bool {
	if w.CreatedAt.Before(c.CreatedAt) {
		return true
	}
	if c.ID != "" && w.CreatedAt.Equal(c.CreatedAt) && w.ID < c.ID {
		return true
	}
	return false
}

func hasAnyTag(attached []int64, wanted map[int64]bool) bool {
	for _, id := range attached {
		if wanted[id] {
			return true
		}
	}
	return false
}

func sortNewestFirst(works []model.Work) {
	sort.Slice(works, func(i, j int) bool {
		if !works[i].CreatedAt.Equal(works[j].CreatedAt) {
			return works[i].CreatedAt.After(works[j].CreatedAt)
		}
		return works[i].ID > works[j].ID
	})
}

func (s *Store) ListWorksByUser(ctx context.Context, userID string) ([]model.Work, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	works := make([]model.Work, 0)
	for _, w := range s.doc.Works {
		if w.UserID == userID && !w.Hidden {
			works = append(works, w)
		}
	}
	sortNewestFirst(works)
	return works, nil
}

func (s *Store) WorkIDsByUser(ctx context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0)
	for _, w := range s.doc.Works {
		if w.UserID == userID && !w.Hidden {
			ids = append(ids, w.ID)
		}
	}
	return ids, nil
}

func (s *Store) ListBookmarkedWorks(ctx context.Context, userID string) ([]model.Work, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Collect the user's bookmarks newest first, then resolve each to its
	// work, skipping hidden and deleted ones.
	marks := make([]model.Bookmark, 0)
	for _, b := range s.doc.Bookmarks {
		if b.UserID == userID {
			marks = append(marks, b)
		}
	}
	sort.Slice(marks, func(i, j int) bool {
		return marks[i].CreatedAt.After(marks[j].CreatedAt)
	})

	works := make([]model.Work, 0, len(marks))
	for _, b := range marks {
		if w := s.findWork(b.WorkID); w != nil && !w.Hidden {
			works = append(works, *w)
		}
	}
	return works, nil
}

func (s *Store) SetWorkHidden(ctx context.Context, id string, hidden bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.findWork(id)
	if w == nil {
		return apperror.NotFound("work", id)
	}
	w.Hidden = hidden
	return s.save()
}

// DeleteWork removes the work and everything attached to it. The sqlite
// backend gets this cascade from ON DELETE CASCADE; here we do it by hand.
// Reports referencing the work deliberately stay.
func (s *Store) DeleteWork(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.doc.Works {
		if s.doc.Works[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apperror.NotFound("work", id)
	}

	s.doc.Works = append(s.doc.Works[:idx], s.doc.Works[idx+1:]...)
	delete(s.doc.WorkTags, id)

	reactions := s.doc.Reactions[:0]
	for _, r := range s.doc.Reactions {
		if r.WorkID != id {
			reactions = append(reactions, r)
		}
	}
	s.doc.Reactions = reactions

	bookmarks := s.doc.Bookmarks[:0]
	for _, b := range s.doc.Bookmarks {
		if b.WorkID != id {
			bookmarks = append(bookmarks, b)
		}
	}
	s.doc.Bookmarks = bookmarks

	return s.save()
}
