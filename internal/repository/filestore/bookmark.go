package filestore

import (
	"context"
	"time"

	"github.com/wilson400hong/slop-museum/internal/model"
)

func (s *Store) InsertBookmark(ctx context.Context, bookmark *model.Bookmark) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.doc.Bookmarks {
		if b.WorkID == bookmark.WorkID && b.UserID == bookmark.UserID {
			return false, nil
		}
	}

	bookmark.CreatedAt = time.Now().UTC()
	s.doc.Bookmarks = append(s.doc.Bookmarks, *bookmark)
	return true, s.save()
}

func (s *Store) DeleteBookmark(ctx context.Context, workID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, b := range s.doc.Bookmarks {
		if b.WorkID == workID && b.UserID == userID {
			s.doc.Bookmarks = append(s.doc.Bookmarks[:i], s.doc.Bookmarks[i+1:]...)
			return true, s.save()
		}
	}
	return false, nil
}

func (s *Store) IsBookmarked(ctx context.Context, workID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.doc.Bookmarks {
		if b.WorkID == workID && b.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}
