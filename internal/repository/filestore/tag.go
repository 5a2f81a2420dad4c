package filestore

import (
	"context"
	"sort"

	"github.com/wilson400hong/slop-museum/internal/model"
)

func (s *Store) ListTags(ctx context.Context) ([]model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags := append([]model.Tag(nil), s.doc.Tags...)
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (s *Store) TagsByName(ctx context.Context, names []string) ([]model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	tags := make([]model.Tag, 0, len(names))
	for _, tag := range s.doc.Tags {
		if wanted[tag.Name] {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

func (s *Store) TagsForWorks(ctx context.Context, workIDs []string) (map[string][]model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[int64]model.Tag, len(s.doc.Tags))
	for _, tag := range s.doc.Tags {
		byID[tag.ID] = tag
	}

	result := make(map[string][]model.Tag, len(workIDs))
	for _, workID := range workIDs {
		for _, tagID := range s.doc.WorkTags[workID] {
			if tag, ok := byID[tagID]; ok {
				result[workID] = append(result[workID], tag)
			}
		}
	}
	return result, nil
}
