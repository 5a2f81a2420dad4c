package sqlite

import (
	"context"
	"fmt"

	"github.com/wilson400hong/slop-museum/internal/model"
)

// ListTags returns the whole vocabulary, name-sorted.
func (db *DB) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name FROM tags ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags: %w", err)
	}
	defer rows.Close()

	tags := make([]model.Tag, 0, 8)
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}
	return tags, nil
}

// TagsByName resolves names to tag rows. Names with no matching tag are
// silently absent — the service compares lengths to detect unknown names.
func (db *DB) TagsByName(ctx context.Context, names []string) ([]model.Tag, error) {
	if len(names) == 0 {
		return nil, nil
	}

	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name FROM tags WHERE name IN (`+placeholders(len(names))+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: resolving tags: %w", err)
	}
	defer rows.Close()

	tags := make([]model.Tag, 0, len(names))
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}
	return tags, nil
}

// TagsForWorks returns each work's resolved tag list in one query,
// keyed by work ID. Works without tags are absent from the map.
func (db *DB) TagsForWorks(ctx context.Context, workIDs []string) (map[string][]model.Tag, error) {
	if len(workIDs) == 0 {
		return map[string][]model.Tag{}, nil
	}

	args := make([]any, len(workIDs))
	for i, id := range workIDs {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT wt.work_id, t.id, t.name
		 FROM work_tags wt
		 JOIN tags t ON t.id = wt.tag_id
		 WHERE wt.work_id IN (`+placeholders(len(workIDs))+`)
		 ORDER BY t.name`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading work tags: %w", err)
	}
	defer rows.Close()

	byWork := make(map[string][]model.Tag, len(workIDs))
	for rows.Next() {
		var workID string
		var t model.Tag
		if err := rows.Scan(&workID, &t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning work tag row: %w", err)
		}
		byWork[workID] = append(byWork[workID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating work tags: %w", err)
	}
	return byWork, nil
}
