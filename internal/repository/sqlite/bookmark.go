package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/wilson400hong/slop-museum/internal/model"
)

// InsertBookmark adds a (work, user) bookmark row. Same uniqueness
// discipline as reactions: the composite primary key plus INSERT OR IGNORE
// makes a racing duplicate a silent no-op (inserted=false, no error).
func (db *DB) InsertBookmark(ctx context.Context, bookmark *model.Bookmark) (bool, error) {
	bookmark.CreatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO bookmarks (work_id, user_id, created_at)
		 VALUES (?, ?, ?)`,
		bookmark.WorkID, bookmark.UserID, bookmark.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: inserting bookmark: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return affected > 0, nil
}

// DeleteBookmark removes the pair's row if present.
func (db *DB) DeleteBookmark(ctx context.Context, workID, userID string) (bool, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE work_id = ? AND user_id = ?`,
		workID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting bookmark: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return affected > 0, nil
}

// IsBookmarked reports whether the user bookmarked the work.
func (db *DB) IsBookmarked(ctx context.Context, workID, userID string) (bool, error) {
	var exists int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookmarks WHERE work_id = ? AND user_id = ?`,
		workID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking bookmark: %w", err)
	}
	return exists > 0, nil
}
