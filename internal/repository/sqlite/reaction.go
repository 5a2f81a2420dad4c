package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/wilson400hong/slop-museum/internal/model"
)

// InsertReaction adds a reaction row for the (work, user, kind) triple.
//
// RACE SAFETY:
// The reactions table has UNIQUE(work_id, user_id, kind). INSERT OR IGNORE
// turns a constraint hit into zero rows affected instead of an error, so
// when two identical toggle requests race, the loser's insert is a silent
// no-op and we report inserted=false. The caller treats that as "already
// added" — a success, not a conflict error. At no point can the triple have
// two rows.
func (db *DB) InsertReaction(ctx context.Context, reaction *model.Reaction) (bool, error) {
	reaction.ID = xid.New().String()
	reaction.CreatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO reactions (id, work_id, user_id, kind, anonymous, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		reaction.ID, reaction.WorkID, reaction.UserID, reaction.Kind,
		reaction.Anonymous, reaction.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: inserting reaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return affected > 0, nil
}

// DeleteReaction removes the row for the triple if present.
func (db *DB) DeleteReaction(ctx context.Context, workID, userID string, kind model.ReactionKind) (bool, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM reactions WHERE work_id = ? AND user_id = ? AND kind = ?`,
		workID, userID, kind,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting reaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return affected > 0, nil
}

// ReactionCounts aggregates per-kind counts for the given works in one
// GROUP BY. Counts are always derived from raw rows — nothing is cached.
func (db *DB) ReactionCounts(ctx context.Context, workIDs []string) (map[string]model.ReactionCounts, error) {
	if len(workIDs) == 0 {
		return map[string]model.ReactionCounts{}, nil
	}

	args := make([]any, len(workIDs))
	for i, id := range workIDs {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT work_id, kind, COUNT(*)
		 FROM reactions
		 WHERE work_id IN (`+placeholders(len(workIDs))+`)
		 GROUP BY work_id, kind`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting reactions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]model.ReactionCounts, len(workIDs))
	for rows.Next() {
		var workID string
		var kind model.ReactionKind
		var n int
		if err := rows.Scan(&workID, &kind, &n); err != nil {
			return nil, fmt.Errorf("sqlite: scanning reaction count row: %w", err)
		}
		c := counts[workID]
		c.Add(kind, n)
		counts[workID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating reaction counts: %w", err)
	}
	return counts, nil
}

// UserReactionKinds returns the kinds the user has active on the work.
func (db *DB) UserReactionKinds(ctx context.Context, workID, userID string) ([]model.ReactionKind, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT kind FROM reactions WHERE work_id = ? AND user_id = ?`,
		workID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing user reactions: %w", err)
	}
	defer rows.Close()

	kinds := make([]model.ReactionKind, 0, len(model.ReactionKinds))
	for rows.Next() {
		var k model.ReactionKind
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("sqlite: scanning reaction kind: %w", err)
		}
		kinds = append(kinds, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating reaction kinds: %w", err)
	}
	return kinds, nil
}
