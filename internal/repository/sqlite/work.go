package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/wilson400hong/slop-museum/internal/apperror"
	"github.com/wilson400hong/slop-museum/internal/model"
	"github.com/wilson400hong/slop-museum/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` assigns a nil *Y to a variable of interface type X.
// If *Y doesn't implement X, the compiler errors immediately instead of at
// the first call site that needs the interface. Standard Go practice for
// any interface implementation.
var _ repository.Store = (*DB)(nil)

const workColumns = `id, user_id, title, description, kind, url,
	code_html, code_css, code_js, sandbox_url, preview_image_url,
	anonymous, hidden, created_at`

// scanWork reads one works row. The scanner argument accepts both *sql.Row
// and *sql.Rows — they share the Scan method.
func scanWork(scan func(dest ...any) error) (*model.Work, error) {
	var w model.Work
	err := scan(
		&w.ID, &w.UserID, &w.Title, &w.Description, &w.Kind, &w.URL,
		&w.CodeHTML, &w.CodeCSS, &w.CodeJS, &w.SandboxURL, &w.PreviewImageURL,
		&w.Anonymous, &w.Hidden, &w.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateWork inserts the work and its tag attachments inside one transaction
// so a failed tag insert can't leave a tagless work behind.
//
// ID GENERATION WITH xid: 20 chars, URL-safe, and sortable by creation time
// (the ID starts with a timestamp). That last property is what makes the ID
// usable as the feed's pagination tiebreaker — for works created in the same
// instant, ID order approximates creation order.
func (db *DB) CreateWork(ctx context.Context, work *model.Work, tagIDs []int64) error {
	work.ID = xid.New().String()
	work.CreatedAt = time.Now().UTC()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning tx: %w", err)
	}
	defer tx.Rollback() // no-op after a successful Commit

	_, err = tx.ExecContext(ctx,
		`INSERT INTO works (`+workColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		work.ID, work.UserID, work.Title, work.Description, work.Kind, work.URL,
		work.CodeHTML, work.CodeCSS, work.CodeJS, work.SandboxURL, work.PreviewImageURL,
		work.Anonymous, work.Hidden, work.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting work: %w", err)
	}

	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO work_tags (work_id, tag_id) VALUES (?, ?)`,
			work.ID, tagID,
		); err != nil {
			return fmt.Errorf("sqlite: attaching tag %d: %w", tagID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing work: %w", err)
	}
	return nil
}

// GetWork retrieves a single work by ID, hidden or not.
func (db *DB) GetWork(ctx context.Context, id string) (*model.Work, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+workColumns+` FROM works WHERE id = ?`, id,
	)
	w, err := scanWork(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("work", id)
		}
		return nil, fmt.Errorf("sqlite: getting work %s: %w", id, err)
	}
	return w, nil
}

// ListFeed runs the composed feed query: visibility predicate, cursor
// predicate, optional tag intersection, stable ordering, page limit.
//
// CURSOR SEMANTICS:
// With a composite cursor the predicate is the row-value comparison
// (created_at, id) < (cursor.created_at, cursor.id) spelled out for SQLite:
// strictly older, OR same instant with a smaller ID. With a bare timestamp
// cursor (no ID part) only strictly-older rows qualify — works sharing the
// cursor's exact timestamp are skipped, the documented trade-off of the
// legacy cursor form.
func (db *DB) ListFeed(ctx context.Context, opts repository.FeedOptions) ([]model.Work, error) {
	query := `SELECT ` + workColumns + ` FROM works WHERE hidden = 0`
	args := make([]any, 0, 8)

	if c := opts.Cursor; c != nil {
		at := c.CreatedAt.UTC()
		if c.ID != "" {
			query += ` AND (created_at < ? OR (created_at = ? AND id < ?))`
			args = append(args, at, at, c.ID)
		} else {
			query += ` AND created_at < ?`
			args = append(args, at)
		}
	}

	if len(opts.Tags) > 0 {
		// OR semantics: any overlap between the work's tags and the
		// filter set qualifies the work. The subquery is the (work, tag)
		// pair set restricted to the filter names.
		query += ` AND id IN (
			SELECT wt.work_id FROM work_tags wt
			JOIN tags t ON t.id = wt.tag_id
			WHERE t.name IN (` + placeholders(len(opts.Tags)) + `))`
		for _, name := range opts.Tags {
			args = append(args, name)
		}
	}

	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, opts.Limit)

	return db.queryWorks(ctx, query, args...)
}

// ListWorksByUser returns a user's visible works, newest first.
func (db *DB) ListWorksByUser(ctx context.Context, userID string) ([]model.Work, error) {
	return db.queryWorks(ctx,
		`SELECT `+workColumns+` FROM works
		 WHERE user_id = ? AND hidden = 0
		 ORDER BY created_at DESC, id DESC`,
		userID,
	)
}

// WorkIDsByUser returns the IDs of a user's visible works.
func (db *DB) WorkIDsByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id FROM works WHERE user_id = ? AND hidden = 0`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing work ids for user %s: %w", userID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning work id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating work ids: %w", err)
	}
	return ids, nil
}

// ListBookmarkedWorks returns visible works the user bookmarked, most
// recently bookmarked first.
func (db *DB) ListBookmarkedWorks(ctx context.Context, userID string) ([]model.Work, error) {
	return db.queryWorks(ctx,
		`SELECT w.id, w.user_id, w.title, w.description, w.kind, w.url,
		        w.code_html, w.code_css, w.code_js, w.sandbox_url, w.preview_image_url,
		        w.anonymous, w.hidden, w.created_at
		 FROM works w
		 JOIN bookmarks b ON b.work_id = w.id
		 WHERE b.user_id = ? AND w.hidden = 0
		 ORDER BY b.created_at DESC`,
		userID,
	)
}

// SetWorkHidden flips the moderation visibility flag.
func (db *DB) SetWorkHidden(ctx context.Context, id string, hidden bool) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE works SET hidden = ? WHERE id = ?`, hidden, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: hiding work %s: %w", id, err)
	}
	return notFoundIfZero(result, "work", id)
}

// DeleteWork removes the work permanently. Tag joins, reactions and
// bookmarks cascade away via the foreign keys; report rows survive.
func (db *DB) DeleteWork(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM works WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting work %s: %w", id, err)
	}
	return notFoundIfZero(result, "work", id)
}

// queryWorks runs a SELECT over works and scans all rows.
func (db *DB) queryWorks(ctx context.Context, query string, args ...any) ([]model.Work, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing works: %w", err)
	}
	// sql.Rows holds a pool connection — always close it.
	defer rows.Close()

	works := make([]model.Work, 0, 16)
	for rows.Next() {
		w, err := scanWork(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning work row: %w", err)
		}
		works = append(works, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating works: %w", err)
	}
	return works, nil
}

// notFoundIfZero converts a zero-rows-affected result into a NotFound error.
// One UPDATE/DELETE instead of SELECT-then-mutate — the WHERE clause is the
// existence check.
func notFoundIfZero(result sql.Result, resource, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
