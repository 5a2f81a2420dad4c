// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside your Go binary as a single file.
// No separate database server to install, configure, or manage. Perfect for:
// - Single-server deployments (which is most apps, honestly)
// - Development and testing (use ":memory:" for an in-memory DB)
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C compiler
// installed and cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — no C compiler needed, works everywhere Go works.
//
// The schema below carries two constraints the rest of the system leans on:
//
//   - UNIQUE(work_id, user_id, kind) on reactions and the composite primary
//     key on bookmarks. These are the toggle invariant: two simultaneous
//     identical toggle requests cannot leave duplicate rows, because the
//     second insert hits the constraint and is treated as "already added".
//   - ON DELETE CASCADE from works to work_tags, reactions and bookmarks,
//     so a moderation delete cannot leave dangling joins. Reports
//     deliberately have NO foreign key on work_id — they outlive the work
//     for audit, and readers substitute a placeholder for the missing work.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// BLANK IMPORT:
	// The underscore import `_ "modernc.org/sqlite"` is a "side-effect only" import.
	// The sqlite package's init() registers itself with database/sql as a driver
	// named "sqlite"; after this import, sql.Open("sqlite", ...) knows the dialect.
	_ "modernc.org/sqlite"

	"github.com/wilson400hong/slop-museum/internal/model"
)

// DB wraps a sql.DB connection pool and provides repository methods.
// It implements repository.Store — one struct, all six entity repositories.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/museum.db" → file-based database (persistent)
//   - ":memory:"       → in-memory database (great for tests, lost on close)
func New(dbPath string) (*DB, error) {
	// sql.Open does NOT actually open a connection — it just creates a
	// pool manager. Ping forces an immediate connection so a bad path or
	// permissions issue surfaces here, not on the first query.
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress —
	// important for a web server where multiple requests hit the DB.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite (for backwards
	// compatibility). The cascade behavior on work deletion depends on them.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Always defer this where New()
// is called so the WAL is flushed and the file lock released.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema and seeds the tag vocabulary.
// CREATE TABLE IF NOT EXISTS keeps this safe to run on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id           TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			avatar_url   TEXT NOT NULL DEFAULT '',
			provider     TEXT NOT NULL,
			provider_id  TEXT NOT NULL,
			role         TEXT NOT NULL DEFAULT 'user',
			banned       INTEGER NOT NULL DEFAULT 0,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (provider, provider_id)
		);

		CREATE TABLE IF NOT EXISTS works (
			id                TEXT PRIMARY KEY,
			user_id           TEXT NOT NULL REFERENCES users(id),
			title             TEXT NOT NULL,
			description       TEXT NOT NULL DEFAULT '',
			kind              TEXT NOT NULL,
			url               TEXT NOT NULL DEFAULT '',
			code_html         TEXT NOT NULL DEFAULT '',
			code_css          TEXT NOT NULL DEFAULT '',
			code_js           TEXT NOT NULL DEFAULT '',
			sandbox_url       TEXT NOT NULL DEFAULT '',
			preview_image_url TEXT NOT NULL DEFAULT '',
			anonymous         INTEGER NOT NULL DEFAULT 0,
			hidden            INTEGER NOT NULL DEFAULT 0,
			created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_works_feed ON works(hidden, created_at DESC, id DESC);
		CREATE INDEX IF NOT EXISTS idx_works_user_id ON works(user_id);

		CREATE TABLE IF NOT EXISTS tags (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS work_tags (
			work_id TEXT    NOT NULL REFERENCES works(id) ON DELETE CASCADE,
			tag_id  INTEGER NOT NULL REFERENCES tags(id),
			PRIMARY KEY (work_id, tag_id)
		);
		CREATE INDEX IF NOT EXISTS idx_work_tags_tag_id ON work_tags(tag_id);

		CREATE TABLE IF NOT EXISTS reactions (
			id         TEXT PRIMARY KEY,
			work_id    TEXT NOT NULL REFERENCES works(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL REFERENCES users(id),
			kind       TEXT NOT NULL,
			anonymous  INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (work_id, user_id, kind)
		);

		CREATE TABLE IF NOT EXISTS bookmarks (
			work_id    TEXT NOT NULL REFERENCES works(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (work_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS idx_bookmarks_user_id ON bookmarks(user_id);

		CREATE TABLE IF NOT EXISTS reports (
			id          TEXT PRIMARY KEY,
			work_id     TEXT NOT NULL,
			reporter_id TEXT NOT NULL REFERENCES users(id),
			reason      TEXT NOT NULL,
			status      TEXT NOT NULL DEFAULT 'pending',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return db.seedTags()
}

// seedTags installs the default vocabulary. INSERT OR IGNORE makes the seed
// idempotent — existing names are left alone.
func (db *DB) seedTags() error {
	for _, name := range model.SeedTagNames {
		if _, err := db.conn.Exec(
			`INSERT OR IGNORE INTO tags (name) VALUES (?)`, name,
		); err != nil {
			return fmt.Errorf("seeding tag %q: %w", name, err)
		}
	}
	return nil
}

// placeholders returns "?, ?, ... ?" with n slots, for IN clauses.
// The values themselves are always bound as parameters — only the
// placeholder list is built by string manipulation.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
