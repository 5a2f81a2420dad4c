package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/wilson400hong/slop-museum/internal/apperror"
	"github.com/wilson400hong/slop-museum/internal/model"
)

// UpsertUser inserts or updates a user based on their provider identity.
//
// The auth provider's (provider, provider_id) pair is stable and unique, so
// first login INSERTs and subsequent logins UPDATE the profile fields in
// case display name or avatar changed upstream. We look up the existing
// internal ID first so a returning user KEEPS their ID — works, reactions
// and bookmarks all reference it.
//
// Role and banned are never touched here: moderation owns those fields, and
// a login must not be able to reset them.
func (db *DB) UpsertUser(ctx context.Context, user *model.User) error {
	var existingID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE provider = ? AND provider_id = ?`,
		user.Provider, user.ProviderID,
	).Scan(&existingID)

	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by provider identity: %w", err)
	}

	if existingID != "" {
		user.ID = existingID
		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET display_name = ?, avatar_url = ? WHERE id = ?`,
			user.DisplayName, user.AvatarURL, user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}
		// Reload the fields moderation owns plus created_at so the
		// returned struct is the canonical record.
		fresh, err := db.GetUserByID(ctx, user.ID)
		if err != nil {
			return err
		}
		*user = *fresh
		return nil
	}

	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, display_name, avatar_url, provider, provider_id, role, banned, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.DisplayName, user.AvatarURL, user.Provider, user.ProviderID,
		user.Role, user.Banned, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user (provider=%s): %w", user.Provider, err)
	}
	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, display_name, avatar_url, provider, provider_id, role, banned, created_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(
		&u.ID, &u.DisplayName, &u.AvatarURL, &u.Provider, &u.ProviderID,
		&u.Role, &u.Banned, &u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return &u, nil
}

// UsersByID batch-fetches users for feed enrichment, keyed by ID.
func (db *DB) UsersByID(ctx context.Context, ids []string) (map[string]model.User, error) {
	if len(ids) == 0 {
		return map[string]model.User{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, display_name, avatar_url, provider, provider_id, role, banned, created_at
		 FROM users WHERE id IN (`+placeholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: batch loading users: %w", err)
	}
	defer rows.Close()

	users := make(map[string]model.User, len(ids))
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.DisplayName, &u.AvatarURL, &u.Provider, &u.ProviderID,
			&u.Role, &u.Banned, &u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	return users, nil
}

// SetUserBanned flips the banned flag. Banning only blocks future
// authentication and submissions; existing content is untouched.
func (db *DB) SetUserBanned(ctx context.Context, id string, banned bool) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET banned = ? WHERE id = ?`, banned, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: banning user %s: %w", id, err)
	}
	return notFoundIfZero(result, "user", id)
}
