package sqlite

import (
	"context"
	"testing"

	"github.com/wilson400hong/slop-museum/internal/model"
)

// TESTING WITH IN-MEMORY SQLITE:
// ":memory:" creates a fresh database that exists only during the test —
// fast, isolated, destroyed when the connection closes. Migrations run in
// New(), so every test starts with the full schema and the seed tags.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, name string) *model.User {
	t.Helper()
	user := &model.User{
		DisplayName: name,
		Provider:    "test",
		ProviderID:  name,
	}
	if err := db.UpsertUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestWork inserts a link work owned by userID, tagged with the given
// seed-tag names.
func createTestWork(t *testing.T, db *DB, userID, title string, tagNames ...string) *model.Work {
	t.Helper()

	tags, err := db.TagsByName(context.Background(), tagNames)
	if err != nil {
		t.Fatalf("failed to resolve tags: %v", err)
	}
	if len(tags) != len(tagNames) {
		t.Fatalf("resolved %d of %d tag names", len(tags), len(tagNames))
	}
	tagIDs := make([]int64, len(tags))
	for i, tag := range tags {
		tagIDs[i] = tag.ID
	}

	work := &model.Work{
		UserID: userID,
		Title:  title,
		Kind:   model.WorkKindLink,
		URL:    "https://example.com/" + title,
	}
	if err := db.CreateWork(context.Background(), work, tagIDs); err != nil {
		t.Fatalf("failed to create test work: %v", err)
	}
	return work
}
