package sqlite

import (
	"context"
	"testing"

	"github.com/wilson400hong/slop-museum/internal/model"
)

func TestListTags_Seeded(t *testing.T) {
	db := newTestDB(t)

	tags, err := db.ListTags(context.Background())
	if err != nil {
		t.Fatalf("ListTags() error = %v", err)
	}
	if len(tags) != len(model.SeedTagNames) {
		t.Fatalf("got %d tags, want %d seeded", len(tags), len(model.SeedTagNames))
	}

	byName := make(map[string]bool, len(tags))
	for _, tag := range tags {
		byName[tag.Name] = true
	}
	for _, name := range model.SeedTagNames {
		if !byName[name] {
			t.Errorf("seed tag %q missing", name)
		}
	}
}

func TestSeedTags_Idempotent(t *testing.T) {
	db := newTestDB(t)

	// migrate() already ran once in New(); running the seed again must not
	// duplicate rows.
	if err := db.seedTags(); err != nil {
		t.Fatalf("seedTags() error = %v", err)
	}
	tags, err := db.ListTags(context.Background())
	if err != nil {
		t.Fatalf("ListTags() error = %v", err)
	}
	if len(tags) != len(model.SeedTagNames) {
		t.Errorf("got %d tags after reseed, want %d", len(tags), len(model.SeedTagNames))
	}
}

func TestTagsByName_UnknownNamesAbsent(t *testing.T) {
	db := newTestDB(t)

	tags, err := db.TagsByName(context.Background(), []string{"game", "no-such-tag"})
	if err != nil {
		t.Fatalf("TagsByName() error = %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "game" {
		t.Errorf("TagsByName() = %+v, want just the game tag", tags)
	}
}

func TestTagsForWorks(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	multi := createTestWork(t, db, user.ID, "multi", "art", "music")
	single := createTestWork(t, db, user.ID, "single", "tool")

	tagsByWork, err := db.TagsForWorks(context.Background(), []string{multi.ID, single.ID})
	if err != nil {
		t.Fatalf("TagsForWorks() error = %v", err)
	}
	if len(tagsByWork[multi.ID]) != 2 {
		t.Errorf("multi-tag work has %d tags, want 2", len(tagsByWork[multi.ID]))
	}
	if len(tagsByWork[single.ID]) != 1 || tagsByWork[single.ID][0].Name != "tool" {
		t.Errorf("single-tag work tags = %+v, want [tool]", tagsByWork[single.ID])
	}
}
