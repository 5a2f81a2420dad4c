package sqlite

import (
	"context"
	"testing"

	"github.com/wilson400hong/slop-museum/internal/model"
)

func TestInsertReaction_UniquenessConstraint(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	work := createTestWork(t, db, user.ID, "demo", "tool")

	inserted, err := db.InsertReaction(context.Background(), &model.Reaction{
		WorkID: work.ID, UserID: user.ID, Kind: model.ReactionCool,
	})
	if err != nil {
		t.Fatalf("InsertReaction() error = %v", err)
	}
	if !inserted {
		t.Fatal("first insert should report inserted=true")
	}

	// Duplicate triple: the constraint swallows it, no error, no second row.
	inserted, err = db.InsertReaction(context.Background(), &model.Reaction{
		WorkID: work.ID, UserID: user.ID, Kind: model.ReactionCool,
	})
	if err != nil {
		t.Fatalf("duplicate InsertReaction() error = %v", err)
	}
	if inserted {
		t.Error("duplicate insert should report inserted=false")
	}

	counts, err := db.ReactionCounts(context.Background(), []string{work.ID})
	if err != nil {
		t.Fatalf("ReactionCounts() error = %v", err)
	}
	if c := counts[work.ID]; c.Cool != 1 {
		t.Errorf("cool count = %d, want 1 (no duplicate row)", c.Cool)
	}
}

func TestReaction_PerKindIndependence(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	work := createTestWork(t, db, user.ID, "demo", "tool")

	// The same user reacting "funny" and "cool" on the same work are
	// independent states.
	for _, kind := range []model.ReactionKind{model.ReactionHilarious, model.ReactionCool} {
		if _, err := db.InsertReaction(context.Background(), &model.Reaction{
			WorkID: work.ID, UserID: user.ID, Kind: kind,
		}); err != nil {
			t.Fatalf("InsertReaction(%s) error = %v", kind, err)
		}
	}

	kinds, err := db.UserReactionKinds(context.Background(), work.ID, user.ID)
	if err != nil {
		t.Fatalf("UserReactionKinds() error = %v", err)
	}
	if len(kinds) != 2 {
		t.Fatalf("user has %d active kinds, want 2", len(kinds))
	}

	// Removing one must not disturb the other.
	deleted, err := db.DeleteReaction(context.Background(), work.ID, user.ID, model.ReactionHilarious)
	if err != nil {
		t.Fatalf("DeleteReaction() error = %v", err)
	}
	if !deleted {
		t.Fatal("DeleteReaction() should report deleted=true for an existing row")
	}

	counts, err := db.ReactionCounts(context.Background(), []string{work.ID})
	if err != nil {
		t.Fatalf("ReactionCounts() error = %v", err)
	}
	c := counts[work.ID]
	if c.Hilarious != 0 || c.Cool != 1 {
		t.Errorf("counts = hilarious:%d cool:%d, want hilarious:0 cool:1", c.Hilarious, c.Cool)
	}
}

func TestDeleteReaction_Missing(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	work := createTestWork(t, db, user.ID, "demo", "tool")

	deleted, err := db.DeleteReaction(context.Background(), work.ID, user.ID, model.ReactionWTF)
	if err != nil {
		t.Fatalf("DeleteReaction() error = %v", err)
	}
	if deleted {
		t.Error("deleting a missing reaction should report deleted=false")
	}
}

func TestBookmarkToggleCycle(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	work := createTestWork(t, db, user.ID, "demo", "tool")

	inserted, err := db.InsertBookmark(context.Background(), &model.Bookmark{WorkID: work.ID, UserID: user.ID})
	if err != nil {
		t.Fatalf("InsertBookmark() error = %v", err)
	}
	if !inserted {
		t.Fatal("first insert should report inserted=true")
	}

	inserted, err = db.InsertBookmark(context.Background(), &model.Bookmark{WorkID: work.ID, UserID: user.ID})
	if err != nil {
		t.Fatalf("duplicate InsertBookmark() error = %v", err)
	}
	if inserted {
		t.Error("duplicate bookmark insert should report inserted=false")
	}

	bookmarked, err := db.IsBookmarked(context.Background(), work.ID, user.ID)
	if err != nil {
		t.Fatalf("IsBookmarked() error = %v", err)
	}
	if !bookmarked {
		t.Error("work should be bookmarked")
	}

	deleted, err := db.DeleteBookmark(context.Background(), work.ID, user.ID)
	if err != nil {
		t.Fatalf("DeleteBookmark() error = %v", err)
	}
	if !deleted {
		t.Error("DeleteBookmark() should report deleted=true")
	}

	bookmarked, err = db.IsBookmarked(context.Background(), work.ID, user.ID)
	if err != nil {
		t.Fatalf("IsBookmarked() error = %v", err)
	}
	if bookmarked {
		t.Error("work should no longer be bookmarked")
	}
}

func TestReactionCounts_AbsentForUnreactedWorks(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	work := createTestWork(t, db, user.ID, "quiet", "tool")

	counts, err := db.ReactionCounts(context.Background(), []string{work.ID})
	if err != nil {
		t.Fatalf("ReactionCounts() error = %v", err)
	}
	// The repository omits unreacted works; the zero value the map hands
	// back is exactly the all-zeros count the service layer expects.
	if c := counts[work.ID]; c.Total() != 0 {
		t.Errorf("total = %d, want 0", c.Total())
	}
}
