package filestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/wilson400hong/slop-museum/internal/model"
	"github.com/wilson400hong/slop-museum/internal/repository"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.json")
	s, err := New(path)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	return s, path
}

func createTestUser(t *testing.T, s *Store, name string) *model.User {
	t.Helper()
	user := &model.User{DisplayName: name, Provider: "test", ProviderID: name}
	if err := s.UpsertUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestWork(t *testing.T, s *Store, userID, title string, tagNames ...string) *model.Work {
	t.Helper()
	tags, err := s.TagsByName(context.Background(), tagNames)
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
	if err := s.CreateWork(context.Background(), work, tagIDs); err != nil {
		t.Fatalf("failed to create test work: %v", err)
	}
	return work
}

func TestNew_SeedsTags(t *testing.T) {
	s, _ := newTestStore(t)

	tags, err := s.ListTags(context.Background())
	if err != nil {
		t.Fatalf("ListTags() error = %v", err)
	}
	if len(tags) != len(model.SeedTagNames) {
		t.Errorf("got %d tags, want %d seeded", len(tags), len(model.SeedTagNames))
	}
}

func TestReopen_PreservesEverything(t *testing.T) {
	s, path := newTestStore(t)
	user := createTestUser(t, s, "alice")
	work := createTestWork(t, s, user.ID, "demo", "game", "funny")
	if _, err := s.InsertReaction(context.Background(), &model.Reaction{
		WorkID: work.ID, UserID: user.ID, Kind: model.ReactionPromising,
	}); err != nil {
		t.Fatalf("InsertReaction() error = %v", err)
	}

	// A second Store on the same file must see identical state —
	// including the provider identity, which drives re-login.
	reopened, err := New(path)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}

	got, err := reopened.GetWork(context.Background(), work.ID)
	if err != nil {
		t.Fatalf("GetWork() after reopen error = %v", err)
	}
	if got.Title != "demo" {
		t.Errorf("title = %q, want demo", got.Title)
	}

	tagsByWork, err := reopened.TagsForWorks(context.Background(), []string{work.ID})
	if err != nil {
		t.Fatalf("TagsForWorks() error = %v", err)
	}
	if len(tagsByWork[work.ID]) != 2 {
		t.Errorf("work has %d tags after reopen, want 2", len(tagsByWork[work.ID]))
	}

	same := &model.User{DisplayName: "alice", Provider: "test", ProviderID: "alice"}
	if err := reopened.UpsertUser(context.Background(), same); err != nil {
		t.Fatalf("UpsertUser() after reopen error = %v", err)
	}
	if same.ID != user.ID {
		t.Errorf("re-login after reopen changed id %q -> %q", user.ID, same.ID)
	}

	kinds, err := reopened.UserReactionKinds(context.Background(), work.ID, user.ID)
	if err != nil {
		t.Fatalf("UserReactionKinds() error = %v", err)
	}
	if len(kinds) != 1 || kinds[0] != model.ReactionPromising {
		t.Errorf("reaction kinds after reopen = %v, want [promising]", kinds)
	}
}

func TestInsertReaction_Duplicate(t *testing.T) {
	s, _ := newTestStore(t)
	user := createTestUser(t, s, "alice")
	work := createTestWork(t, s, user.ID, "demo", "tool")

	inserted, err := s.InsertReaction(context.Background(), &model.Reaction{
		WorkID: work.ID, UserID: user.ID, Kind: model.ReactionWTF,
	})
	if err != nil || !inserted {
		t.Fatalf("first insert = (%v, %v), want (true, nil)", inserted, err)
	}
	inserted, err = s.InsertReaction(context.Background(), &model.Reaction{
		WorkID: work.ID, UserID: user.ID, Kind: model.ReactionWTF,
	})
	if err != nil {
		t.Fatalf("duplicate insert error = %v", err)
	}
	if inserted {
		t.Error("duplicate insert should report inserted=false")
	}
}

func TestDeleteWork_Cascades(t *testing.T) {
	s, _ := newTestStore(t)
	user := createTestUser(t, s, "alice")
	work := createTestWork(t, s, user.ID, "doomed", "useless")

	if _, err := s.InsertReaction(context.Background(), &model.Reaction{
		WorkID: work.ID, UserID: user.ID, Kind: model.ReactionCool,
	}); err != nil {
		t.Fatalf("InsertReaction() error = %v", err)
	}
	if _, err := s.InsertBookmark(context.Background(), &model.Bookmark{
		WorkID: work.ID, UserID: user.ID,
	}); err != nil {
		t.Fatalf("InsertBookmark() error = %v", err)
	}
	report := &model.Report{WorkID: work.ID, ReporterID: user.ID, Reason: model.ReasonSpam}
	if err := s.CreateReport(context.Background(), report); err != nil {
		t.Fatalf("CreateReport() error = %v", err)
	}

	if err := s.DeleteWork(context.Background(), work.ID); err != nil {
		t.Fatalf("DeleteWork() error = %v", err)
	}

	if _, err := s.GetWork(context.Background(), work.ID); err == nil {
		t.Error("work should be gone")
	}
	kinds, _ := s.UserReactionKinds(context.Background(), work.ID, user.ID)
	if len(kinds) != 0 {
		t.Errorf("reactions should cascade, still have %v", kinds)
	}
	bookmarked, _ := s.IsBookmarked(context.Background(), work.ID, user.ID)
	if bookmarked {
		t.Error("bookmark should cascade")
	}
	tagsByWork, _ := s.TagsForWorks(context.Background(), []string{work.ID})
	if len(tagsByWork[work.ID]) != 0 {
		t.Error("tag attachments should cascade")
	}
	// Reports survive deletion.
	if _, err := s.GetReport(context.Background(), report.ID); err != nil {
		t.Errorf("report should survive work deletion, got %v", err)
	}
}

func TestListFeed_MatchesSqliteSemantics(t *testing.T) {
	s, _ := newTestStore(t)
	user := createTestUser(t, s, "alice")

	first := createTestWork(t, s, user.ID, "first", "game")
	second := createTestWork(t, s, user.ID, "second", "art")
	third := createTestWork(t, s, user.ID, "third", "art", "music")

	page, err := s.ListFeed(context.Background(), repository.FeedOptions{Limit: 2})
	if err != nil {
		t.Fatalf("ListFeed() error = %v", err)
	}
	if len(page) != 2 || page[0].ID != third.ID || page[1].ID != second.ID {
		t.Fatalf("page 1 = %v, want [third second]", workTitles(page))
	}

	cursor := &model.Cursor{CreatedAt: page[1].CreatedAt, ID: page[1].ID}
	page, err = s.ListFeed(context.Background(), repository.FeedOptions{Cursor: cursor, Limit: 2})
	if err != nil {
		t.Fatalf("ListFeed() page 2 error = %v", err)
	}
	if len(page) != 1 || page[0].ID != first.ID {
		t.Fatalf("page 2 = %v, want [first]", workTitles(page))
	}

	// Tag filter is OR across names.
	page, err = s.ListFeed(context.Background(), repository.FeedOptions{Tags: []string{"game", "music"}, Limit: 10})
	if err != nil {
		t.Fatalf("ListFeed() tag filter error = %v", err)
	}
	if len(page) != 2 || page[0].ID != third.ID || page[1].ID != first.ID {
		t.Fatalf("tag-filtered feed = %v, want [third first]", workTitles(page))
	}

	// Hidden works disappear from the feed.
	if err := s.SetWorkHidden(context.Background(), third.ID, true); err != nil {
		t.Fatalf("SetWorkHidden() error = %v", err)
	}
	page, err = s.ListFeed(context.Background(), repository.FeedOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListFeed() error = %v", err)
	}
	for _, w := range page {
		if w.ID == third.ID {
			t.Error("hidden work leaked into the feed")
		}
	}
}

func workTitles(works []model.Work) []string {
	titles := make([]string, len(works))
	for i, w := range works {
		titles[i] = w.Title
	}
	return titles
}
