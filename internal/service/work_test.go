package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wilson400hong/slop-museum/internal/apperror"
	"github.com/wilson400hong/slop-museum/internal/model"
)

func requireAppError(t *testing.T, err error, sentinel error) *apperror.AppError {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error = %v, want *apperror.AppError", err)
	}
	if !errors.Is(appErr.Err, sentinel) {
		t.Fatalf("error kind = %v, want %v", appErr.Err, sentinel)
	}
	return appErr
}

func TestSubmit_LinkWork(t *testing.T) {
	store := newTestStore(t)
	svc := newTestWorkService(store)
	user := createTestUser(t, store, "alice")

	work, err := svc.Submit(context.Background(), user.ID, SubmitWorkInput{
		Title:       "tiny chess",
		Description: "a chess engine in 1k of js",
		Kind:        "link",
		URL:         "https://example.com/chess",
		Tags:        []string{"game", "tool"},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if work.ID == "" {
		t.Error("submitted work should have an id")
	}
	if work.UserID != user.ID {
		t.Errorf("owner = %q, want %q", work.UserID, user.ID)
	}
	if len(work.Tags) != 2 {
		t.Errorf("got %d tags, want 2", len(work.Tags))
	}
	if work.ReactionCounts.Total() != 0 {
		t.Error("fresh work should have zero reactions")
	}
}

func TestSubmit_ValidationOrder(t *testing.T) {
	store := newTestStore(t)
	svc := newTestWorkService(store)
	user := createTestUser(t, store, "alice")

	tests := []struct {
		name      string
		input     SubmitWorkInput
		wantField string
	}{
		{
			name:      "missing title",
			input:     SubmitWorkInput{Kind: "link", URL: "https://x.example", Tags: []string{"game"}},
			wantField: "title",
		},
		{
			name: "title too long",
			input: SubmitWorkInput{
				Title: strings.Repeat("x", MaxTitleLength+1),
				Kind:  "link", URL: "https://x.example", Tags: []string{"game"},
			},
			wantField: "title",
		},
		{
			name:      "no tags",
			input:     SubmitWorkInput{Title: "t", Kind: "link", URL: "https://x.example"},
			wantField: "tags",
		},
		{
			name: "too many tags",
			input: SubmitWorkInput{
				Title: "t", Kind: "link", URL: "https://x.example",
				Tags: []string{"game", "tool", "art", "music"},
			},
			wantField: "tags",
		},
		{
			name:      "unknown kind",
			input:     SubmitWorkInput{Title: "t", Kind: "video", Tags: []string{"game"}},
			wantField: "kind",
		},
		{
			name:      "link without url",
			input:     SubmitWorkInput{Title: "t", Kind: "link", Tags: []string{"game"}},
			wantField: "url",
		},
		{
			name:      "link with relative url",
			input:     SubmitWorkInput{Title: "t", Kind: "link", URL: "/local/path", Tags: []string{"game"}},
			wantField: "url",
		},
		{
			name: "code over budget",
			input: SubmitWorkInput{
				Title: "t", Kind: "embedded-code", Tags: []string{"game"},
				CodeJS: strings.Repeat("a", model.MaxCodeBytes+1),
			},
			wantField: "code",
		},
		{
			name:      "unknown tag",
			input:     SubmitWorkInput{Title: "t", Kind: "link", URL: "https://x.example", Tags: []string{"cooking"}},
			wantField: "tags",
		},
		{
			// Tag vocabulary is checked before the payload rules, so an
			// input failing both reports the tag.
			name:      "unknown tag beats bad url",
			input:     SubmitWorkInput{Title: "t", Kind: "link", URL: "/relative", Tags: []string{"cooking"}},
			wantField: "tags",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), user.ID, tt.input)
			appErr := requireAppError(t, err, apperror.ErrValidation)
			if appErr.Field != tt.wantField {
				t.Errorf("failing field = %q, want %q", appErr.Field, tt.wantField)
			}
		})
	}
}

func TestSubmit_CodeAtExactBudget(t *testing.T) {
	store := newTestStore(t)
	svc := newTestWorkService(store)
	user := createTestUser(t, store, "alice")

	// The budget is inclusive: exactly MaxCodeBytes passes.
	_, err := svc.Submit(context.Background(), user.ID, SubmitWorkInput{
		Title:    "big",
		Kind:     "embedded-code",
		CodeHTML: strings.Repeat("a", model.MaxCodeBytes/2),
		CodeJS:   strings.Repeat("b", model.MaxCodeBytes-model.MaxCodeBytes/2),
		Tags:     []string{"useless"},
	})
	if err != nil {
		t.Fatalf("Submit() at exact budget error = %v", err)
	}
}

func TestSubmit_EmptyCodePayload(t *testing.T) {
	store := newTestStore(t)
	svc := newTestWorkService(store)
	user := createTestUser(t, store, "alice")

	// All three blobs empty is a valid embedded-code work.
	work, err := svc.Submit(context.Background(), user.ID, SubmitWorkInput{
		Title: "blank canvas",
		Kind:  "embedded-code",
		Tags:  []string{"art"},
	})
	if err != nil {
		t.Fatalf("Submit() with empty payload error = %v", err)
	}
	if work.CodeBytes() != 0 {
		t.Errorf("expected an empty payload, got %d bytes", work.CodeBytes())
	}
	if _, err := svc.Get(context.Background(), work.ID); err != nil {
		t.Errorf("empty-payload work should be retrievable, got %v", err)
	}
}

func TestSubmit_BannedUser(t *testing.T) {
	store := newTestStore(t)
	svc := newTestWorkService(store)
	user := createTestUser(t, store, "troll")
	if err := store.SetUserBanned(context.Background(), user.ID, true); err != nil {
		t.Fatalf("SetUserBanned() error = %v", err)
	}

	_, err := svc.Submit(context.Background(), user.ID, SubmitWorkInput{
		Title: "t", Kind: "link", URL: "https://x.example", Tags: []string{"game"},
	})
	requireAppError(t, err, apperror.ErrForbidden)
}

type fakePublisher struct {
	lastWorkID string
	lastDoc    string
}

func (f *fakePublisher) PublishDocument(_ context.Context, workID, doc string) (string, error) {
	f.lastWorkID = workID
	f.lastDoc = doc
	return "https://sandbox.example/" + workID + "/index.html", nil
}

func TestSubmit_CodeWorkPublishesSandbox(t *testing.T) {
	store := newTestStore(t)
	publisher := &fakePublisher{}
	svc := NewWorkService(store, store, store, store, publisher, nil, testLogger())
	user := createTestUser(t, store, "alice")

	work, err := svc.Submit(context.Background(), user.ID, SubmitWorkInput{
		Title:    "blinkenlights",
		Kind:     "embedded-code",
		CodeHTML: "<div id=l></div>",
		CodeCSS:  "#l { width: 8px; }",
		CodeJS:   "setInterval(() => {}, 100)",
		Tags:     []string{"useless", "funny"},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if work.SandboxURL == "" {
		t.Error("code work should carry a sandbox URL")
	}
	if publisher.lastWorkID != work.ID {
		t.Errorf("published under %q, want work id %q", publisher.lastWorkID, work.ID)
	}
	if !strings.Contains(publisher.lastDoc, "<div id=l></div>") {
		t.Error("published document missing the HTML payload")
	}

	// The stored work carries the sandbox URL too.
	stored, err := svc.Get(context.Background(), work.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.CodeHTML != "<div id=l></div>" {
		t.Error("code payload not stored")
	}
}

func TestSubmit_AnonymousHidesOwner(t *testing.T) {
	store := newTestStore(t)
	svc := newTestWorkService(store)
	user := createTestUser(t, store, "shy")

	work, err := svc.Submit(context.Background(), user.ID, SubmitWorkInput{
		Title: "secret art", Kind: "link", URL: "https://x.example", Tags: []string{"art"},
		Anonymous: true,
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if work.UserID != "" || work.Owner != nil {
		t.Error("anonymous submission must not expose its owner")
	}

	// ...but storage still knows, for moderation.
	raw, err := store.GetWork(context.Background(), work.ID)
	if err != nil {
		t.Fatalf("GetWork() error = %v", err)
	}
	if raw.UserID != user.ID {
		t.Error("storage must retain the owner of anonymous works")
	}

	// And the feed blanks it the same way.
	page, err := svc.Feed(context.Background(), "", nil, 10)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if len(page.Works) != 1 {
		t.Fatalf("feed has %d works, want 1", len(page.Works))
	}
	if page.Works[0].UserID != "" || page.Works[0].Owner != nil {
		t.Error("feed must not expose the owner of anonymous works")
	}
}

func TestFeed_PaginationWalk(t *testing.T) {
	store := newTestStore(t)
	svc := newTestWorkService(store)
	user := createTestUser(t, store, "alice")
	submitTestWorks(t, svc, user.ID, 5)

	seen := map[string]bool{}
	cursor := ""
	pages := 0
	for {
		page, err := svc.Feed(context.Background(), cursor, nil, 2)
		if err != nil {
			t.Fatalf("Feed() error = %v", err)
		}
		for _, w := range page.Works {
			if seen[w.ID] {
				t.Fatalf("work %s repeated across pages", w.ID)
			}
			seen[w.ID] = true
		}
		pages++
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	if len(seen) != 5 {
		t.Errorf("walked %d works, want all 5", len(seen))
	}
	if pages != 3 {
		t.Errorf("walk took %d pages, want 3 (2+2+1)", pages)
	}
}

func TestListWorks_ExactlyFullLastPage(t *testing.T) {
	store := newTestStore(t)
	svc := newTestWorkService(store)
	user := createTestUser(t, store, "alice")
	submitTestWorks(t, svc, user.ID, 4)

	// 4 works, pages of 2: the second page is exactly full, so it still
	// carries a cursor. The page after it is empty with no cursor — the
	// documented way clients learn the feed is exhausted.
	page1, err := svc.Feed(context.Background(), "", nil, 2)
	if err != nil {
		t.Fatalf("Feed() page 1 error = %v", err)
	}
	if page1.NextCursor == "" {
		t.Fatal("page 1 should have a cursor")
	}

	page2, err := svc.Feed(context.Background(), page1.NextCursor, nil, 2)
	if err != nil {
		t.Fatalf("Feed() page 2 error = %v", err)
	}
	if len(page2.Works) != 2 {
		t.Fatalf("page 2 has %d works, want 2", len(page2.Works))
	}
	if page2.NextCursor == "" {
		t.Fatal("exactly-full page still carries a cursor")
	}

	page3, err := svc.Feed(context.Background(), page2.NextCursor, nil, 2)
	if err != nil {
		t.Fatalf("Feed() page 3 error = %v", err)
	}
	if len(page3.Works) != 0 || page3.NextCursor != "" {
		t.Errorf("trailing page = %d works, cursor %q; want empty with no cursor",
			len(page3.Works), page3.NextCursor)
	}
}

func TestFeed_BadCursor(t *testing.T) {
	store := newTestStore(t)
	svc := newTestWorkService(store)

	_, err := svc.Feed(context.Background(), "not-a-timestamp", nil, 10)
	requireAppError(t, err, apperror.ErrValidation)
}

func TestFeed_LimitClamp(t *testing.T) {
	store := newTestStore(t)
	svc := newTestWorkService(store)
	user := createTestUser(t, store, "alice")
	submitTestWorks(t, svc, user.ID, 3)

	// Zero limit gets the default.
	page, err := svc.Feed(context.Background(), "", nil, 0)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if len(page.Works) != 3 {
		t.Errorf("default-limit page has %d works, want 3", len(page.Works))
	}

	// An absurd limit is clamped rather than rejected.
	if _, err := svc.Feed(context.Background(), "", nil, 10000); err != nil {
		t.Errorf("Feed() with oversized limit error = %v", err)
	}
}

func TestGet_HiddenWorkNotFound(t *testing.T) {
	store := newTestStore(t)
	svc := newTestWorkService(store)
	user := createTestUser(t, store, "alice")
	work := submitTestWork(t, svc, user.ID, "soon hidden")

	if err := store.SetWorkHidden(context.Background(), work.ID, true); err != nil {
		t.Fatalf("SetWorkHidden() error = %v", err)
	}

	_, err := svc.Get(context.Background(), work.ID)
	requireAppError(t, err, apperror.ErrNotFound)
}

func TestWorksByUser_AnonymityOnProfiles(t *testing.T) {
	store := newTestStore(t)
	svc := newTestWorkService(store)
	user := createTestUser(t, store, "alice")
	viewer := createTestUser(t, store, "bob")

	submitTestWork(t, svc, user.ID, "public one")
	if _, err := svc.Submit(context.Background(), user.ID, SubmitWorkInput{
		Title: "anon one", Kind: "link", URL: "https://x.example", Tags: []string{"art"},
		Anonymous: true,
	}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	// Someone else's view of the profile omits anonymous works.
	works, err := svc.WorksByUser(context.Background(), viewer.ID, user.ID)
	if err != nil {
		t.Fatalf("WorksByUser() error = %v", err)
	}
	if len(works) != 1 || works[0].Title != "public one" {
		t.Errorf("stranger sees %d works, want only the public one", len(works))
	}

	// The owner sees everything.
	works, err = svc.WorksByUser(context.Background(), user.ID, user.ID)
	if err != nil {
		t.Fatalf("WorksByUser() error = %v", err)
	}
	if len(works) != 2 {
		t.Errorf("owner sees %d works, want 2", len(works))
	}
}

func TestUserReactionStats(t *testing.T) {
	store := newTestStore(t)
	svc := newTestWorkService(store)
	toggles := newTestToggleService(store)
	author := createTestUser(t, store, "author")
	fan := createTestUser(t, store, "fan")

	first := submitTestWork(t, svc, author.ID, "first")
	second := submitTestWork(t, svc, author.ID, "second")

	for _, workID := range []string{first.ID, second.ID} {
		if _, err := toggles.ToggleReaction(context.Background(), fan.ID, workID, model.ReactionCool); err != nil {
			t.Fatalf("ToggleReaction() error = %v", err)
		}
	}
	if _, err := toggles.ToggleReaction(context.Background(), fan.ID, first.ID, model.ReactionHilarious); err != nil {
		t.Fatalf("ToggleReaction() error = %v", err)
	}

	stats, err := svc.UserReactionStats(context.Background(), author.ID)
	if err != nil {
		t.Fatalf("UserReactionStats() error = %v", err)
	}
	if stats.Cool != 2 || stats.Hilarious != 1 || stats.Total() != 3 {
		t.Errorf("stats = %+v, want cool:2 hilarious:1 total:3", stats)
	}
}
