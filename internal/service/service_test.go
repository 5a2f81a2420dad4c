package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/wilson400hong/slop-museum/internal/model"
	"github.com/wilson400hong/slop-museum/internal/repository/filestore"
)

// The services are tested against the filestore backend: it is pure
// in-memory-plus-one-file, fast enough for tests, and exercising it here
// keeps the two backends honest about sharing semantics.

func newTestStore(t *testing.T) *filestore.Store {
	t.Helper()
	store, err := filestore.New(filepath.Join(t.TempDir(), "store.json"))
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	return store
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestWorkService(store *filestore.Store) *WorkService {
	// No sandbox store, no preview fetcher: both are optional decorations
	// and tests for them fake the Publisher explicitly.
	return NewWorkService(store, store, store, store, nil, nil, testLogger())
}

func newTestToggleService(store *filestore.Store) *ToggleService {
	return NewToggleService(store, store, store, testLogger())
}

func newTestModerationService(store *filestore.Store) *ModerationService {
	return NewModerationService(store, store, store, testLogger())
}

func createTestUser(t *testing.T, store *filestore.Store, name string) *model.User {
	t.Helper()
	user := &model.User{DisplayName: name, Provider: "test", ProviderID: name}
	if err := store.UpsertUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestAdmin(t *testing.T, store *filestore.Store, name string) *model.User {
	t.Helper()
	user := &model.User{DisplayName: name, Provider: "test", ProviderID: name, Role: model.RoleAdmin}
	if err := store.UpsertUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test admin: %v", err)
	}
	return user
}

func submitTestWork(t *testing.T, svc *WorkService, userID, title string) *model.EnrichedWork {
	t.Helper()
	work, err := svc.Submit(context.Background(), userID, SubmitWorkInput{
		Title: title,
		Kind:  string(model.WorkKindLink),
		URL:   "https://example.com/" + title,
		Tags:  []string{"tool"},
	})
	if err != nil {
		t.Fatalf("failed to submit test work: %v", err)
	}
	return work
}

func submitTestWorks(t *testing.T, svc *WorkService, userID string, n int) []*model.EnrichedWork {
	t.Helper()
	works := make([]*model.EnrichedWork, n)
	for i := 0; i < n; i++ {
		works[i] = submitTestWork(t, svc, userID, fmt.Sprintf("work-%02d", i))
	}
	return works
}
