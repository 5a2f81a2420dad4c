package handler_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/wilson400hong/slop-museum/internal/auth"
	"github.com/wilson400hong/slop-museum/internal/model"
	"github.com/wilson400hong/slop-museum/internal/repository/filestore"
	"github.com/wilson400hong/slop-museum/internal/service"
)

// testEnv wires real services over a filestore backend so handler tests
// exercise the full request path: middleware, JSON parsing, service call,
// error mapping. Only the sandbox and preview edges are left out.
type testEnv struct {
	store      *filestore.Store
	tokens     *auth.TokenService
	works      *service.WorkService
	toggles    *service.ToggleService
	moderation *service.ModerationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := filestore.New(filepath.Join(t.TempDir(), "store.json"))
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	tokens, err := auth.NewTokenService("handler-test-secret-0123456789")
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}

	logger := slog.New(slog.DiscardHandler)
	return &testEnv{
		store:      store,
		tokens:     tokens,
		works:      service.NewWorkService(store, store, store, store, nil, nil, logger),
		toggles:    service.NewToggleService(store, store, store, logger),
		moderation: service.NewModerationService(store, store, store, logger),
	}
}

func (e *testEnv) createUser(t *testing.T, name string) *model.User {
	t.Helper()
	user := &model.User{DisplayName: name, Provider: "test", ProviderID: name}
	if err := e.store.UpsertUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func (e *testEnv) createAdmin(t *testing.T, name string) *model.User {
	t.Helper()
	user := &model.User{DisplayName: name, Provider: "test", ProviderID: name, Role: model.RoleAdmin}
	if err := e.store.UpsertUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test admin: %v", err)
	}
	return user
}

func (e *testEnv) submitWork(t *testing.T, userID, title string) *model.EnrichedWork {
	t.Helper()
	work, err := e.works.Submit(context.Background(), userID, service.SubmitWorkInput{
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

// login attaches a valid session cookie for userID to the request.
func (e *testEnv) login(t *testing.T, req *http.Request, userID string) {
	t.Helper()
	token, err := e.tokens.Generate(userID)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
}

// serve runs the request through the same auth middleware production uses
// before the handler, so tests cover the whole chain cookie-first.
func (e *testEnv) serve(h http.HandlerFunc, req *http.Request, requireAuth bool) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	if requireAuth {
		auth.RequireAuth(e.tokens)(h).ServeHTTP(rr, req)
	} else {
		auth.OptionalAuth(e.tokens)(h).ServeHTTP(rr, req)
	}
	return rr
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func workPath(id string) string {
	return fmt.Sprintf("/api/works/%s", id)
}
