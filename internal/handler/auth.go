package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/wilson400hong/slop-museum/internal/auth"
	"github.com/wilson400hong/slop-museum/internal/service"
)

// AuthHandler runs the GitHub OAuth flow and session management. Session
// decisions (who gets in, banned refusal) live in AuthService; this handler
// owns the HTTP half: state cookies, redirects, the session cookie.
type AuthHandler struct {
	github      *auth.GitHubProvider // nil when GitHub OAuth is not configured
	authService *service.AuthService
	logger      *slog.Logger
}

func NewAuthHandler(github *auth.GitHubProvider, authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		github:      github,
		authService: authService,
		logger:      logger,
	}
}

// HandleGitHubLogin is GET /auth/github/login: stash a random state in a
// short-lived cookie and send the browser to GitHub. The state round-trip
// is the CSRF protection for the whole flow.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		http.Error(w, "GitHub login is not configured", http.StatusNotImplemented)
		return
	}

	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback is GET /auth/github/callback?code=...&state=...
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		http.Error(w, "GitHub login is not configured", http.StatusNotImplemented)
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state check failed")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	// Single use.
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: authorization denied", slog.String("error", errParam))
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	result, err := h.authService.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		// Banned accounts land here: a 403 via writeError rather than a
		// session.
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type devLoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// HandleDevLogin is POST /auth/dev-login: password-gated local accounts so
// development doesn't need a GitHub OAuth app. The service refuses it
// unless a dev password hash is configured.
func (h *AuthHandler) HandleDevLogin(w http.ResponseWriter, r *http.Request) {
	var req devLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.authService.DevLogin(r.Context(), req.Name, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, result.User)
}

// HandleLogout is POST /auth/logout. Stateless sessions make logout purely
// client-side: drop the cookie, the token dies with it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe is GET /api/me. Requires auth.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // requires HTTPS; enable in production
	})
}
