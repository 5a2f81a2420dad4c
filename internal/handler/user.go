package handler

import (
	"log/slog"
	"net/http"

	"github.com/wilson400hong/slop-museum/internal/auth"
	"github.com/wilson400hong/slop-museum/internal/service"
)

// UserHandler serves public profile pages: a user's works and the reactions
// they have collected.
type UserHandler struct {
	works  *service.WorkService
	logger *slog.Logger
}

func NewUserHandler(works *service.WorkService, logger *slog.Logger) *UserHandler {
	return &UserHandler{works: works, logger: logger}
}

// HandleUserWorks is GET /api/users/{id}/works. Public; anonymous works
// only appear when the owner views their own profile.
func (h *UserHandler) HandleUserWorks(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	works, err := h.works.WorksByUser(r.Context(), callerID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, works)
}

// HandleUserReactionStats is GET /api/users/{id}/reaction-stats: total
// reactions received across the user's works, per kind.
func (h *UserHandler) HandleUserReactionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.works.UserReactionStats(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
