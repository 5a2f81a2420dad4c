package handler

import (
	"log/slog"
	"net/http"

	"github.com/wilson400hong/slop-museum/internal/apperror"
	"github.com/wilson400hong/slop-museum/internal/auth"
	"github.com/wilson400hong/slop-museum/internal/model"
	"github.com/wilson400hong/slop-museum/internal/service"
)

// ToggleHandler serves reactions and bookmarks. Both POST endpoints are
// toggles: the response's "action" field reports whether this call added or
// removed the row.
type ToggleHandler struct {
	toggles *service.ToggleService
	logger  *slog.Logger
}

func NewToggleHandler(toggles *service.ToggleService, logger *slog.Logger) *ToggleHandler {
	return &ToggleHandler{toggles: toggles, logger: logger}
}

type toggleReactionRequest struct {
	WorkID string `json:"workId"`
	Kind   string `json:"kind"`
}

type toggleBookmarkRequest struct {
	WorkID string `json:"workId"`
}

type toggleResponse struct {
	Action string `json:"action"` // "added" or "removed"
}

func toggleResult(added bool) toggleResponse {
	if added {
		return toggleResponse{Action: "added"}
	}
	return toggleResponse{Action: "removed"}
}

// HandleToggleReaction is POST /api/reactions. Requires auth.
func (h *ToggleHandler) HandleToggleReaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}

	var req toggleReactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.WorkID == "" {
		writeError(w, apperror.ValidationFailed("workId", "workId is required"))
		return
	}

	added, err := h.toggles.ToggleReaction(r.Context(), userID, req.WorkID, model.ReactionKind(req.Kind))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResult(added))
}

// HandleToggleBookmark is POST /api/bookmarks. Requires auth.
func (h *ToggleHandler) HandleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}

	var req toggleBookmarkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.WorkID == "" {
		writeError(w, apperror.ValidationFailed("workId", "workId is required"))
		return
	}

	added, err := h.toggles.ToggleBookmark(r.Context(), userID, req.WorkID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResult(added))
}

// HandleReactionStats is GET /api/works/{id}/reactions. Works logged out;
// the userActive list is empty for anonymous viewers.
func (h *ToggleHandler) HandleReactionStats(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	stats, err := h.toggles.WorkReactionStats(r.Context(), r.PathValue("id"), callerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleBookmarkState is GET /api/works/{id}/bookmark. Requires auth.
func (h *ToggleHandler) HandleBookmarkState(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}

	bookmarked, err := h.toggles.IsBookmarked(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"bookmarked": bookmarked})
}
