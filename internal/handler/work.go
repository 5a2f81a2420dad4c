package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/wilson400hong/slop-museum/internal/apperror"
	"github.com/wilson400hong/slop-museum/internal/auth"
	"github.com/wilson400hong/slop-museum/internal/service"
)

// WorkHandler serves the feed, single works, and submission.
type WorkHandler struct {
	works  *service.WorkService
	logger *slog.Logger
}

func NewWorkHandler(works *service.WorkService, logger *slog.Logger) *WorkHandler {
	return &WorkHandler{works: works, logger: logger}
}

// HandleFeed is GET /api/works?cursor=...&tag=a&tag=b&limit=n.
//
// tag may repeat, and each value may itself be a comma-separated list;
// all collected names filter with OR semantics. cursor is the opaque token
// from the previous page's nextCursor.
func (h *WorkHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, apperror.ValidationFailed("limit", "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	var tags []string
	for _, raw := range q["tag"] {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	page, err := h.works.Feed(r.Context(), q.Get("cursor"), tags, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleGet is GET /api/works/{id}.
func (h *WorkHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	work, err := h.works.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, work)
}

// HandleSubmit is POST /api/works. Requires auth.
func (h *WorkHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}

	var input service.SubmitWorkInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	work, err := h.works.Submit(r.Context(), userID, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, work)
}

// HandleTags is GET /api/tags.
func (h *WorkHandler) HandleTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.works.Tags(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// HandleBookmarkedWorks is GET /api/bookmarks. Requires auth.
func (h *WorkHandler) HandleBookmarkedWorks(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}

	works, err := h.works.BookmarkedWorks(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, works)
}
