package handler

import (
	"log/slog"
	"net/http"

	"github.com/wilson400hong/slop-museum/internal/apperror"
	"github.com/wilson400hong/slop-museum/internal/auth"
	"github.com/wilson400hong/slop-museum/internal/model"
	"github.com/wilson400hong/slop-museum/internal/service"
)

// ModerationHandler serves report intake (any logged-in user) and the admin
// queue. Admin authorization is enforced in the service, not here — the
// handler can't tell an admin from anyone else and shouldn't try.
type ModerationHandler struct {
	moderation *service.ModerationService
	logger     *slog.Logger
}

func NewModerationHandler(moderation *service.ModerationService, logger *slog.Logger) *ModerationHandler {
	return &ModerationHandler{moderation: moderation, logger: logger}
}

type reportRequest struct {
	WorkID string `json:"workId"`
	Reason string `json:"reason"`
}

// HandleReport is POST /api/reports. Requires auth.
func (h *ModerationHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}

	var req reportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.WorkID == "" {
		writeError(w, apperror.ValidationFailed("workId", "workId is required"))
		return
	}

	report, err := h.moderation.Report(r.Context(), userID, req.WorkID, model.ReportReason(req.Reason))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// HandlePendingReports is GET /api/admin/reports. Requires auth; the
// service rejects non-admins.
func (h *ModerationHandler) HandlePendingReports(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}

	// Admin gate lives in Moderate; for the queue listing the check is
	// here because listing has no other admin-only entry point.
	if err := h.requireAdmin(r, userID); err != nil {
		writeError(w, err)
		return
	}

	reports, err := h.moderation.PendingReports(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

type moderateRequest struct {
	ReportID string `json:"reportId"`
	Action   string `json:"action"`
}

// HandleModerate is POST /api/admin/action. Requires auth; the service
// rejects non-admins and already-settled reports.
func (h *ModerationHandler) HandleModerate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}

	var req moderateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ReportID == "" {
		writeError(w, apperror.ValidationFailed("reportId", "reportId is required"))
		return
	}

	report, err := h.moderation.Moderate(r.Context(), userID, req.ReportID, service.ModerationAction(req.Action))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *ModerationHandler) requireAdmin(r *http.Request, userID string) error {
	return h.moderation.RequireAdmin(r.Context(), userID)
}
