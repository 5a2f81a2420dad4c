package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wilson400hong/slop-museum/internal/apperror"
	"github.com/wilson400hong/slop-museum/internal/model"
	"github.com/wilson400hong/slop-museum/internal/repository"
)

// ModerationAction is what an admin does with a pending report.
type ModerationAction string

const (
	// ActionDismiss closes the report without touching the work.
	ActionDismiss ModerationAction = "dismiss"
	// ActionHide keeps the work in storage but removes it from every
	// public listing.
	ActionHide ModerationAction = "hide"
	// ActionDelete removes the work permanently.
	ActionDelete ModerationAction = "delete"
	// ActionBan bans the work's author. The work itself stays visible;
	// an admin hides or deletes it with a separate action.
	ActionBan ModerationAction = "ban"
)

func (a ModerationAction) Valid() bool {
	switch a {
	case ActionDismiss, ActionHide, ActionDelete, ActionBan:
		return true
	}
	return false
}

// ModerationService handles the report queue: intake from users, review by
// admins.
type ModerationService struct {
	reports repository.ReportRepository
	works   repository.WorkRepository
	users   repository.UserRepository
	logger  *slog.Logger
}

func NewModerationService(
	reports repository.ReportRepository,
	works repository.WorkRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *ModerationService {
	return &ModerationService{
		reports: reports,
		works:   works,
		users:   users,
		logger:  logger,
	}
}

// RequireAdmin returns Forbidden unless the user holds the admin role.
func (s *ModerationService) RequireAdmin(ctx context.Context, userID string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsAdmin() {
		return apperror.Forbidden("moderation requires an admin account")
	}
	return nil
}

// Report files a complaint about a work. Any authenticated user can report;
// the work just has to exist.
func (s *ModerationService) Report(ctx context.Context, reporterID, workID string, reason model.ReportReason) (*model.Report, error) {
	if !reason.Valid() {
		return nil, apperror.ValidationFailed("reason", fmt.Sprintf("unknown report reason %q", reason))
	}
	if _, err := s.works.GetWork(ctx, workID); err != nil {
		return nil, err
	}

	report := &model.Report{
		WorkID:     workID,
		ReporterID: reporterID,
		Reason:     reason,
	}
	if err := s.reports.CreateReport(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info("work reported", "work_id", workID, "reason", reason)
	return report, nil
}

// PendingReports builds the admin queue: each pending report joined with a
// summary of its work and the reporter's display name. Reports whose work
// was deleted in the meantime stay in the queue with a placeholder summary,
// so an admin can still resolve them.
func (s *ModerationService) PendingReports(ctx context.Context) ([]model.PendingReport, error) {
	reports, err := s.reports.ListPendingReports(ctx)
	if err != nil {
		return nil, err
	}

	reporterIDs := make([]string, 0, len(reports))
	for _, r := range reports {
		reporterIDs = append(reporterIDs, r.ReporterID)
	}
	reporters, err := s.users.UsersByID(ctx, reporterIDs)
	if err != nil {
		return nil, err
	}

	pending := make([]model.PendingReport, 0, len(reports))
	for _, r := range reports {
		p := model.PendingReport{Report: r}

		work, err := s.works.GetWork(ctx, r.WorkID)
		switch {
		case err == nil:
			p.Work = model.ReportedWork{
				ID:              work.ID,
				Title:           work.Title,
				PreviewImageURL: work.PreviewImageURL,
				Hidden:          work.Hidden,
				UserID:          work.UserID,
			}
		case errors.Is(err, apperror.ErrNotFound):
			p.Work = model.ReportedWork{
				ID:      r.WorkID,
				Title:   "(deleted)",
				Deleted: true,
			}
		default:
			return nil, err
		}

		if reporter, ok := reporters[r.ReporterID]; ok {
			p.ReporterName = reporter.DisplayName
		}
		pending = append(pending, p)
	}
	return pending, nil
}

// Moderate resolves a pending report.
//
// Checks run in a fixed order before anything mutates: caller must be an
// admin, the report must exist, and it must still be pending. Only then
// does the action apply, and the final conditional transition closes the
// report — if another admin settled it in between, the transition reports
// the conflict and this call's side effects were the same ones the winner
// would have applied.
func (s *ModerationService) Moderate(ctx context.Context, adminID, reportID string, action ModerationAction) (*model.Report, error) {
	if err := s.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	if !action.Valid() {
		return nil, apperror.ValidationFailed("action", fmt.Sprintf("unknown moderation action %q", action))
	}

	report, err := s.reports.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != model.ReportPending {
		return nil, apperror.Conflict("report", reportID)
	}

	target := model.ReportReviewed
	switch action {
	case ActionDismiss:
		target = model.ReportDismissed

	case ActionHide:
		if err := s.works.SetWorkHidden(ctx, report.WorkID, true); err != nil {
			return nil, err
		}

	case ActionDelete:
		if err := s.works.DeleteWork(ctx, report.WorkID); err != nil {
			return nil, err
		}

	case ActionBan:
		work, err := s.works.GetWork(ctx, report.WorkID)
		if err != nil {
			return nil, err
		}
		if err := s.users.SetUserBanned(ctx, work.UserID, true); err != nil {
			return nil, err
		}
	}

	done, err := s.reports.TransitionReport(ctx, reportID, target)
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, apperror.Conflict("report", reportID)
	}

	s.logger.Info("report resolved",
		"report_id", reportID,
		"action", action,
		"admin_id", adminID)

	report.Status = target
	return report, nil
}
