package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/wilson400hong/slop-museum/internal/apperror"
	"github.com/wilson400hong/slop-museum/internal/model"
)

// CreateReport inserts a new report in the pending state.
func (db *DB) CreateReport(ctx context.Context, report *model.Report) error {
	report.ID = xid.New().String()
	report.Status = model.ReportPending
	report.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO reports (id, work_id, reporter_id, reason, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		report.ID, report.WorkID, report.ReporterID, report.Reason,
		report.Status, report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting report: %w", err)
	}
	return nil
}

// GetReport retrieves a report by ID.
func (db *DB) GetReport(ctx context.Context, id string) (*model.Report, error) {
	var r model.Report
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, work_id, reporter_id, reason, status, created_at
		 FROM reports WHERE id = ?`,
		id,
	).Scan(&r.ID, &r.WorkID, &r.ReporterID, &r.Reason, &r.Status, &r.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("report", id)
		}
		return nil, fmt.Errorf("sqlite: getting report %s: %w", id, err)
	}
	return &r, nil
}

// ListPendingReports returns pending reports newest first.
func (db *DB) ListPendingReports(ctx context.Context) ([]model.Report, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, work_id, reporter_id, reason, status, created_at
		 FROM reports
		 WHERE status = ?
		 ORDER BY created_at DESC, id DESC`,
		model.ReportPending,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing pending reports: %w", err)
	}
	defer rows.Close()

	reports := make([]model.Report, 0, 16)
	for rows.Next() {
		var r model.Report
		if err := rows.Scan(&r.ID, &r.WorkID, &r.ReporterID, &r.Reason, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning report row: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating reports: %w", err)
	}
	return reports, nil
}

// TransitionReport conditionally moves a report out of the pending state.
//
// The WHERE clause carries the precondition: only a currently-pending report
// is updated. Zero rows affected means the report was already resolved (or
// never existed) and the transition did NOT happen — the caller turns that
// into a precondition error. Because the check and the update are one
// statement, two admins racing on the same report cannot both succeed.
func (db *DB) TransitionReport(ctx context.Context, id string, to model.ReportStatus) (bool, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE reports SET status = ? WHERE id = ? AND status = ?`,
		to, id, model.ReportPending,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: transitioning report %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return affected > 0, nil
}
