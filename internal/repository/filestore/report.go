package filestore

import (
	"context"
	"sort"
	"time"

	"github.com/rs/xid"

	"github.com/wilson400hong/slop-museum/internal/apperror"
	"github.com/wilson400hong/slop-museum/internal/model"
)

func (s *Store) CreateReport(ctx context.Context, report *model.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	report.ID = xid.New().String()
	report.Status = model.ReportPending
	report.CreatedAt = time.Now().UTC()
	s.doc.Reports = append(s.doc.Reports, *report)
	return s.save()
}

func (s *Store) GetReport(ctx context.Context, id string) (*model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.doc.Reports {
		if r.ID == id {
			out := r
			return &out, nil
		}
	}
	return nil, apperror.NotFound("report", id)
}

func (s *Store) ListPendingReports(ctx context.Context) ([]model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports := make([]model.Report, 0)
	for _, r := range s.doc.Reports {
		if r.Status == model.ReportPending {
			reports = append(reports, r)
		}
	}
	sort.Slice(reports, func(i, j int) bool {
		if !reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].CreatedAt.After(reports[j].CreatedAt)
		}
		return reports[i].ID > reports[j].ID
	})
	return reports, nil
}

// TransitionReport settles the report iff it is still pending. Under the
// store mutex the check and the write are one atomic step, matching the
// sqlite backend's conditional UPDATE.
func (s *Store) TransitionReport(ctx context.Context, id string, to model.ReportStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Reports {
		if s.doc.Reports[i].ID != id {
			continue
		}
		if s.doc.Reports[i].Status != model.ReportPending {
			return false, nil
		}
		s.doc.Reports[i].Status = to
		return true, s.save()
	}
	return false, nil
}
