package database

import (
	"context"
	"time"

	"gameforum/models"
)

func InsertReport(ctx context.Context, q QueryClient, r *models.Report) error {
	return wrap("InsertReport", q.Insert(ctx, r))
}

func GetReport(ctx context.Context, q QueryClient, id models.ReportID) (*models.Report, error) {
	r := new(models.Report)
	if err := q.First(ctx, r, Where(Eq("id", id))); err != nil {
		return nil, wrap("GetReport", err)
	}
	return r, nil
}

// PendingReportExists reports whether reporter already has an open report
// against the same target.
func PendingReportExists(ctx context.Context, q QueryClient, reporter models.ProfileID, reportType string,
	thread *models.ThreadID, post *models.PostID, user *models.ProfileID) (bool, error) {
	query := Where(
		Eq("reporter_id", reporter),
		Eq("report_type", reportType),
		Eq("status", models.ReportPending),
	)
	switch reportType {
	case models.ReportTypeThread:
		query = query.And(targetFilter("thread_id", thread))
	case models.ReportTypePost:
		query = query.And(targetFilter("post_id", post))
	default:
		query = query.And(targetFilter("reported_user_id", user))
	}
	n, err := q.Count(ctx, &models.Report{}, query)
	return n > 0, wrap("PendingReportExists", err)
}

func targetFilter[T ~int64](column string, id *T) Filter {
	if id == nil {
		return IsNull(column)
	}
	return Eq(column, *id)
}

// ListReports returns reports newest first with their reporters. An empty
// status lists every report.
func ListReports(ctx context.Context, q QueryClient, status string, limit int) ([]*models.Report, error) {
	query := Query{}.With("Reporter").OrderBy("created_at DESC", "id DESC").Take(limit)
	if status != "" {
		query = query.And(Eq("status", status))
	}
	reports := make([]*models.Report, 0, limit)
	err := q.Select(ctx, &reports, query)
	return reports, wrap("ListReports", err)
}

// TransitionReport moves a pending report to status. It reports false when
// the report was no longer pending.
func TransitionReport(ctx context.Context, q QueryClient, id models.ReportID, status string,
	by models.ProfileID, at time.Time) (bool, error) {
	n, err := q.Update(ctx, &models.Report{},
		Where(Eq("id", id), Eq("status", models.ReportPending)),
		map[string]any{"status": status, "resolved_by": by, "resolved_at": at})
	if err != nil {
		return false, wrap("TransitionReport", err)
	}
	return n > 0, nil
}
