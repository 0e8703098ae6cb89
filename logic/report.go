package logic

import (
	"context"
	"slices"
	"strings"

	"gameforum/dao/database"
	"gameforum/models"
	"gameforum/pkg/assistant"
	"gameforum/pkg/errorx"
	"gameforum/pkg/snowflake"

	"go.uber.org/zap"
)

const (
	maxReportDescription = 1000
	defaultReportLimit   = 50
)

// reportTarget checks that exactly the id matching the report type is set.
func reportTarget(p *models.ParamReport) error {
	set := 0
	for _, present := range []bool{p.ThreadID != nil, p.PostID != nil, p.ReportedUserID != nil} {
		if present {
			set++
		}
	}
	ok := set == 1
	switch p.ReportType {
	case models.ReportTypeThread:
		ok = ok && p.ThreadID != nil
	case models.ReportTypePost:
		ok = ok && p.PostID != nil
	case models.ReportTypeProfile:
		ok = ok && p.ReportedUserID != nil
	default:
		return errorx.ErrInvalidParam.WithMsg("unknown report type %q", p.ReportType)
	}
	if !ok {
		return errorx.ErrInvalidParam.WithMsg("a %s report needs exactly its %s id", p.ReportType, p.ReportType)
	}
	if !slices.Contains(models.ReportReasons, p.Reason) {
		return errorx.ErrInvalidParam.WithMsg("unknown report reason %q", p.Reason)
	}
	if len([]rune(p.Description)) > maxReportDescription {
		return errorx.ErrInvalidParam.WithMsg("description must be at most %d characters", maxReportDescription)
	}
	return nil
}

// reportOwner returns the profile that owns the reported content.
func (s *Service) reportOwner(ctx context.Context, p *models.ParamReport) (models.ProfileID, error) {
	switch p.ReportType {
	case models.ReportTypeThread:
		t, err := database.GetThread(ctx, s.DB, *p.ThreadID)
		if err != nil {
			return 0, storageErr("database.GetThread", err, errorx.ErrNotFound.WithMsg("reported thread not found"))
		}
		return t.AuthorID, nil
	case models.ReportTypePost:
		post, err := database.GetPost(ctx, s.DB, *p.PostID)
		if err != nil {
			return 0, storageErr("database.GetPost", err, errorx.ErrNotFound.WithMsg("reported post not found"))
		}
		return post.AuthorID, nil
	default:
		prof, err := database.GetProfileByID(ctx, s.DB, *p.ReportedUserID)
		if err != nil {
			return 0, storageErr("database.GetProfileByID", err, errorx.ErrNotFound.WithMsg("reported user not found"))
		}
		return prof.ID, nil
	}
}

// SubmitReport files a pending report unless the reporter already has
// one open against the same target.
func (s *Service) SubmitReport(ctx context.Context, user *models.SessionUser, p *models.ParamReport) (*models.Report, error) {
	if err := reportTarget(p); err != nil {
		return nil, err
	}
	reporter, err := s.profileOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	owner, err := s.reportOwner(ctx, p)
	if err != nil {
		return nil, err
	}

	exists, err := database.PendingReportExists(ctx, s.DB, reporter.ID, p.ReportType, p.ThreadID, p.PostID, p.ReportedUserID)
	if err != nil {
		return nil, storageErr("database.PendingReportExists", err, nil)
	}
	if exists {
		return nil, errorx.ErrReportExists
	}

	r := &models.Report{
		ID:             models.ReportID(snowflake.GenID()),
		ReporterID:     reporter.ID,
		ReportType:     p.ReportType,
		Reason:         p.Reason,
		Description:    strings.TrimSpace(p.Description),
		ThreadID:       p.ThreadID,
		PostID:         p.PostID,
		ReportedUserID: &owner,
		Status:         models.ReportPending,
	}
	if err = database.InsertReport(ctx, s.DB, r); err != nil {
		return nil, storageErr("database.InsertReport", err, nil, zap.Int64("reporter", int64(reporter.ID)))
	}
	return r, nil
}

// CheckExistingReport reports whether user already has a pending report
// against the target described by p.
func (s *Service) CheckExistingReport(ctx context.Context, user *models.SessionUser, p *models.ParamReport) (bool, error) {
	if err := reportTarget(p); err != nil {
		return false, err
	}
	reporter, err := s.profileOf(ctx, user.ID)
	if err != nil {
		return false, err
	}
	exists, err := database.PendingReportExists(ctx, s.DB, reporter.ID, p.ReportType, p.ThreadID, p.PostID, p.ReportedUserID)
	if err != nil {
		return false, storageErr("database.PendingReportExists", err, nil)
	}
	return exists, nil
}

func requireStaff(user *models.SessionUser) error {
	if user == nil || !models.IsStaff(user.Role) {
		return errorx.ErrForbidden
	}
	return nil
}

// ListReports returns reports for the moderation page, newest first.
func (s *Service) ListReports(ctx context.Context, user *models.SessionUser, p *models.ParamReportList) ([]*models.ReportView, error) {
	if err := requireStaff(user); err != nil {
		return nil, err
	}
	reports, err := database.ListReports(ctx, s.DB, p.Status, clamp(p.Limit, defaultReportLimit, maxListLimit))
	if err != nil {
		return nil, storageErr("database.ListReports", err, nil)
	}

	threadIDs := make([]models.ThreadID, 0)
	for _, r := range reports {
		if r.ThreadID != nil {
			threadIDs = append(threadIDs, *r.ThreadID)
		}
	}
	titles, err := database.ThreadTitles(ctx, s.DB, threadIDs)
	if err != nil {
		degraded("reports", "target_title", err)
		titles = map[models.ThreadID]string{}
	}

	out := make([]*models.ReportView, 0, len(reports))
	for _, r := range reports {
		v := &models.ReportView{Report: r, ReporterName: models.UnknownActorName}
		if r.Reporter != nil {
			v.ReporterName = r.Reporter.Username
		}
		if r.ThreadID != nil {
			v.TargetTitle = titles[*r.ThreadID]
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Service) ResolveReport(ctx context.Context, user *models.SessionUser, id models.ReportID) (*models.Report, error) {
	return s.transitionReport(ctx, user, id, models.ReportResolved)
}

func (s *Service) DismissReport(ctx context.Context, user *models.SessionUser, id models.ReportID) (*models.Report, error) {
	return s.transitionReport(ctx, user, id, models.ReportDismissed)
}

// transitionReport moves a pending report to a final status. Final
// reports never change again.
func (s *Service) transitionReport(ctx context.Context, user *models.SessionUser, id models.ReportID, status string) (*models.Report, error) {
	if err := requireStaff(user); err != nil {
		return nil, err
	}
	r, err := database.GetReport(ctx, s.DB, id)
	if err != nil {
		return nil, storageErr("database.GetReport", err, errorx.ErrNotFound.WithMsg("report not found"), zap.Int64("report_id", int64(id)))
	}
	if models.IsFinal(r.Status) {
		return nil, errorx.ErrInvalidTransition
	}
	moderator, err := s.profileOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	at := s.now()
	ok, err := database.TransitionReport(ctx, s.DB, id, status, moderator.ID, at)
	if err != nil {
		return nil, storageErr("database.TransitionReport", err, nil, zap.Int64("report_id", int64(id)))
	}
	if !ok {
		return nil, errorx.ErrInvalidTransition
	}
	r.Status = status
	r.ResolvedBy = &moderator.ID
	r.ResolvedAt = &at
	return r, nil
}

// SuggestReportAction asks the assistant how to handle a report.
func (s *Service) SuggestReportAction(ctx context.Context, user *models.SessionUser, id models.ReportID) (string, error) {
	if err := requireStaff(user); err != nil {
		return "", err
	}
	if s.Advice == nil {
		return "", errorx.ErrAssistantDisabled
	}
	r, err := database.GetReport(ctx, s.DB, id)
	if err != nil {
		return "", storageErr("database.GetReport", err, errorx.ErrNotFound.WithMsg("report not found"), zap.Int64("report_id", int64(id)))
	}

	in := assistant.ReportInput{ReportType: r.ReportType, Reason: r.Reason, Description: r.Description}
	switch {
	case r.ThreadID != nil:
		if t, err := database.GetThread(ctx, s.DB, *r.ThreadID); err == nil {
			in.TargetTitle, in.TargetBody = t.Title, t.Content
		}
	case r.PostID != nil:
		if p, err := database.GetPost(ctx, s.DB, *r.PostID); err == nil {
			in.TargetBody = p.Content
		}
	case r.ReportedUserID != nil:
		if p, err := database.GetProfileByID(ctx, s.DB, *r.ReportedUserID); err == nil {
			in.TargetTitle, in.TargetBody = p.Name(), p.Bio
		}
	}

	hint, err := s.Advice.Suggest(ctx, in)
	if err != nil {
		zap.L().Error("assistant.Suggest failed", zap.Int64("report_id", int64(id)), zap.Error(err))
		return "", errorx.ErrServerBusy
	}
	return hint, nil
}
