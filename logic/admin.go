package logic

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gameforum/dao/database"
	"gameforum/models"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const (
	feedUsers   = 3
	feedThreads = 4
	feedReports = 3
	feedPosts   = 3
	feedSize    = 8
)

var reportNouns = map[string]string{
	models.ReportTypeThread:  "thread",
	models.ReportTypePost:    "post",
	models.ReportTypeProfile: "profile",
}

// GetAdminDashboard returns the site totals and the recent activity feed.
func (s *Service) GetAdminDashboard(ctx context.Context, user *models.SessionUser) (*models.AdminDashboard, error) {
	if err := requireStaff(user); err != nil {
		return nil, err
	}
	now := s.now()
	stats := new(models.AdminStats)
	if s.Stats != nil {
		var err error
		if stats, err = s.Stats.AdminStats(ctx, now); err != nil {
			return nil, storageErr("stats.AdminStats", err, nil)
		}
	}
	return &models.AdminDashboard{Stats: stats, Activity: s.activityFeed(ctx, now)}, nil
}

// activityFeed merges the newest users, threads, reports and posts. Items
// are ordered by their timestamps and only then rendered relative to now.
func (s *Service) activityFeed(ctx context.Context, now time.Time) []*models.ActivityItem {
	var (
		users   []*models.User
		threads []*models.Thread
		reports []*models.Report
		posts   []*models.Post
	)
	g := s.fanOut()
	g.Go(func() error {
		var err error
		if users, err = database.LatestUsers(ctx, s.DB, feedUsers); err != nil {
			degraded("admin", "activity_users", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if threads, err = database.LatestThreads(ctx, s.DB, feedThreads); err != nil {
			degraded("admin", "activity_threads", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if reports, err = database.ListReports(ctx, s.DB, "", feedReports); err != nil {
			degraded("admin", "activity_reports", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if posts, err = database.LatestPosts(ctx, s.DB, feedPosts); err != nil {
			degraded("admin", "activity_posts", err)
		}
		return nil
	})
	_ = g.Wait()

	items := make([]*models.ActivityItem, 0, len(users)+len(threads)+len(reports)+len(posts))
	for _, u := range users {
		items = append(items, &models.ActivityItem{
			Type:        models.ActivityUser,
			ID:          "user-" + u.ID.String(),
			Username:    u.Username,
			Description: fmt.Sprintf("New member signed up: @%s", u.Username),
			Severity:    models.SeverityLow,
			At:          u.CreatedAt,
		})
	}
	for _, t := range threads {
		name := actorName(t.Author)
		desc := fmt.Sprintf("@%s started a thread: %q", name, ellipsis(t.Title, 40))
		if t.Category != nil {
			desc += fmt.Sprintf(" (%s)", t.Category.Name)
		}
		items = append(items, &models.ActivityItem{
			Type:        models.ActivityThread,
			ID:          "thread-" + t.ID.String(),
			Username:    name,
			Description: desc,
			Severity:    models.SeverityLow,
			At:          t.CreatedAt,
		})
	}
	for _, r := range reports {
		name := actorName(r.Reporter)
		severity := models.SeverityLow
		if r.Status == models.ReportPending {
			severity = models.SeverityMedium
		}
		items = append(items, &models.ActivityItem{
			Type:        models.ActivityReport,
			ID:          "report-" + r.ID.String(),
			Username:    name,
			Description: fmt.Sprintf("@%s reported a %s", name, reportNouns[r.ReportType]),
			Severity:    severity,
			At:          r.CreatedAt,
		})
	}
	for _, p := range posts {
		name := actorName(p.Author)
		title := "untitled"
		if p.Thread != nil {
			title = ellipsis(p.Thread.Title, 30)
		}
		items = append(items, &models.ActivityItem{
			Type:        models.ActivityPost,
			ID:          "post-" + p.ID.String(),
			Username:    name,
			Description: fmt.Sprintf("@%s replied to %q", name, title),
			Severity:    models.SeverityLow,
			At:          p.CreatedAt,
		})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].At.After(items[j].At) })
	if len(items) > feedSize {
		items = items[:feedSize]
	}
	for _, it := range items {
		it.When = humanize.RelTime(it.At, now, "ago", "from now")
	}
	zap.L().Debug("activity feed built", zap.Int("items", len(items)))
	return items
}

func actorName(p *models.Profile) string {
	if p == nil {
		return models.UnknownActorName
	}
	return p.Username
}

func ellipsis(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
