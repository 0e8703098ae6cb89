package logic

import (
	"context"
	"errors"
	"strings"

	"gameforum/dao/database"
	"gameforum/models"
	"gameforum/pkg/errorx"
	"gameforum/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
	homeLatestLimit  = 5
	homeReviewLimit  = 3
	relatedLimit     = 5
	trendingLimit    = 5
)

func viewerProfile(viewer *models.SessionUser) models.ProfileID {
	if viewer == nil {
		return 0
	}
	return viewer.ProfileID
}

// degraded records a secondary lookup that failed; the page keeps its
// default value for field.
func degraded(page, field string, err error) {
	zap.L().Warn("secondary lookup failed, using default",
		zap.String("page", page),
		zap.String("field", field),
		zap.Error(err))
	metrics.DegradedFields.WithLabelValues(page, field).Inc()
}

// fanOut returns a group bounded by the configured concurrency. Tasks
// never return errors: each one records its own degradation.
func (s *Service) fanOut() *errgroup.Group {
	g := new(errgroup.Group)
	g.SetLimit(s.Forum.FanOut)
	return g
}

// summarize turns base rows into list entries. Post counts, like counts
// and the viewer's likes are each fetched with one batched query for the
// whole page.
func (s *Service) summarize(ctx context.Context, page string, threads []*models.Thread, viewer models.ProfileID) []*models.ThreadSummary {
	out := make([]*models.ThreadSummary, 0, len(threads))
	if len(threads) == 0 {
		return out
	}
	ids := make([]models.ThreadID, 0, len(threads))
	for _, t := range threads {
		ids = append(ids, t.ID)
	}

	var (
		posts = map[models.ThreadID]int64{}
		likes = map[models.ThreadID]int64{}
		liked = map[models.ThreadID]bool{}
	)
	g := s.fanOut()
	g.Go(func() error {
		m, err := database.PostCountsByThread(ctx, s.DB, ids)
		if err != nil {
			degraded(page, "post_count", err)
			return nil
		}
		posts = m
		return nil
	})
	g.Go(func() error {
		m, err := database.LikeCountsByThread(ctx, s.DB, ids)
		if err != nil {
			degraded(page, "like_count", err)
			return nil
		}
		likes = m
		return nil
	})
	if viewer != 0 {
		g.Go(func() error {
			m, err := database.LikedThreads(ctx, s.DB, viewer, ids)
			if err != nil {
				degraded(page, "user_liked", err)
				return nil
			}
			liked = m
			return nil
		})
	}
	_ = g.Wait()

	for _, t := range threads {
		sum := newSummary(t)
		sum.PostCount = posts[t.ID]
		sum.LikeCount = likes[t.ID]
		sum.UserLiked = liked[t.ID]
		out = append(out, sum)
	}
	return out
}

func newSummary(t *models.Thread) *models.ThreadSummary {
	sum := &models.ThreadSummary{
		ID:        t.ID,
		Title:     t.Title,
		Content:   t.Content,
		Author:    models.NewAuthorView(t.AuthorID, t.Author),
		ViewCount: t.ViewCount,
		IsPinned:  t.IsPinned,
		IsLocked:  t.IsLocked,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.Category != nil {
		sum.Category = &models.CategoryView{ID: t.Category.ID, Name: t.Category.Name}
	}
	return sum
}

// searchFilter applies a title, content or author search to f.
func (s *Service) searchFilter(ctx context.Context, f *database.ThreadFilter, term, searchType string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	switch searchType {
	case models.SearchAuthor:
		ids, err := database.ProfileIDsMatching(ctx, s.DB, term)
		if err != nil {
			return storageErr("database.ProfileIDsMatching", err, nil, zap.String("term", term))
		}
		f.FilterAuthors = true
		f.AuthorIDs = ids
	case models.SearchContent:
		f.Search = term
		f.SearchColumns = []string{"content"}
	default:
		f.Search = term
		f.SearchColumns = []string{"title"}
	}
	return nil
}

// ListThreads is the forum page: pinned threads first, then the chosen
// order.
func (s *Service) ListThreads(ctx context.Context, p *models.ParamThreadList, viewer *models.SessionUser) ([]*models.ThreadSummary, error) {
	f := database.ThreadFilter{
		CategoryID:  p.CategoryID,
		Sort:        p.Sort,
		PinnedFirst: true,
		Limit:       clamp(p.Limit, defaultListLimit, maxListLimit),
		Offset:      p.Offset,
	}
	if err := s.searchFilter(ctx, &f, p.Search, p.SearchType); err != nil {
		return nil, err
	}
	threads, err := database.ListThreads(ctx, s.DB, f)
	if err != nil {
		return nil, storageErr("database.ListThreads", err, nil)
	}
	return s.summarize(ctx, "forum", threads, viewerProfile(viewer)), nil
}

// GetThreadDetail loads a thread page and counts the visit.
func (s *Service) GetThreadDetail(ctx context.Context, id models.ThreadID, viewer *models.SessionUser) (*models.ThreadDetail, error) {
	t, err := database.GetThread(ctx, s.DB, id)
	if err != nil {
		return nil, storageErr("database.GetThread", err, nil, zap.Int64("thread_id", int64(id)))
	}
	if err = database.IncrementThreadViews(ctx, s.DB, id); err != nil {
		degraded("thread", "view_count", err)
	} else {
		t.ViewCount++
	}

	posts, err := database.PostsByThread(ctx, s.DB, id)
	if err != nil {
		return nil, storageErr("database.PostsByThread", err, nil, zap.Int64("thread_id", int64(id)))
	}
	postIDs := make([]models.PostID, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
	}

	me := viewerProfile(viewer)
	var (
		summary   []*models.ThreadSummary
		related   []*models.ThreadSummary
		likeCount = map[models.PostID]int64{}
		likedBy   = map[models.PostID]bool{}
	)
	g := s.fanOut()
	g.Go(func() error {
		summary = s.summarize(ctx, "thread", []*models.Thread{t}, me)
		return nil
	})
	g.Go(func() error {
		m, err := database.LikeCountsByPost(ctx, s.DB, postIDs)
		if err != nil {
			degraded("thread", "post_like_count", err)
			return nil
		}
		likeCount = m
		return nil
	})
	if me != 0 {
		g.Go(func() error {
			m, err := database.LikedPosts(ctx, s.DB, me, postIDs)
			if err != nil {
				degraded("thread", "post_user_liked", err)
				return nil
			}
			likedBy = m
			return nil
		})
	}
	g.Go(func() error {
		rows, err := database.ListThreads(ctx, s.DB, database.ThreadFilter{
			CategoryID: t.CategoryID,
			ExcludeID:  t.ID,
			Limit:      relatedLimit,
		})
		if err != nil {
			degraded("thread", "related", err)
			related = []*models.ThreadSummary{}
			return nil
		}
		related = s.summarize(ctx, "related", rows, me)
		return nil
	})
	_ = g.Wait()

	views := make([]*models.PostView, 0, len(posts))
	for i, p := range posts {
		views = append(views, &models.PostView{
			ID:        p.ID,
			ThreadID:  p.ThreadID,
			Content:   p.Content,
			Author:    models.NewAuthorView(p.AuthorID, p.Author),
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
			Position:  i + 1,
			LikeCount: likeCount[p.ID],
			UserLiked: likedBy[p.ID],
		})
	}
	return &models.ThreadDetail{Thread: summary[0], Posts: views, Related: related}, nil
}

// reviewsCategory resolves the configured reviews category; nil when it
// does not exist.
func (s *Service) reviewsCategory(ctx context.Context) (*models.Category, error) {
	c, err := database.GetCategoryByName(ctx, s.DB, s.Forum.ReviewsCategory)
	if err != nil {
		return nil, storageErr("database.GetCategoryByName", err, nil, zap.String("name", s.Forum.ReviewsCategory))
	}
	return c, nil
}

// GetHome builds the landing page: newest threads, newest reviews and the
// trending ranking.
func (s *Service) GetHome(ctx context.Context, viewer *models.SessionUser) (*models.HomeView, error) {
	me := viewerProfile(viewer)
	latest, err := database.ListThreads(ctx, s.DB, database.ThreadFilter{Limit: homeLatestLimit})
	if err != nil {
		return nil, storageErr("database.ListThreads", err, nil)
	}

	home := &models.HomeView{
		LatestThreads: s.summarize(ctx, "home", latest, me),
		LatestReviews: []*models.ThreadSummary{},
		Trending:      []*models.ThreadSummary{},
	}

	reviews, err := s.reviewsCategory(ctx)
	if err != nil {
		return nil, err
	}
	if reviews != nil {
		rows, err := database.ListThreads(ctx, s.DB, database.ThreadFilter{CategoryID: reviews.ID, Limit: homeReviewLimit})
		if err != nil {
			return nil, storageErr("database.ListThreads", err, nil)
		}
		home.LatestReviews = s.summarize(ctx, "home", rows, me)
	}

	ids, err := s.Redis.TopThreads(ctx, trendingLimit)
	if err != nil {
		degraded("home", "trending", err)
		return home, nil
	}
	rows, err := database.ThreadsByIDs(ctx, s.DB, ids)
	if err != nil {
		degraded("home", "trending", err)
		return home, nil
	}
	home.Trending = s.summarize(ctx, "home", rows, me)
	return home, nil
}

// ListReviews returns every thread of the reviews category, newest first.
func (s *Service) ListReviews(ctx context.Context, viewer *models.SessionUser) ([]*models.ThreadSummary, error) {
	reviews, err := s.reviewsCategory(ctx)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		return []*models.ThreadSummary{}, nil
	}
	rows, err := database.ListThreads(ctx, s.DB, database.ThreadFilter{CategoryID: reviews.ID})
	if err != nil {
		return nil, storageErr("database.ListThreads", err, nil)
	}
	return s.summarize(ctx, "reviews", rows, viewerProfile(viewer)), nil
}

// ListAdminThreads is the moderation table.
func (s *Service) ListAdminThreads(ctx context.Context, p *models.ParamAdminThreadList) ([]*models.ThreadSummary, error) {
	sort := p.Sort
	if sort == "" {
		sort = models.SortNewest
	}
	f := database.ThreadFilter{
		CategoryID: p.CategoryID,
		Status:     p.Status,
		Sort:       sort,
		Limit:      clamp(p.Limit, defaultListLimit, maxListLimit),
		Offset:     p.Offset,
	}
	if err := s.searchFilter(ctx, &f, p.Search, models.SearchTitle); err != nil {
		return nil, err
	}
	rows, err := database.ListThreads(ctx, s.DB, f)
	if err != nil {
		return nil, storageErr("database.ListThreads", err, nil)
	}
	return s.summarize(ctx, "admin_threads", rows, 0), nil
}

// threadOrNotFound loads a thread for a write path.
func (s *Service) threadOrNotFound(ctx context.Context, id models.ThreadID) (*models.Thread, error) {
	t, err := database.GetThread(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, errorx.ErrNotFound.WithMsg("thread not found")
		}
		return nil, storageErr("database.GetThread", err, nil, zap.Int64("thread_id", int64(id)))
	}
	return t, nil
}
