package logic

import (
	"context"
	"strings"

	"gameforum/dao/database"
	"gameforum/models"
	"gameforum/pkg/errorx"

	"go.uber.org/zap"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// Search backs the header search box: threads matching title or content
// and users matching username or display name.
func (s *Service) Search(ctx context.Context, p *models.ParamSearch, viewer *models.SessionUser) (*models.SearchResult, error) {
	term := strings.TrimSpace(p.Query)
	if len([]rune(term)) < 2 {
		return nil, errorx.ErrInvalidParam.WithMsg("search term must be at least 2 characters")
	}
	limit := clamp(p.Limit, defaultSearchLimit, maxSearchLimit)

	threads, err := s.searchThreads(ctx, term, limit)
	if err != nil {
		return nil, err
	}
	profiles, err := database.SearchProfiles(ctx, s.DB, term, limit)
	if err != nil {
		return nil, storageErr("database.SearchProfiles", err, nil, zap.String("term", term))
	}

	users := make([]*models.FollowEntry, 0, len(profiles))
	for _, prof := range profiles {
		users = append(users, followEntry(prof.ID, prof))
	}
	return &models.SearchResult{
		Threads: s.summarize(ctx, "search", threads, viewerProfile(viewer)),
		Users:   users,
	}, nil
}

// searchThreads asks the full-text index first and falls back to LIKE
// matching when there is no index or it fails.
func (s *Service) searchThreads(ctx context.Context, term string, limit int) ([]*models.Thread, error) {
	if s.Deps.Search != nil {
		ids, err := s.Deps.Search.Search(ctx, term, limit)
		if err == nil {
			rows, err := database.ThreadsByIDs(ctx, s.DB, ids)
			if err != nil {
				return nil, storageErr("database.ThreadsByIDs", err, nil)
			}
			return rows, nil
		}
		degraded("search", "full_text", err)
	}
	rows, err := database.ListThreads(ctx, s.DB, database.ThreadFilter{
		Search:        term,
		SearchColumns: []string{"title", "content"},
		Limit:         limit,
	})
	if err != nil {
		return nil, storageErr("database.ListThreads", err, nil, zap.String("term", term))
	}
	return rows, nil
}
