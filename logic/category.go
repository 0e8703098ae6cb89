package logic

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"gameforum/dao/database"
	"gameforum/models"
	"gameforum/pkg/errorx"
	"gameforum/pkg/metrics"
	"gameforum/pkg/snowflake"

	"go.uber.org/zap"
)

const (
	categoriesKey = "categories"
	// categoryLoadTimeout bounds the shared category query, which outlives
	// the request that started it.
	categoryLoadTimeout = 5 * time.Second
)

// ListCategories reads through L1 (in-process) and L2 (Redis) before the
// database. Concurrent misses share one query.
func (s *Service) ListCategories(ctx context.Context) ([]*models.Category, error) {
	if s.L1 != nil {
		if b, ok := s.L1.Get(categoriesKey); ok {
			if list, err := decodeCategories(b); err == nil {
				metrics.CacheLookups.WithLabelValues("l1", "hit").Inc()
				return list, nil
			}
		}
		metrics.CacheLookups.WithLabelValues("l1", "miss").Inc()
	}

	b, err := s.Redis.CachedCategories(ctx)
	if err != nil {
		zap.L().Warn("redis.CachedCategories failed", zap.Error(err))
	}
	if b != nil {
		if list, err := decodeCategories(b); err == nil {
			metrics.CacheLookups.WithLabelValues("l2", "hit").Inc()
			s.fillL1(b)
			return list, nil
		}
	}
	metrics.CacheLookups.WithLabelValues("l2", "miss").Inc()

	v, err, _ := s.sf.Do(categoriesKey, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), categoryLoadTimeout)
		defer cancel()
		list, err := database.ListCategories(fctx, s.DB)
		if err != nil {
			return nil, err
		}
		if b, err := json.Marshal(list); err == nil {
			if err := s.Redis.CacheCategories(fctx, b, s.Cache.L2TTL); err != nil {
				zap.L().Warn("redis.CacheCategories failed", zap.Error(err))
			}
			s.fillL1(b)
		}
		return list, nil
	})
	if err != nil {
		return nil, storageErr("database.ListCategories", err, nil)
	}
	return v.([]*models.Category), nil
}

func decodeCategories(b []byte) ([]*models.Category, error) {
	list := make([]*models.Category, 0)
	err := json.Unmarshal(b, &list)
	return list, err
}

func (s *Service) fillL1(b []byte) {
	if s.L1 == nil {
		return
	}
	if err := s.L1.Set(categoriesKey, b); err != nil {
		zap.L().Warn("l1 cache set failed", zap.Error(err))
	}
}

func (s *Service) invalidateCategories(ctx context.Context) {
	if s.L1 != nil {
		_ = s.L1.Remove(categoriesKey)
	}
	if err := s.Redis.InvalidateCategories(ctx); err != nil {
		zap.L().Warn("redis.InvalidateCategories failed", zap.Error(err))
	}
}

// CreateCategory adds a category; names are unique.
func (s *Service) CreateCategory(ctx context.Context, p *models.ParamCategory) (*models.Category, error) {
	name, err := validateText("name", p.Name, 128)
	if err != nil {
		return nil, err
	}
	c := &models.Category{
		ID:          models.CategoryID(snowflake.GenID()),
		Name:        name,
		Description: strings.TrimSpace(p.Description),
	}
	if err = database.InsertCategory(ctx, s.DB, c); err != nil {
		if database.IsConstraint(err) {
			return nil, errorx.ErrInvalidParam.WithMsg("category %q already exists", name)
		}
		return nil, storageErr("database.InsertCategory", err, nil, zap.String("name", name))
	}
	s.invalidateCategories(ctx)
	return c, nil
}
