package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedCategories returns the serialized category list, or nil on a miss.
func (s *Store) CachedCategories(ctx context.Context) ([]byte, error) {
	b, err := s.rdb.Get(ctx, getRedisKey(KeyCategoryList)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read category cache failed: %w", err)
	}
	return b, nil
}

func (s *Store) CacheCategories(ctx context.Context, b []byte, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, getRedisKey(KeyCategoryList), b, ttl).Err(); err != nil {
		return fmt.Errorf("write category cache failed: %w", err)
	}
	return nil
}

func (s *Store) InvalidateCategories(ctx context.Context) error {
	if err := s.rdb.Del(ctx, getRedisKey(KeyCategoryList)).Err(); err != nil {
		return fmt.Errorf("invalidate category cache failed: %w", err)
	}
	return nil
}
