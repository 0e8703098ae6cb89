package redis

import (
	"context"
	"fmt"
	"time"

	"gameforum/settings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store wraps the shared client. redis.Client is safe for concurrent use,
// so one Store serves the whole process.
type Store struct {
	rdb *redis.Client
}

// New wraps an existing client; tests pass one pointed at miniredis.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Dial connects to the configured server and pings it.
func Dial(cfg *settings.RedisConfig) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config is nil")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis failed: %w", err)
	}

	zap.L().Info("init redis success",
		zap.String("addr", addr),
		zap.Int("db", cfg.DB),
	)
	return New(rdb), nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

// Ping is used by the /healthz endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
