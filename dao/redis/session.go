package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gameforum/models"

	"github.com/redis/go-redis/v9"
)

func sessionKey(uid models.UserID) string {
	return getRedisKey(KeySessionPrefix + uid.String())
}

// PersistSession records token as the only active session of uid. A later
// login overwrites it, which revokes the earlier token.
func (s *Store) PersistSession(ctx context.Context, uid models.UserID, token string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, sessionKey(uid), token, ttl).Err(); err != nil {
		return fmt.Errorf("persist session failed (user_id: %d): %w", uid, err)
	}
	return nil
}

// ReadSession returns the active token of uid, or "" when there is none.
func (s *Store) ReadSession(ctx context.Context, uid models.UserID) (string, error) {
	token, err := s.rdb.Get(ctx, sessionKey(uid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read session failed (user_id: %d): %w", uid, err)
	}
	return token, nil
}

func (s *Store) ClearSession(ctx context.Context, uid models.UserID) error {
	if err := s.rdb.Del(ctx, sessionKey(uid)).Err(); err != nil {
		return fmt.Errorf("clear session failed (user_id: %d): %w", uid, err)
	}
	return nil
}
