package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gameforum/models"

	"github.com/redis/go-redis/v9"
)

// ScorePerLike is 86400s / 200: a thread needs 200 likes to stay on the
// trending list one extra day.
const ScorePerLike = 432

// AddThread seeds the ranking with the creation time as initial score, so
// new threads start ahead of older ones with the same likes.
func (s *Store) AddThread(ctx context.Context, id models.ThreadID, createdAt time.Time) error {
	err := s.rdb.ZAdd(ctx, getRedisKey(KeyThreadRankZSet), redis.Z{
		Score:  float64(createdAt.Unix()),
		Member: id.String(),
	}).Err()
	if err != nil {
		return fmt.Errorf("add thread to rank failed (thread_id: %d): %w", id, err)
	}
	return nil
}

// BumpThread moves a ranked thread by delta likes. XX keeps deleted or
// never-ranked threads from reappearing with a bare like score.
func (s *Store) BumpThread(ctx context.Context, id models.ThreadID, delta int) error {
	err := s.rdb.ZAddArgsIncr(ctx, getRedisKey(KeyThreadRankZSet), redis.ZAddArgs{
		XX:      true,
		Members: []redis.Z{{Score: float64(delta * ScorePerLike), Member: id.String()}},
	}).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("bump thread rank failed (thread_id: %d): %w", id, err)
	}
	return nil
}

func (s *Store) RemoveThread(ctx context.Context, id models.ThreadID) error {
	if err := s.rdb.ZRem(ctx, getRedisKey(KeyThreadRankZSet), id.String()).Err(); err != nil {
		return fmt.Errorf("remove thread from rank failed (thread_id: %d): %w", id, err)
	}
	return nil
}

// TopThreads returns the n best ranked thread ids, best first.
func (s *Store) TopThreads(ctx context.Context, n int) ([]models.ThreadID, error) {
	if n <= 0 {
		return nil, nil
	}
	members, err := s.rdb.ZRevRange(ctx, getRedisKey(KeyThreadRankZSet), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read thread rank failed: %w", err)
	}
	ids := make([]models.ThreadID, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, models.ThreadID(id))
	}
	return ids, nil
}
