package redis

import (
	"context"
	"testing"
	"time"

	"gameforum/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestSessionLifecycle(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()
	uid := models.UserID(1001)

	got, err := s.ReadSession(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.PersistSession(ctx, uid, "token-a", time.Hour))
	require.NoError(t, s.PersistSession(ctx, uid, "token-b", time.Hour))
	got, err = s.ReadSession(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "token-b", got)
	assert.True(t, mr.Exists("gameforum:session:1001"))

	mr.FastForward(2 * time.Hour)
	got, err = s.ReadSession(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.PersistSession(ctx, uid, "token-c", time.Hour))
	require.NoError(t, s.ClearSession(ctx, uid))
	got, err = s.ReadSession(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSessionReadFailsWhenServerDown(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Close()

	_, err := s.ReadSession(context.Background(), 1)
	assert.Error(t, err)
}

func TestThreadRank(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.AddThread(ctx, 1, base))
	require.NoError(t, s.AddThread(ctx, 2, base.Add(time.Hour)))
	require.NoError(t, s.AddThread(ctx, 3, base.Add(2*time.Hour)))

	top, err := s.TopThreads(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []models.ThreadID{3, 2}, top)

	// 10 likes are worth 4320s, more than the 2h head start of thread 3.
	for i := 0; i < 10; i++ {
		require.NoError(t, s.BumpThread(ctx, 1, 1))
	}
	top, err = s.TopThreads(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []models.ThreadID{1, 3, 2}, top)

	require.NoError(t, s.RemoveThread(ctx, 1))
	require.NoError(t, s.BumpThread(ctx, 1, 1))
	top, err = s.TopThreads(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []models.ThreadID{3, 2}, top)
}

func TestCategoryCache(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	b, err := s.CachedCategories(ctx)
	require.NoError(t, err)
	assert.Nil(t, b)

	require.NoError(t, s.CacheCategories(ctx, []byte(`[]`), time.Minute))
	b, err = s.CachedCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(b))

	require.NoError(t, s.InvalidateCategories(ctx))
	assert.False(t, mr.Exists("gameforum:cache:categories"))
}
