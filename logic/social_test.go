package logic

import (
	"context"
	"testing"

	"gameforum/models"
	"gameforum/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadLikeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	th := f.thread(t, alice, f.category(t, "General"), "t")

	for i := 0; i < 2; i++ {
		st, err := f.svc.LikeThread(ctx, bob, th.ID)
		require.NoError(t, err)
		assert.Equal(t, models.LikeState{Liked: true, Count: 1}, *st)
	}
	liked, err := f.svc.CheckUserThreadLike(ctx, bob, th.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	score, err := f.mr.ZScore("gameforum:thread:rank", th.ID.String())
	require.NoError(t, err)
	assert.Equal(t, float64(th.CreatedAt.Unix()+432), score)

	for i := 0; i < 2; i++ {
		st, err := f.svc.UnlikeThread(ctx, bob, th.ID)
		require.NoError(t, err)
		assert.Equal(t, models.LikeState{Liked: false, Count: 0}, *st)
	}
	n, err := f.svc.GetThreadLikeCount(ctx, th.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = f.svc.LikeThread(ctx, bob, models.ThreadID(7))
	assert.ErrorIs(t, err, errorx.ErrNotFound)
}

func TestTogglePostLike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	th := f.thread(t, alice, f.category(t, "General"), "t")
	p := f.post(t, alice, th.ID, "reply")

	st, err := f.svc.TogglePostLike(ctx, alice, p.ID)
	require.NoError(t, err)
	assert.True(t, st.Liked)
	assert.Equal(t, int64(1), st.Count)

	st, err = f.svc.TogglePostLike(ctx, alice, p.ID)
	require.NoError(t, err)
	assert.False(t, st.Liked)
	assert.Zero(t, st.Count)

	_, err = f.svc.LikePost(ctx, alice, models.PostID(9))
	assert.ErrorIs(t, err, errorx.ErrNotFound)
}

func TestFollowLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	assert.ErrorIs(t, f.svc.FollowUser(ctx, alice, alice.ID), errorx.ErrSelfFollow)
	require.NoError(t, f.svc.FollowUser(ctx, alice, bob.ID))
	require.NoError(t, f.svc.FollowUser(ctx, alice, bob.ID))

	ok, err := f.svc.CheckFollowStatus(ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.svc.CheckFollowStatus(ctx, bob, alice.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	counts, err := f.svc.GetFollowCounts(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FollowCounts{Followers: 1, Following: 0}, *counts)
	counts, err = f.svc.GetFollowCounts(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FollowCounts{Followers: 0, Following: 1}, *counts)

	followers, err := f.svc.GetFollowersList(ctx, bob.ID, nil)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, alice.ID, followers[0].ID)
	assert.Equal(t, "alice", followers[0].Username)

	following, err := f.svc.GetFollowingList(ctx, alice.ID, bob)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, bob.ID, following[0].ID)

	require.NoError(t, f.svc.UnfollowUser(ctx, alice, bob.ID))
	require.NoError(t, f.svc.UnfollowUser(ctx, alice, bob.ID))
	counts, err = f.svc.GetFollowCounts(ctx, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, counts.Followers)

	assert.ErrorIs(t, f.svc.FollowUser(ctx, alice, models.UserID(1)), errorx.ErrUserNotExist)
}

func TestFollowListsHonorPrivacy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	require.NoError(t, f.svc.FollowUser(ctx, alice, bob.ID))

	_, err := f.svc.UpdatePrivacySettings(ctx, bob, &models.ParamPrivacySettings{
		ShowLikes: true, ShowFollowing: true, ShowProfileToGuest: true,
	})
	require.NoError(t, err)

	_, err = f.svc.GetFollowersList(ctx, bob.ID, alice)
	assert.ErrorIs(t, err, errorx.ErrProfilePrivate)
	list, err := f.svc.GetFollowersList(ctx, bob.ID, bob)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, err = f.svc.GetFollowingList(ctx, bob.ID, alice)
	assert.NoError(t, err)
}
