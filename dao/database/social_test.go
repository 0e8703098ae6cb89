package database

import (
	"context"
	"testing"
	"time"

	"gameforum/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostLikesAreIdempotent(t *testing.T) {
	_, q := newTestDB(t)
	ctx := context.Background()
	alice := seedProfile(t, q, "alice")
	bob := seedProfile(t, q, "bob")
	th := seedThread(t, q, alice, seedCategory(t, q, "General"), "T", time.Now().UTC())
	p := seedPost(t, q, alice, th, time.Now().UTC())

	ok, err := LikePost(ctx, q, bob.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = LikePost(ctx, q, bob.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := CountPostLikes(ctx, q, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	liked, err := LikedPosts(ctx, q, bob.ID, []models.PostID{p.ID})
	require.NoError(t, err)
	assert.True(t, liked[p.ID])

	received, err := CountLikesReceived(ctx, q, []models.PostID{p.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, received)

	ok, err = UnlikePost(ctx, q, bob.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = UnlikePost(ctx, q, bob.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestThreadLikesAreSeparateFromPostLikes(t *testing.T) {
	_, q := newTestDB(t)
	ctx := context.Background()
	alice := seedProfile(t, q, "alice")
	bob := seedProfile(t, q, "bob")
	th := seedThread(t, q, alice, seedCategory(t, q, "General"), "T", time.Now().UTC())

	_, err := LikeThread(ctx, q, bob.ID, th.ID)
	require.NoError(t, err)
	_, err = LikeThread(ctx, q, alice.ID, th.ID)
	require.NoError(t, err)

	counts, err := LikeCountsByThread(ctx, q, []models.ThreadID{th.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[th.ID])

	liked, err := LikedThreads(ctx, q, bob.ID, []models.ThreadID{th.ID})
	require.NoError(t, err)
	assert.True(t, liked[th.ID])

	postLikes, err := LikeCountsByPost(ctx, q, []models.PostID{models.PostID(th.ID)})
	require.NoError(t, err)
	assert.Empty(t, postLikes)
}

func TestFollows(t *testing.T) {
	_, q := newTestDB(t)
	ctx := context.Background()
	alice := seedProfile(t, q, "alice")
	bob := seedProfile(t, q, "bob")
	carol := seedProfile(t, q, "carol")

	for _, f := range []*models.Profile{bob, carol} {
		ok, err := Follow(ctx, q, f.ID, alice.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := Follow(ctx, q, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := CountFollowers(ctx, q, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	n, err = CountFollowing(ctx, q, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	followers, err := Followers(ctx, q, alice.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	names := []string{followers[0].Follower.Username, followers[1].Follower.Username}
	assert.ElementsMatch(t, []string{"bob", "carol"}, names)

	following, err := Following(ctx, q, carol.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "alice", following[0].Following.Username)

	yes, err := IsFollowing(ctx, q, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, yes)

	ok, err = Unfollow(ctx, q, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	yes, err = IsFollowing(ctx, q, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, yes)
}
