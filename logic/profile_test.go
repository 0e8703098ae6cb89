package logic

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"gameforum/models"
	"gameforum/pkg/errorx"
	"gameforum/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestGetProfilePage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	c := f.category(t, "General")
	first := f.thread(t, alice, c, "first")
	second := f.thread(t, alice, c, "second")
	p1 := f.post(t, bob, first.ID, "one")
	f.post(t, alice, first.ID, "two")
	mine := f.post(t, alice, second.ID, "three")
	_, err := f.svc.LikePost(ctx, bob, mine.ID)
	require.NoError(t, err)
	_, err = f.svc.LikePost(ctx, alice, p1.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.FollowUser(ctx, bob, alice.ID))
	_, err = f.svc.GetThreadDetail(ctx, first.ID, nil)
	require.NoError(t, err)

	page, err := f.svc.GetProfilePage(ctx, "ALICE", bob)
	require.NoError(t, err)
	assert.False(t, page.IsOwner)
	assert.True(t, page.IsFollowing)
	assert.Nil(t, page.Settings)
	assert.Equal(t, int64(1), page.Views)
	assert.Equal(t, models.ProfileStats{
		ThreadCount:   2,
		PostCount:     2,
		LikeCount:     1,
		TotalViews:    1,
		FollowerCount: 1,
	}, page.Stats)

	require.Len(t, page.LatestThreads, 2)
	assert.Equal(t, second.ID, page.LatestThreads[0].ID)
	assert.Equal(t, "General", page.LatestThreads[0].CategoryName)
	assert.Equal(t, int64(2), page.LatestThreads[1].PostCount)

	require.Len(t, page.LatestPosts, 2)
	assert.Equal(t, mine.ID, page.LatestPosts[0].ID)
	assert.Equal(t, "second", page.LatestPosts[0].ThreadTitle)
	assert.Equal(t, 1, page.LatestPosts[0].Position)
	assert.Equal(t, int64(1), page.LatestPosts[0].LikeCount)
	assert.Equal(t, 2, page.LatestPosts[1].Position)

	own, err := f.svc.GetProfilePage(ctx, "alice", alice)
	require.NoError(t, err)
	assert.True(t, own.IsOwner)
	assert.NotNil(t, own.Settings)
	assert.Equal(t, int64(1), own.Views, "owner visits are not counted")

	_, err = f.svc.GetProfilePage(ctx, "nobody", nil)
	assert.ErrorIs(t, err, errorx.ErrUserNotExist)
}

func TestGetProfilePagePrivacy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	require.NoError(t, f.svc.FollowUser(ctx, bob, alice.ID))

	_, err := f.svc.UpdatePrivacySettings(ctx, alice, &models.ParamPrivacySettings{ShowFollowing: true})
	require.NoError(t, err)

	_, err = f.svc.GetProfilePage(ctx, "alice", nil)
	assert.ErrorIs(t, err, errorx.ErrProfilePrivate)

	page, err := f.svc.GetProfilePage(ctx, "alice", bob)
	require.NoError(t, err)
	assert.Zero(t, page.Stats.FollowerCount)

	st, err := f.svc.GetPrivacySettings(ctx, alice)
	require.NoError(t, err)
	assert.False(t, st.ShowFollowers)
	assert.True(t, st.ShowFollowing)

	st, err = f.svc.GetPrivacySettings(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultUserSettings(bob.ID).ShowProfileToGuest, st.ShowProfileToGuest)
}

func TestGetUserProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	f.thread(t, alice, f.category(t, "General"), "t")

	v, err := f.svc.GetUserProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Stats.ThreadCount)
	assert.Len(t, v.LatestThreads, 1)

	require.NoError(t, f.gdb.Where("user_id = ?", alice.ID).Delete(&models.Profile{}).Error)
	v, err = f.svc.GetUserProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", v.DisplayName)
	assert.Empty(t, v.Bio)
	assert.Empty(t, v.LatestThreads)

	_, err = f.svc.GetUserProfile(ctx, models.UserID(2))
	assert.ErrorIs(t, err, errorx.ErrUserNotExist)
}

func TestUpdateProfileAvatar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	prof, err := f.svc.UpdateProfile(ctx, alice, &models.ParamUpdateProfile{DisplayName: " Alice ", Bio: "hi"},
		&models.AvatarUpload{Filename: "me.PNG", Data: pngHeader})
	require.NoError(t, err)
	assert.Equal(t, "Alice", prof.DisplayName)
	assert.True(t, strings.HasPrefix(prof.AvatarURL, "/storage/avatars/alice-"), prof.AvatarURL)
	assert.True(t, strings.HasSuffix(prof.AvatarURL, ".png"), prof.AvatarURL)
	first := prof.AvatarURL

	ok, err := afero.Exists(f.fs, strings.TrimPrefix(first, "/storage"))
	require.NoError(t, err)
	assert.True(t, ok)

	prof, err = f.svc.UpdateProfile(ctx, alice, &models.ParamUpdateProfile{}, &models.AvatarUpload{Filename: "me.gif", Data: []byte("GIF89a\x01\x00\x01\x00")})
	require.NoError(t, err)
	assert.NotEqual(t, first, prof.AvatarURL)
	ok, err = afero.Exists(f.fs, strings.TrimPrefix(first, "/storage"))
	require.NoError(t, err)
	assert.False(t, ok, "the replaced avatar is removed")

	stored, err := f.svc.GetProfileByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, prof.AvatarURL, stored.AvatarURL)
}

func TestUpdateProfileRejectsBadAvatars(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	before, err := f.svc.GetProfileByUsername(ctx, "alice")
	require.NoError(t, err)

	cases := map[string]*models.AvatarUpload{
		"not an image":  {Filename: "me.png", Data: []byte("hello, world")},
		"bad extension": {Filename: "me.bmp", Data: pngHeader},
		"too large":     {Filename: "me.png", Data: append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 2<<20)...)},
		"empty":         {Filename: "me.png"},
	}
	for name, a := range cases {
		_, err := f.svc.UpdateProfile(ctx, alice, &models.ParamUpdateProfile{Bio: "changed"}, a)
		assert.ErrorIs(t, err, errorx.ErrInvalidParam, name)
	}

	after, err := f.svc.GetProfileByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, before.AvatarURL, after.AvatarURL)
	assert.Empty(t, after.Bio)

	_, err = f.svc.UpdateProfile(ctx, alice, &models.ParamUpdateProfile{Bio: strings.Repeat("x", 501)}, nil)
	assert.ErrorIs(t, err, errorx.ErrInvalidParam)
}

func TestUpdateProfileWithUnchangedValues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	p := &models.ParamUpdateProfile{DisplayName: "Alice", Bio: "hi"}
	_, err := f.svc.UpdateProfile(ctx, alice, p, nil)
	require.NoError(t, err)
	prof, err := f.svc.UpdateProfile(ctx, alice, p, nil)
	require.NoError(t, err)
	assert.Equal(t, "Alice", prof.DisplayName)
	assert.Equal(t, "hi", prof.Bio)
}

func TestUpdateProfileFailureDropsNewAvatar(t *testing.T) {
	fc := &faultyClient{fails: map[string]bool{"update profiles": true}}
	f := newFixture(t, withFaults(fc))
	ctx := context.Background()
	alice := f.register(t, "alice")

	fc.armed.Store(true)
	_, err := f.svc.UpdateProfile(ctx, alice, &models.ParamUpdateProfile{Bio: "hi"},
		&models.AvatarUpload{Filename: "me.png", Data: pngHeader})
	assert.ErrorIs(t, err, errorx.ErrServerBusy)

	entries, _ := afero.ReadDir(f.fs, "/avatars")
	assert.Empty(t, entries, "the upload is removed when the row is not saved")

	fc.armed.Store(false)
	stored, err := f.svc.GetProfileByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, stored.Bio)
}

func TestUserProfileDegradesFailedStats(t *testing.T) {
	fc := &faultyClient{fails: map[string]bool{"count follows": true}}
	f := newFixture(t, withFaults(fc))
	ctx := context.Background()
	alice := f.register(t, "alice")
	f.thread(t, alice, f.category(t, "General"), "t")

	followers := metrics.DegradedFields.WithLabelValues("user_profile", "follower_count")
	following := metrics.DegradedFields.WithLabelValues("user_profile", "following_count")
	before := testutil.ToFloat64(followers) + testutil.ToFloat64(following)

	fc.armed.Store(true)
	v, err := f.svc.GetUserProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v.Stats.ThreadCount)
	assert.Zero(t, v.Stats.FollowerCount)
	assert.Len(t, v.LatestThreads, 1)
	assert.Equal(t, before+2, testutil.ToFloat64(followers)+testutil.ToFloat64(following))
}
