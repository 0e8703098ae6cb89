package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"gameforum/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threadTitles(threads []*models.Thread) []string {
	out := make([]string, 0, len(threads))
	for _, t := range threads {
		out = append(out, t.Title)
	}
	return out
}

func TestListThreadsSorts(t *testing.T) {
	_, q := newTestDB(t)
	ctx := context.Background()
	alice := seedProfile(t, q, "alice")
	bob := seedProfile(t, q, "bob")
	general := seedCategory(t, q, "General")
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	a := seedThread(t, q, alice, general, "A", base)
	b := seedThread(t, q, bob, general, "B", base.Add(time.Hour))
	c := seedThread(t, q, alice, general, "C", base.Add(2*time.Hour))
	seedPost(t, q, bob, a, base.Add(3*time.Hour))
	seedPost(t, q, bob, a, base.Add(4*time.Hour))
	seedPost(t, q, alice, b, base.Add(5*time.Hour))
	require.NoError(t, IncrementThreadViews(ctx, q, b.ID))
	_ = c

	cases := []struct {
		sort string
		want []string
	}{
		{models.SortNewest, []string{"C", "B", "A"}},
		{models.SortOldest, []string{"A", "B", "C"}},
		{models.SortPopular, []string{"B", "C", "A"}},
		{models.SortMostReplies, []string{"A", "B", "C"}},
		{models.SortTitle, []string{"A", "B", "C"}},
	}
	for _, tc := range cases {
		t.Run(tc.sort, func(t *testing.T) {
			got, err := ListThreads(ctx, q, ThreadFilter{Sort: tc.sort})
			require.NoError(t, err)
			assert.Equal(t, tc.want, threadTitles(got))
		})
	}
}

func TestListThreadsFilters(t *testing.T) {
	_, q := newTestDB(t)
	ctx := context.Background()
	alice := seedProfile(t, q, "alice")
	bob := seedProfile(t, q, "bob")
	general := seedCategory(t, q, "General")
	reviews := seedCategory(t, q, "Reviews")
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	seedThread(t, q, alice, general, "Elden Ring tips", base)
	pinned := seedThread(t, q, bob, general, "Rules", base.Add(time.Hour))
	seedThread(t, q, bob, reviews, "Elden Ring review", base.Add(2*time.Hour))
	ok, err := SetThreadFlag(ctx, q, pinned.ID, "is_pinned", false, true)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := ListThreads(ctx, q, ThreadFilter{CategoryID: general.ID, PinnedFirst: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Rules", "Elden Ring tips"}, threadTitles(got))
	require.NotNil(t, got[0].Author)
	assert.Equal(t, "bob", got[0].Author.Username)
	require.NotNil(t, got[0].Category)
	assert.Equal(t, "General", got[0].Category.Name)

	got, err = ListThreads(ctx, q, ThreadFilter{Search: "elden"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Elden Ring review", "Elden Ring tips"}, threadTitles(got))

	got, err = ListThreads(ctx, q, ThreadFilter{FilterAuthors: true, AuthorIDs: []models.ProfileID{alice.ID}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Elden Ring tips"}, threadTitles(got))

	got, err = ListThreads(ctx, q, ThreadFilter{FilterAuthors: true})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ListThreads(ctx, q, ThreadFilter{Status: models.StatusPinned})
	require.NoError(t, err)
	assert.Equal(t, []string{"Rules"}, threadTitles(got))

	got, err = ListThreads(ctx, q, ThreadFilter{Status: models.StatusNormal, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Elden Ring tips"}, threadTitles(got))

	n, err := CountThreads(ctx, q, ThreadFilter{Status: models.StatusNormal, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestSetThreadFlagCompareAndSet(t *testing.T) {
	_, q := newTestDB(t)
	ctx := context.Background()
	alice := seedProfile(t, q, "alice")
	th := seedThread(t, q, alice, seedCategory(t, q, "General"), "T", time.Now().UTC())

	ok, err := SetThreadFlag(ctx, q, th.ID, "is_locked", false, true)
	require.NoError(t, err)
	assert.True(t, ok)

	// A second writer that saw the old value loses.
	ok, err = SetThreadFlag(ctx, q, th.ID, "is_locked", false, true)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := GetThread(ctx, q, th.ID)
	require.NoError(t, err)
	assert.True(t, got.IsLocked)
	assert.False(t, got.IsPinned)
}

func TestDeleteThreadCascades(t *testing.T) {
	_, q := newTestDB(t)
	ctx := context.Background()
	alice := seedProfile(t, q, "alice")
	bob := seedProfile(t, q, "bob")
	cat := seedCategory(t, q, "General")
	now := time.Now().UTC()
	th := seedThread(t, q, alice, cat, "T", now)
	other := seedThread(t, q, alice, cat, "Other", now)
	p := seedPost(t, q, bob, th, now)
	kept := seedPost(t, q, bob, other, now)
	_, err := LikePost(ctx, q, alice.ID, p.ID)
	require.NoError(t, err)
	_, err = LikePost(ctx, q, alice.ID, kept.ID)
	require.NoError(t, err)
	_, err = LikeThread(ctx, q, bob.ID, th.ID)
	require.NoError(t, err)

	require.NoError(t, q.Transaction(ctx, func(tx QueryClient) error {
		return DeleteThread(ctx, tx, th.ID)
	}))

	_, err = GetThread(ctx, q, th.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = GetPost(ctx, q, p.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	n, err := CountPostLikes(ctx, q, kept.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = CountThreadLikes(ctx, q, th.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	err = DeleteThread(ctx, q, th.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPostPositionsAndCounts(t *testing.T) {
	_, q := newTestDB(t)
	ctx := context.Background()
	alice := seedProfile(t, q, "alice")
	cat := seedCategory(t, q, "General")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := seedThread(t, q, alice, cat, "One", base)
	t2 := seedThread(t, q, alice, cat, "Two", base)
	p1 := seedPost(t, q, alice, t1, base.Add(time.Minute))
	p2 := seedPost(t, q, alice, t1, base.Add(2*time.Minute))
	p3 := seedPost(t, q, alice, t2, base.Add(3*time.Minute))

	pos, err := PostPositions(ctx, q, []models.ThreadID{t1.ID, t2.ID})
	require.NoError(t, err)
	assert.Equal(t, map[models.PostID]int{p1.ID: 1, p2.ID: 2, p3.ID: 1}, pos)

	counts, err := PostCountsByThread(ctx, q, []models.ThreadID{t1.ID, t2.ID, models.ThreadID(newID())})
	require.NoError(t, err)
	assert.Equal(t, map[models.ThreadID]int64{t1.ID: 2, t2.ID: 1}, counts)

	latest, err := LatestPostsByAuthor(ctx, q, alice.ID, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, p3.ID, latest[0].ID)
	require.NotNil(t, latest[0].Thread)
	assert.Equal(t, "Two", latest[0].Thread.Title)

	views, err := SumThreadViewsByAuthor(ctx, q, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, views)
}
