package database

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"gameforum/models"
	"gameforum/settings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var nextID atomic.Int64

func newID() int64 { return nextID.Add(1) }

// newTestDB opens a private in-memory sqlite database. One connection
// keeps every query on the same memory database.
func newTestDB(t *testing.T) (*gorm.DB, QueryClient) {
	t.Helper()
	db, err := Open(&settings.DatabaseConfig{
		Driver:       "sqlite",
		DbName:       ":memory:",
		MaxOpenConns: 1,
		LogLevel:     "silent",
		AutoMigrate:  true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })
	return db, NewClient(db)
}

func seedProfile(t *testing.T, q QueryClient, username string) *models.Profile {
	t.Helper()
	ctx := context.Background()
	u := &models.User{ID: models.UserID(newID()), Username: username, Email: username + "@x.com", Password: "hash", Role: models.RoleUser}
	require.NoError(t, InsertUser(ctx, q, u))
	p := &models.Profile{ID: models.ProfileID(newID()), UserID: u.ID, Username: username, Role: models.RoleUser}
	require.NoError(t, InsertProfile(ctx, q, p))
	return p
}

func seedCategory(t *testing.T, q QueryClient, name string) *models.Category {
	t.Helper()
	c := &models.Category{ID: models.CategoryID(newID()), Name: name}
	require.NoError(t, InsertCategory(context.Background(), q, c))
	return c
}

func seedThread(t *testing.T, q QueryClient, author *models.Profile, cat *models.Category, title string, at time.Time) *models.Thread {
	t.Helper()
	th := &models.Thread{
		ID:         models.ThreadID(newID()),
		Title:      title,
		Content:    title + " body",
		AuthorID:   author.ID,
		CategoryID: cat.ID,
		CreatedAt:  at,
		UpdatedAt:  at,
	}
	require.NoError(t, InsertThread(context.Background(), q, th))
	return th
}

func seedPost(t *testing.T, q QueryClient, author *models.Profile, th *models.Thread, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{
		ID:        models.PostID(newID()),
		Content:   "reply",
		AuthorID:  author.ID,
		ThreadID:  th.ID,
		CreatedAt: at,
		UpdatedAt: at,
	}
	require.NoError(t, InsertPost(context.Background(), q, p))
	return p
}

func TestWrapClassifiesErrors(t *testing.T) {
	err := wrap("op", gorm.ErrRecordNotFound)
	assert.True(t, errors.Is(err, ErrNotFound))

	err = wrap("op", gorm.ErrDuplicatedKey)
	assert.True(t, IsConstraint(err))
	assert.False(t, errors.Is(err, ErrNotFound))

	err = wrap("outer", wrap("inner", gorm.ErrRecordNotFound))
	var de *DataError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "outer", de.Op)
	assert.Equal(t, KindNotFound, de.Kind)

	assert.Nil(t, wrap("op", nil))
}

func TestDuplicateEmailIsConstraint(t *testing.T) {
	_, q := newTestDB(t)
	ctx := context.Background()
	seedProfile(t, q, "alice")

	err := InsertUser(ctx, q, &models.User{ID: models.UserID(newID()), Username: "other", Email: "alice@x.com", Password: "x", Role: models.RoleUser})
	assert.True(t, IsConstraint(err))
}

func TestContainsEscapesWildcards(t *testing.T) {
	_, q := newTestDB(t)
	ctx := context.Background()
	seedProfile(t, q, "a_b")
	seedProfile(t, q, "axb")

	got, err := SearchProfiles(ctx, q, "a_b", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a_b", got[0].Username)

	got, err = SearchProfiles(ctx, q, "AX", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "axb", got[0].Username)
}

func TestTransactionRollsBack(t *testing.T) {
	_, q := newTestDB(t)
	ctx := context.Background()

	err := q.Transaction(ctx, func(tx QueryClient) error {
		require.NoError(t, InsertCategory(ctx, tx, &models.Category{ID: models.CategoryID(newID()), Name: "Temp"}))
		return errors.New("abort")
	})
	require.Error(t, err)

	got, err := GetCategoryByName(ctx, q, "Temp")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserSettingsDefaultsAndUpsert(t *testing.T) {
	_, q := newTestDB(t)
	ctx := context.Background()
	p := seedProfile(t, q, "alice")

	s, err := GetUserSettings(ctx, q, p.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultUserSettings(p.UserID), s)

	s.ShowLikes = false
	require.NoError(t, SaveUserSettings(ctx, q, s))
	s.ShowFollowers = false
	require.NoError(t, SaveUserSettings(ctx, q, s))

	got, err := GetUserSettings(ctx, q, p.UserID)
	require.NoError(t, err)
	assert.False(t, got.ShowLikes)
	assert.False(t, got.ShowFollowers)
	assert.True(t, got.ShowFollowing)
}

func TestProfileLookups(t *testing.T) {
	_, q := newTestDB(t)
	ctx := context.Background()
	p := seedProfile(t, q, "Alice")

	got, err := GetProfileByUsername(ctx, q, "alice")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = GetProfileByUsername(ctx, q, "nobody")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, IncrementProfileViews(ctx, q, p.ID))
	require.NoError(t, IncrementProfileViews(ctx, q, p.ID))
	got, err = GetProfileByID(ctx, q, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.Views)

	err = UpdateProfile(ctx, q, models.ProfileID(newID()), map[string]any{"bio": "x"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

// changedRowsClient reports affected rows the way MySQL does without
// CLIENT_FOUND_ROWS: a write that changes nothing affects nothing.
type changedRowsClient struct {
	QueryClient
}

func (c changedRowsClient) Update(ctx context.Context, model any, q Query, values map[string]any) (int64, error) {
	_, err := c.QueryClient.Update(ctx, model, q, values)
	return 0, err
}

func TestUpdateProfileWithUnchangedValues(t *testing.T) {
	_, q := newTestDB(t)
	ctx := context.Background()
	p := seedProfile(t, q, "alice")
	mysqlLike := changedRowsClient{q}

	values := map[string]any{"display_name": "Alice", "bio": "hi"}
	require.NoError(t, UpdateProfile(ctx, q, p.ID, values))
	require.NoError(t, UpdateProfile(ctx, mysqlLike, p.ID, values))

	got, err := GetProfileByID(ctx, q, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.DisplayName)

	err = UpdateProfile(ctx, mysqlLike, models.ProfileID(newID()), values)
	assert.True(t, errors.Is(err, ErrNotFound))
}
