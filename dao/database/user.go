package database

import (
	"context"
	"errors"

	"gameforum/models"
)

// Account and profile queries. Lookups that may legitimately miss return
// nil without an error; lookups the caller depends on return a NotFound
// DataError.

func InsertUser(ctx context.Context, q QueryClient, u *models.User) error {
	return wrap("InsertUser", q.Insert(ctx, u))
}

func InsertProfile(ctx context.Context, q QueryClient, p *models.Profile) error {
	return wrap("InsertProfile", q.Insert(ctx, p))
}

func EmailTaken(ctx context.Context, q QueryClient, email string) (bool, error) {
	n, err := q.Count(ctx, &models.User{}, Where(Eq("LOWER(email)", lower(email))))
	return n > 0, wrap("EmailTaken", err)
}

func UsernameTaken(ctx context.Context, q QueryClient, username string) (bool, error) {
	n, err := q.Count(ctx, &models.User{}, Where(Eq("LOWER(username)", lower(username))))
	return n > 0, wrap("UsernameTaken", err)
}

func GetUserByEmail(ctx context.Context, q QueryClient, email string) (*models.User, error) {
	u := new(models.User)
	err := q.First(ctx, u, Where(Eq("LOWER(email)", lower(email))))
	return optional(u, wrap("GetUserByEmail", err))
}

func GetUserByID(ctx context.Context, q QueryClient, uid models.UserID) (*models.User, error) {
	u := new(models.User)
	err := q.First(ctx, u, Where(Eq("id", uid)))
	return optional(u, wrap("GetUserByID", err))
}

func GetUsersByIDs(ctx context.Context, q QueryClient, ids []models.UserID) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	users := make([]*models.User, 0, len(ids))
	err := q.Select(ctx, &users, Where(In("id", ids)))
	return users, wrap("GetUsersByIDs", err)
}

func LatestUsers(ctx context.Context, q QueryClient, limit int) ([]*models.User, error) {
	users := make([]*models.User, 0, limit)
	err := q.Select(ctx, &users, Query{}.OrderBy("created_at DESC", "id DESC").Take(limit))
	return users, wrap("LatestUsers", err)
}

// ProfileIDByUserID resolves the profile id content tables reference.
func ProfileIDByUserID(ctx context.Context, q QueryClient, uid models.UserID) (models.ProfileID, error) {
	p, err := GetProfileByUserID(ctx, q, uid)
	if err != nil {
		return 0, wrap("ProfileIDByUserID", err)
	}
	return p.ID, nil
}

func GetProfileByUserID(ctx context.Context, q QueryClient, uid models.UserID) (*models.Profile, error) {
	p := new(models.Profile)
	if err := q.First(ctx, p, Where(Eq("user_id", uid))); err != nil {
		return nil, wrap("GetProfileByUserID", err)
	}
	return p, nil
}

func GetProfileByID(ctx context.Context, q QueryClient, id models.ProfileID) (*models.Profile, error) {
	p := new(models.Profile)
	if err := q.First(ctx, p, Where(Eq("id", id))); err != nil {
		return nil, wrap("GetProfileByID", err)
	}
	return p, nil
}

func GetProfileByUsername(ctx context.Context, q QueryClient, username string) (*models.Profile, error) {
	p := new(models.Profile)
	if err := q.First(ctx, p, Where(Eq("LOWER(username)", lower(username)))); err != nil {
		return nil, wrap("GetProfileByUsername", err)
	}
	return p, nil
}

func GetProfilesByIDs(ctx context.Context, q QueryClient, ids []models.ProfileID) ([]*models.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	profiles := make([]*models.Profile, 0, len(ids))
	err := q.Select(ctx, &profiles, Where(In("id", ids)))
	return profiles, wrap("GetProfilesByIDs", err)
}

// SearchProfiles matches username or display name, best matches first.
func SearchProfiles(ctx context.Context, q QueryClient, term string, limit int) ([]*models.Profile, error) {
	profiles := make([]*models.Profile, 0, limit)
	err := q.Select(ctx, &profiles,
		Where(Or(Contains("username", term), Contains("display_name", term))).
			OrderBy("username ASC").
			Take(limit))
	return profiles, wrap("SearchProfiles", err)
}

// ProfileIDsMatching returns the ids of every profile whose username or
// display name contains term.
func ProfileIDsMatching(ctx context.Context, q QueryClient, term string) ([]models.ProfileID, error) {
	var ids []models.ProfileID
	err := q.Pluck(ctx, &models.Profile{}, "id",
		Where(Or(Contains("username", term), Contains("display_name", term))), &ids)
	return ids, wrap("ProfileIDsMatching", err)
}

// UpdateProfile writes values to the profile row. MySQL reports changed
// rather than matched rows, so a write of identical values affects none
// and existence is checked separately.
func UpdateProfile(ctx context.Context, q QueryClient, id models.ProfileID, values map[string]any) error {
	n, err := q.Update(ctx, &models.Profile{}, Where(Eq("id", id)), values)
	if err != nil {
		return wrap("UpdateProfile", err)
	}
	if n > 0 {
		return nil
	}
	found, err := q.Count(ctx, &models.Profile{}, Where(Eq("id", id)))
	if err != nil {
		return wrap("UpdateProfile", err)
	}
	if found == 0 {
		return &DataError{Op: "UpdateProfile", Kind: KindNotFound, Err: ErrNotFound}
	}
	return nil
}

func IncrementProfileViews(ctx context.Context, q QueryClient, id models.ProfileID) error {
	return wrap("IncrementProfileViews", q.Increment(ctx, &models.Profile{}, Where(Eq("id", id)), "views", 1))
}

// GetUserSettings returns the stored privacy flags or the all-true
// defaults when the user never saved any.
func GetUserSettings(ctx context.Context, q QueryClient, uid models.UserID) (*models.UserSettings, error) {
	s := new(models.UserSettings)
	err := q.First(ctx, s, Where(Eq("user_id", uid)))
	if errors.Is(err, ErrNotFound) {
		return models.DefaultUserSettings(uid), nil
	}
	if err != nil {
		return nil, wrap("GetUserSettings", err)
	}
	return s, nil
}

func SaveUserSettings(ctx context.Context, q QueryClient, s *models.UserSettings) error {
	err := q.Upsert(ctx, s, []string{"user_id"}, []string{
		"show_likes", "show_followers", "show_following",
		"show_online_status", "show_profile_to_guests", "allow_messages", "updated_at",
	})
	return wrap("SaveUserSettings", err)
}

// optional turns a NotFound error into (nil, nil).
func optional[T any](v *T, err error) (*T, error) {
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
