package logic

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"gameforum/dao/database"
	"gameforum/dao/storage"
	"gameforum/models"
	"gameforum/pkg/errorx"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

const (
	profileLatestLimit   = 5
	defaultMaxAvatarSize = 2 << 20
	maxBioLen            = 500
	maxDisplayNameLen    = 64
)

var avatarExtensions = []string{"jpg", "jpeg", "png", "gif", "webp"}

// GetUserProfile is the account view of uid. A user whose profile row is
// missing still renders, with empty content.
func (s *Service) GetUserProfile(ctx context.Context, uid models.UserID) (*models.ProfileView, error) {
	u, err := database.GetUserByID(ctx, s.DB, uid)
	if err != nil {
		return nil, storageErr("database.GetUserByID", err, nil, zap.Int64("user_id", int64(uid)))
	}
	if u == nil {
		return nil, errorx.ErrUserNotExist
	}
	prof, err := database.GetProfileByUserID(ctx, s.DB, uid)
	if errors.Is(err, database.ErrNotFound) {
		return &models.ProfileView{
			UserID:        u.ID,
			Username:      u.Username,
			DisplayName:   u.Username,
			Role:          u.Role,
			Joined:        u.CreatedAt,
			LatestThreads: []*models.LatestThread{},
			LatestPosts:   []*models.LatestPost{},
		}, nil
	}
	if err != nil {
		return nil, storageErr("database.GetProfileByUserID", err, nil, zap.Int64("user_id", int64(uid)))
	}

	v := newProfileView(prof)
	v.Joined = u.CreatedAt
	s.fillProfile(ctx, "user_profile", v, prof.ID)
	return v, nil
}

func newProfileView(p *models.Profile) *models.ProfileView {
	return &models.ProfileView{
		UserID:      p.UserID,
		ProfileID:   p.ID,
		Username:    p.Username,
		DisplayName: p.Name(),
		AvatarURL:   p.AvatarURL,
		Bio:         p.Bio,
		Role:        p.Role,
		Views:       p.Views,
		Joined:      p.CreatedAt,
	}
}

// fillProfile loads stats and latest content for v concurrently. Each
// failed lookup leaves its field at the zero value.
func (s *Service) fillProfile(ctx context.Context, page string, v *models.ProfileView, id models.ProfileID) {
	v.LatestThreads = []*models.LatestThread{}
	v.LatestPosts = []*models.LatestPost{}

	g := s.fanOut()
	count := func(field string, dst *int64, fn func() (int64, error)) {
		g.Go(func() error {
			n, err := fn()
			if err != nil {
				degraded(page, field, err)
				return nil
			}
			*dst = n
			return nil
		})
	}
	count("thread_count", &v.Stats.ThreadCount, func() (int64, error) {
		return database.CountThreadsByAuthor(ctx, s.DB, id)
	})
	count("post_count", &v.Stats.PostCount, func() (int64, error) {
		return database.CountPostsByAuthor(ctx, s.DB, id)
	})
	count("like_count", &v.Stats.LikeCount, func() (int64, error) {
		ids, err := database.PostIDsByAuthor(ctx, s.DB, id)
		if err != nil {
			return 0, err
		}
		return database.CountLikesReceived(ctx, s.DB, ids)
	})
	count("total_views", &v.Stats.TotalViews, func() (int64, error) {
		return database.SumThreadViewsByAuthor(ctx, s.DB, id)
	})
	count("follower_count", &v.Stats.FollowerCount, func() (int64, error) {
		return database.CountFollowers(ctx, s.DB, id)
	})
	count("following_count", &v.Stats.FollowingCount, func() (int64, error) {
		return database.CountFollowing(ctx, s.DB, id)
	})
	g.Go(func() error {
		list, err := s.GetUserLatestThreads(ctx, id, profileLatestLimit)
		if err != nil {
			degraded(page, "latest_threads", err)
			return nil
		}
		v.LatestThreads = list
		return nil
	})
	g.Go(func() error {
		list, err := s.GetUserLatestPosts(ctx, id, profileLatestLimit)
		if err != nil {
			degraded(page, "latest_posts", err)
			return nil
		}
		v.LatestPosts = list
		return nil
	})
	_ = g.Wait()
}

// GetUserLatestThreads lists the newest threads of a profile with their
// category, post count and like count.
func (s *Service) GetUserLatestThreads(ctx context.Context, id models.ProfileID, limit int) ([]*models.LatestThread, error) {
	rows, err := database.LatestThreadsByAuthor(ctx, s.DB, id, clamp(limit, profileLatestLimit, maxListLimit))
	if err != nil {
		return nil, storageErr("database.LatestThreadsByAuthor", err, nil, zap.Int64("profile_id", int64(id)))
	}
	ids := make([]models.ThreadID, 0, len(rows))
	for _, t := range rows {
		ids = append(ids, t.ID)
	}
	posts, err := database.PostCountsByThread(ctx, s.DB, ids)
	if err != nil {
		degraded("latest_threads", "post_count", err)
	}
	likes, err := database.LikeCountsByThread(ctx, s.DB, ids)
	if err != nil {
		degraded("latest_threads", "like_count", err)
	}

	out := make([]*models.LatestThread, 0, len(rows))
	for _, t := range rows {
		lt := &models.LatestThread{
			ID:        t.ID,
			Title:     t.Title,
			CreatedAt: t.CreatedAt,
			ViewCount: t.ViewCount,
			PostCount: posts[t.ID],
			LikeCount: likes[t.ID],
		}
		if t.Category != nil {
			lt.CategoryName = t.Category.Name
		}
		out = append(out, lt)
	}
	return out, nil
}

// GetUserLatestPosts lists the newest posts of a profile with the title
// and 1-based position inside their thread.
func (s *Service) GetUserLatestPosts(ctx context.Context, id models.ProfileID, limit int) ([]*models.LatestPost, error) {
	rows, err := database.LatestPostsByAuthor(ctx, s.DB, id, clamp(limit, profileLatestLimit, maxListLimit))
	if err != nil {
		return nil, storageErr("database.LatestPostsByAuthor", err, nil, zap.Int64("profile_id", int64(id)))
	}
	postIDs := make([]models.PostID, 0, len(rows))
	threadIDs := make([]models.ThreadID, 0, len(rows))
	for _, p := range rows {
		postIDs = append(postIDs, p.ID)
		if !slices.Contains(threadIDs, p.ThreadID) {
			threadIDs = append(threadIDs, p.ThreadID)
		}
	}
	positions, err := database.PostPositions(ctx, s.DB, threadIDs)
	if err != nil {
		degraded("latest_posts", "position", err)
	}
	likes, err := database.LikeCountsByPost(ctx, s.DB, postIDs)
	if err != nil {
		degraded("latest_posts", "like_count", err)
	}

	out := make([]*models.LatestPost, 0, len(rows))
	for _, p := range rows {
		lp := &models.LatestPost{
			ID:        p.ID,
			Content:   p.Content,
			CreatedAt: p.CreatedAt,
			ThreadID:  p.ThreadID,
			Position:  positions[p.ID],
			LikeCount: likes[p.ID],
		}
		if p.Thread != nil {
			lp.ThreadTitle = p.Thread.Title
		}
		out = append(out, lp)
	}
	return out, nil
}

func (s *Service) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	p, err := database.GetProfileByUsername(ctx, s.DB, strings.TrimSpace(username))
	if err != nil {
		return nil, storageErr("database.GetProfileByUsername", err, errorx.ErrUserNotExist, zap.String("username", username))
	}
	return p, nil
}

// GetProfilePage is the public profile. Visits by anyone but the owner
// count as views; what a visitor sees follows the owner's privacy flags.
func (s *Service) GetProfilePage(ctx context.Context, username string, viewer *models.SessionUser) (*models.ProfileView, error) {
	prof, err := s.GetProfileByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	prefs, err := database.GetUserSettings(ctx, s.DB, prof.UserID)
	if err != nil {
		return nil, storageErr("database.GetUserSettings", err, nil, zap.Int64("user_id", int64(prof.UserID)))
	}
	owner := viewer != nil && viewer.ID == prof.UserID
	if viewer == nil && !prefs.ShowProfileToGuest {
		return nil, errorx.ErrProfilePrivate
	}

	if !owner {
		if err = database.IncrementProfileViews(ctx, s.DB, prof.ID); err != nil {
			degraded("profile", "views", err)
		} else {
			prof.Views++
		}
	}

	v := newProfileView(prof)
	v.IsOwner = owner
	s.fillProfile(ctx, "profile", v, prof.ID)

	if owner {
		v.Settings = prefs
	} else {
		if !prefs.ShowLikes {
			v.Stats.LikeCount = 0
		}
		if !prefs.ShowFollowers {
			v.Stats.FollowerCount = 0
		}
		if !prefs.ShowFollowing {
			v.Stats.FollowingCount = 0
		}
	}
	if viewer != nil && !owner {
		following, err := database.IsFollowing(ctx, s.DB, viewer.ProfileID, prof.ID)
		if err != nil {
			degraded("profile", "is_following", err)
		}
		v.IsFollowing = following
	}
	return v, nil
}

// UpdateProfile changes display name and bio and, when avatar is set,
// replaces the avatar image.
func (s *Service) UpdateProfile(ctx context.Context, user *models.SessionUser, p *models.ParamUpdateProfile, avatar *models.AvatarUpload) (*models.Profile, error) {
	display := strings.TrimSpace(p.DisplayName)
	bio := strings.TrimSpace(p.Bio)
	if len([]rune(display)) > maxDisplayNameLen {
		return nil, errorx.ErrInvalidParam.WithMsg("display name must be at most %d characters", maxDisplayNameLen)
	}
	if len([]rune(bio)) > maxBioLen {
		return nil, errorx.ErrInvalidParam.WithMsg("bio must be at most %d characters", maxBioLen)
	}
	var ext string
	if avatar != nil {
		var err error
		if ext, err = s.checkAvatar(avatar); err != nil {
			return nil, err
		}
	}

	prof, err := s.profileOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	values := map[string]any{"display_name": display, "bio": bio}

	oldAvatar := prof.AvatarURL
	if avatar != nil {
		if s.Blobs == nil {
			return nil, errorx.ErrServerBusy.WithMsg("avatar uploads are not configured")
		}
		name := fmt.Sprintf("%s-%d.%s", prof.Username, s.now().UnixMilli(), ext)
		url, err := s.Blobs.Upload(ctx, s.avatarBucket(), name, avatar.Data)
		if err != nil {
			zap.L().Error("blobs.Upload failed", zap.String("name", name), zap.Error(err))
			return nil, errorx.ErrServerBusy
		}
		values["avatar_url"] = url
		prof.AvatarURL = url
	}

	if err = database.UpdateProfile(ctx, s.DB, prof.ID, values); err != nil {
		if avatar != nil {
			if rmErr := s.Blobs.RemoveURL(ctx, prof.AvatarURL); rmErr != nil {
				zap.L().Warn("remove unsaved avatar failed", zap.String("url", prof.AvatarURL), zap.Error(rmErr))
			}
		}
		return nil, storageErr("database.UpdateProfile", err, errorx.ErrUserNotExist, zap.Int64("profile_id", int64(prof.ID)))
	}
	prof.DisplayName, prof.Bio = display, bio

	if avatar != nil && oldAvatar != "" && oldAvatar != prof.AvatarURL {
		if err = s.Blobs.RemoveURL(ctx, oldAvatar); err != nil && !errors.Is(err, storage.ErrNotOwned) {
			zap.L().Warn("remove old avatar failed", zap.String("url", oldAvatar), zap.Error(err))
		}
	}
	return prof, nil
}

func (s *Service) avatarBucket() string {
	if s.Storage != nil && s.Storage.Bucket != "" {
		return s.Storage.Bucket
	}
	return "avatars"
}

// checkAvatar validates size, sniffed content type and file extension and
// returns the normalized extension.
func (s *Service) checkAvatar(a *models.AvatarUpload) (string, error) {
	limit := int64(defaultMaxAvatarSize)
	if s.Storage != nil && s.Storage.MaxAvatarSize > 0 {
		limit = s.Storage.MaxAvatarSize
	}
	if len(a.Data) == 0 {
		return "", errorx.ErrInvalidParam.WithMsg("avatar is empty")
	}
	if int64(len(a.Data)) > limit {
		return "", errorx.ErrInvalidParam.WithMsg("avatar must be at most %d bytes", limit)
	}
	mt := mimetype.Detect(a.Data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", errorx.ErrInvalidParam.WithMsg("avatar must be an image, got %s", mt.String())
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(a.Filename), "."))
	if !slices.Contains(avatarExtensions, ext) {
		return "", errorx.ErrInvalidParam.WithMsg("avatar extension must be one of %s", strings.Join(avatarExtensions, ", "))
	}
	return ext, nil
}

func (s *Service) GetPrivacySettings(ctx context.Context, user *models.SessionUser) (*models.UserSettings, error) {
	st, err := database.GetUserSettings(ctx, s.DB, user.ID)
	if err != nil {
		return nil, storageErr("database.GetUserSettings", err, nil, zap.Int64("user_id", int64(user.ID)))
	}
	return st, nil
}

func (s *Service) UpdatePrivacySettings(ctx context.Context, user *models.SessionUser, p *models.ParamPrivacySettings) (*models.UserSettings, error) {
	st := &models.UserSettings{
		UserID:             user.ID,
		ShowLikes:          p.ShowLikes,
		ShowFollowers:      p.ShowFollowers,
		ShowFollowing:      p.ShowFollowing,
		ShowOnlineStatus:   p.ShowOnlineStatus,
		ShowProfileToGuest: p.ShowProfileToGuest,
		AllowMessages:      p.AllowMessages,
	}
	if err := database.SaveUserSettings(ctx, s.DB, st); err != nil {
		return nil, storageErr("database.SaveUserSettings", err, nil, zap.Int64("user_id", int64(user.ID)))
	}
	return st, nil
}
