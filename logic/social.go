package logic

import (
	"context"

	"gameforum/dao/database"
	"gameforum/models"
	"gameforum/pkg/errorx"

	"go.uber.org/zap"
)

// Likes and follows. Every toggle is idempotent: liking twice leaves one
// like, unliking something never liked is a no-op.

func (s *Service) LikeThread(ctx context.Context, user *models.SessionUser, id models.ThreadID) (*models.LikeState, error) {
	return s.setThreadLike(ctx, user, id, true)
}

func (s *Service) UnlikeThread(ctx context.Context, user *models.SessionUser, id models.ThreadID) (*models.LikeState, error) {
	return s.setThreadLike(ctx, user, id, false)
}

func (s *Service) setThreadLike(ctx context.Context, user *models.SessionUser, id models.ThreadID, like bool) (*models.LikeState, error) {
	if _, err := s.threadOrNotFound(ctx, id); err != nil {
		return nil, err
	}
	me, err := s.profileOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	var changed bool
	delta := 1
	if like {
		changed, err = database.LikeThread(ctx, s.DB, me.ID, id)
	} else {
		changed, err = database.UnlikeThread(ctx, s.DB, me.ID, id)
		delta = -1
	}
	if err != nil {
		return nil, storageErr("database.SetThreadLike", err, nil, zap.Int64("thread_id", int64(id)))
	}
	if changed {
		if err = s.Redis.BumpThread(ctx, id, delta); err != nil {
			zap.L().Error("redis.BumpThread failed", zap.Int64("thread_id", int64(id)), zap.Error(err))
		}
	}

	count, err := database.CountThreadLikes(ctx, s.DB, id)
	if err != nil {
		return nil, storageErr("database.CountThreadLikes", err, nil, zap.Int64("thread_id", int64(id)))
	}
	return &models.LikeState{Liked: like, Count: count}, nil
}

// CheckUserThreadLike reports whether user likes the thread.
func (s *Service) CheckUserThreadLike(ctx context.Context, user *models.SessionUser, id models.ThreadID) (bool, error) {
	me, err := s.profileOf(ctx, user.ID)
	if err != nil {
		return false, err
	}
	ok, err := database.ThreadLiked(ctx, s.DB, me.ID, id)
	if err != nil {
		return false, storageErr("database.ThreadLiked", err, nil, zap.Int64("thread_id", int64(id)))
	}
	return ok, nil
}

func (s *Service) GetThreadLikeCount(ctx context.Context, id models.ThreadID) (int64, error) {
	n, err := database.CountThreadLikes(ctx, s.DB, id)
	if err != nil {
		return 0, storageErr("database.CountThreadLikes", err, nil, zap.Int64("thread_id", int64(id)))
	}
	return n, nil
}

func (s *Service) LikePost(ctx context.Context, user *models.SessionUser, id models.PostID) (*models.LikeState, error) {
	return s.setPostLike(ctx, user, id, true)
}

func (s *Service) UnlikePost(ctx context.Context, user *models.SessionUser, id models.PostID) (*models.LikeState, error) {
	return s.setPostLike(ctx, user, id, false)
}

// TogglePostLike flips the viewer's like on a post.
func (s *Service) TogglePostLike(ctx context.Context, user *models.SessionUser, id models.PostID) (*models.LikeState, error) {
	me, err := s.profileOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	liked, err := database.PostLiked(ctx, s.DB, me.ID, id)
	if err != nil {
		return nil, storageErr("database.PostLiked", err, nil, zap.Int64("post_id", int64(id)))
	}
	return s.setPostLike(ctx, user, id, !liked)
}

func (s *Service) setPostLike(ctx context.Context, user *models.SessionUser, id models.PostID, like bool) (*models.LikeState, error) {
	if _, err := database.GetPost(ctx, s.DB, id); err != nil {
		return nil, storageErr("database.GetPost", err, errorx.ErrNotFound.WithMsg("post not found"), zap.Int64("post_id", int64(id)))
	}
	me, err := s.profileOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if like {
		_, err = database.LikePost(ctx, s.DB, me.ID, id)
	} else {
		_, err = database.UnlikePost(ctx, s.DB, me.ID, id)
	}
	if err != nil {
		return nil, storageErr("database.SetPostLike", err, nil, zap.Int64("post_id", int64(id)))
	}
	count, err := database.CountPostLikes(ctx, s.DB, id)
	if err != nil {
		return nil, storageErr("database.CountPostLikes", err, nil, zap.Int64("post_id", int64(id)))
	}
	return &models.LikeState{Liked: like, Count: count}, nil
}

// followPair resolves the profiles behind a follow between two users.
func (s *Service) followPair(ctx context.Context, follower, following models.UserID) (*models.Profile, *models.Profile, error) {
	if follower == following {
		return nil, nil, errorx.ErrSelfFollow
	}
	from, err := s.profileOf(ctx, follower)
	if err != nil {
		return nil, nil, err
	}
	to, err := s.profileOf(ctx, following)
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func (s *Service) FollowUser(ctx context.Context, user *models.SessionUser, target models.UserID) error {
	from, to, err := s.followPair(ctx, user.ID, target)
	if err != nil {
		return err
	}
	if _, err = database.Follow(ctx, s.DB, from.ID, to.ID); err != nil {
		return storageErr("database.Follow", err, nil, zap.Int64("target", int64(target)))
	}
	return nil
}

func (s *Service) UnfollowUser(ctx context.Context, user *models.SessionUser, target models.UserID) error {
	from, to, err := s.followPair(ctx, user.ID, target)
	if err != nil {
		return err
	}
	if _, err = database.Unfollow(ctx, s.DB, from.ID, to.ID); err != nil {
		return storageErr("database.Unfollow", err, nil, zap.Int64("target", int64(target)))
	}
	return nil
}

// CheckFollowStatus reports whether user follows target. Asking about
// oneself is simply false.
func (s *Service) CheckFollowStatus(ctx context.Context, user *models.SessionUser, target models.UserID) (bool, error) {
	if user.ID == target {
		return false, nil
	}
	from, to, err := s.followPair(ctx, user.ID, target)
	if err != nil {
		return false, err
	}
	ok, err := database.IsFollowing(ctx, s.DB, from.ID, to.ID)
	if err != nil {
		return false, storageErr("database.IsFollowing", err, nil, zap.Int64("target", int64(target)))
	}
	return ok, nil
}

func (s *Service) GetFollowCounts(ctx context.Context, target models.UserID) (*models.FollowCounts, error) {
	p, err := s.profileOf(ctx, target)
	if err != nil {
		return nil, err
	}
	followers, err := database.CountFollowers(ctx, s.DB, p.ID)
	if err != nil {
		return nil, storageErr("database.CountFollowers", err, nil, zap.Int64("target", int64(target)))
	}
	following, err := database.CountFollowing(ctx, s.DB, p.ID)
	if err != nil {
		return nil, storageErr("database.CountFollowing", err, nil, zap.Int64("target", int64(target)))
	}
	return &models.FollowCounts{Followers: followers, Following: following}, nil
}

// GetFollowersList lists who follows target, honoring its privacy
// settings for everyone but the owner.
func (s *Service) GetFollowersList(ctx context.Context, target models.UserID, viewer *models.SessionUser) ([]*models.FollowEntry, error) {
	p, err := s.visibleFollowProfile(ctx, target, viewer, func(st *models.UserSettings) bool { return st.ShowFollowers })
	if err != nil {
		return nil, err
	}
	rows, err := database.Followers(ctx, s.DB, p.ID)
	if err != nil {
		return nil, storageErr("database.Followers", err, nil, zap.Int64("target", int64(target)))
	}
	out := make([]*models.FollowEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, followEntry(r.FollowerID, r.Follower))
	}
	return out, nil
}

func (s *Service) GetFollowingList(ctx context.Context, target models.UserID, viewer *models.SessionUser) ([]*models.FollowEntry, error) {
	p, err := s.visibleFollowProfile(ctx, target, viewer, func(st *models.UserSettings) bool { return st.ShowFollowing })
	if err != nil {
		return nil, err
	}
	rows, err := database.Following(ctx, s.DB, p.ID)
	if err != nil {
		return nil, storageErr("database.Following", err, nil, zap.Int64("target", int64(target)))
	}
	out := make([]*models.FollowEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, followEntry(r.FollowingID, r.Following))
	}
	return out, nil
}

func (s *Service) visibleFollowProfile(ctx context.Context, target models.UserID, viewer *models.SessionUser,
	allowed func(*models.UserSettings) bool) (*models.Profile, error) {
	p, err := s.profileOf(ctx, target)
	if err != nil {
		return nil, err
	}
	if viewer != nil && viewer.ID == target {
		return p, nil
	}
	st, err := database.GetUserSettings(ctx, s.DB, target)
	if err != nil {
		return nil, storageErr("database.GetUserSettings", err, nil, zap.Int64("target", int64(target)))
	}
	if !allowed(st) || (viewer == nil && !st.ShowProfileToGuest) {
		return nil, errorx.ErrProfilePrivate
	}
	return p, nil
}

func followEntry(id models.ProfileID, p *models.Profile) *models.FollowEntry {
	if p == nil {
		return &models.FollowEntry{ProfileID: id, Username: models.DeletedAuthorName, DisplayName: models.DeletedAuthorName}
	}
	return &models.FollowEntry{
		ID:          p.UserID,
		ProfileID:   p.ID,
		Username:    p.Username,
		DisplayName: p.Name(),
		AvatarURL:   p.AvatarURL,
	}
}
