package database

import (
	"context"

	"gameforum/models"
)

// Likes and follows are written with InsertIgnore against their unique
// indexes, so repeating an action never fails and never duplicates.

func LikePost(ctx context.Context, q QueryClient, user models.ProfileID, post models.PostID) (bool, error) {
	ok, err := q.InsertIgnore(ctx, &models.Like{UserID: user, PostID: post})
	return ok, wrap("LikePost", err)
}

func UnlikePost(ctx context.Context, q QueryClient, user models.ProfileID, post models.PostID) (bool, error) {
	n, err := q.Delete(ctx, &models.Like{}, Where(Eq("user_id", user), Eq("post_id", post)))
	return n > 0, wrap("UnlikePost", err)
}

func PostLiked(ctx context.Context, q QueryClient, user models.ProfileID, post models.PostID) (bool, error) {
	n, err := q.Count(ctx, &models.Like{}, Where(Eq("user_id", user), Eq("post_id", post)))
	return n > 0, wrap("PostLiked", err)
}

func CountPostLikes(ctx context.Context, q QueryClient, post models.PostID) (int64, error) {
	n, err := q.Count(ctx, &models.Like{}, Where(Eq("post_id", post)))
	return n, wrap("CountPostLikes", err)
}

// LikeCountsByPost counts likes per post; unliked posts are absent.
func LikeCountsByPost(ctx context.Context, q QueryClient, ids []models.PostID) (map[models.PostID]int64, error) {
	out := make(map[models.PostID]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	counts, err := q.CountBy(ctx, &models.Like{}, "post_id", Where(In("post_id", ids)))
	if err != nil {
		return nil, wrap("LikeCountsByPost", err)
	}
	for k, n := range counts {
		out[models.PostID(k)] = n
	}
	return out, nil
}

// LikedPosts returns which of ids the viewer has liked.
func LikedPosts(ctx context.Context, q QueryClient, viewer models.ProfileID, ids []models.PostID) (map[models.PostID]bool, error) {
	out := make(map[models.PostID]bool)
	if len(ids) == 0 {
		return out, nil
	}
	var liked []models.PostID
	if err := q.Pluck(ctx, &models.Like{}, "post_id", Where(Eq("user_id", viewer), In("post_id", ids)), &liked); err != nil {
		return nil, wrap("LikedPosts", err)
	}
	for _, id := range liked {
		out[id] = true
	}
	return out, nil
}

// CountLikesReceived counts the likes on every post in ids.
func CountLikesReceived(ctx context.Context, q QueryClient, ids []models.PostID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := q.Count(ctx, &models.Like{}, Where(In("post_id", ids)))
	return n, wrap("CountLikesReceived", err)
}

func LikeThread(ctx context.Context, q QueryClient, user models.ProfileID, thread models.ThreadID) (bool, error) {
	ok, err := q.InsertIgnore(ctx, &models.ThreadLike{UserID: user, ThreadID: thread})
	return ok, wrap("LikeThread", err)
}

func UnlikeThread(ctx context.Context, q QueryClient, user models.ProfileID, thread models.ThreadID) (bool, error) {
	n, err := q.Delete(ctx, &models.ThreadLike{}, Where(Eq("user_id", user), Eq("thread_id", thread)))
	return n > 0, wrap("UnlikeThread", err)
}

func ThreadLiked(ctx context.Context, q QueryClient, user models.ProfileID, thread models.ThreadID) (bool, error) {
	n, err := q.Count(ctx, &models.ThreadLike{}, Where(Eq("user_id", user), Eq("thread_id", thread)))
	return n > 0, wrap("ThreadLiked", err)
}

func CountThreadLikes(ctx context.Context, q QueryClient, thread models.ThreadID) (int64, error) {
	n, err := q.Count(ctx, &models.ThreadLike{}, Where(Eq("thread_id", thread)))
	return n, wrap("CountThreadLikes", err)
}

func LikeCountsByThread(ctx context.Context, q QueryClient, ids []models.ThreadID) (map[models.ThreadID]int64, error) {
	out := make(map[models.ThreadID]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	counts, err := q.CountBy(ctx, &models.ThreadLike{}, "thread_id", Where(In("thread_id", ids)))
	if err != nil {
		return nil, wrap("LikeCountsByThread", err)
	}
	for k, n := range counts {
		out[models.ThreadID(k)] = n
	}
	return out, nil
}

func LikedThreads(ctx context.Context, q QueryClient, viewer models.ProfileID, ids []models.ThreadID) (map[models.ThreadID]bool, error) {
	out := make(map[models.ThreadID]bool)
	if len(ids) == 0 {
		return out, nil
	}
	var liked []models.ThreadID
	if err := q.Pluck(ctx, &models.ThreadLike{}, "thread_id", Where(Eq("user_id", viewer), In("thread_id", ids)), &liked); err != nil {
		return nil, wrap("LikedThreads", err)
	}
	for _, id := range liked {
		out[id] = true
	}
	return out, nil
}

func Follow(ctx context.Context, q QueryClient, follower, following models.ProfileID) (bool, error) {
	ok, err := q.InsertIgnore(ctx, &models.Follow{FollowerID: follower, FollowingID: following})
	return ok, wrap("Follow", err)
}

func Unfollow(ctx context.Context, q QueryClient, follower, following models.ProfileID) (bool, error) {
	n, err := q.Delete(ctx, &models.Follow{}, Where(Eq("follower_id", follower), Eq("following_id", following)))
	return n > 0, wrap("Unfollow", err)
}

func IsFollowing(ctx context.Context, q QueryClient, follower, following models.ProfileID) (bool, error) {
	n, err := q.Count(ctx, &models.Follow{}, Where(Eq("follower_id", follower), Eq("following_id", following)))
	return n > 0, wrap("IsFollowing", err)
}

func CountFollowers(ctx context.Context, q QueryClient, id models.ProfileID) (int64, error) {
	n, err := q.Count(ctx, &models.Follow{}, Where(Eq("following_id", id)))
	return n, wrap("CountFollowers", err)
}

func CountFollowing(ctx context.Context, q QueryClient, id models.ProfileID) (int64, error) {
	n, err := q.Count(ctx, &models.Follow{}, Where(Eq("follower_id", id)))
	return n, wrap("CountFollowing", err)
}

// Followers lists who follows id, newest first, with their profiles.
func Followers(ctx context.Context, q QueryClient, id models.ProfileID) ([]*models.Follow, error) {
	rows := make([]*models.Follow, 0)
	err := q.Select(ctx, &rows,
		Where(Eq("following_id", id)).With("Follower").OrderBy("created_at DESC", "id DESC"))
	return rows, wrap("Followers", err)
}

// Following lists who id follows, newest first, with their profiles.
func Following(ctx context.Context, q QueryClient, id models.ProfileID) ([]*models.Follow, error) {
	rows := make([]*models.Follow, 0)
	err := q.Select(ctx, &rows,
		Where(Eq("follower_id", id)).With("Following").OrderBy("created_at DESC", "id DESC"))
	return rows, wrap("Following", err)
}
