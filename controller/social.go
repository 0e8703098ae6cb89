package controller

import (
	"context"

	"gameforum/models"

	"github.com/gin-gonic/gin"
)

// LikeThreadHandler likes a thread. Liking twice is a no-op.
// @Summary Like thread
// @Tags likes
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "thread id"
// @Success 200 {object} ResponseData{data=models.LikeState}
// @Router /threads/{id}/like [post]
func (h *Handler) LikeThreadHandler(c *gin.Context) {
	h.threadLike(c, true)
}

// UnlikeThreadHandler removes the caller's like.
// @Summary Unlike thread
// @Tags likes
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "thread id"
// @Success 200 {object} ResponseData{data=models.LikeState}
// @Router /threads/{id}/like [delete]
func (h *Handler) UnlikeThreadHandler(c *gin.Context) {
	h.threadLike(c, false)
}

func (h *Handler) threadLike(c *gin.Context, like bool) {
	u, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID[models.ThreadID](c, "id")
	if !ok {
		return
	}
	var (
		st  *models.LikeState
		err error
	)
	if like {
		st, err = h.svc.LikeThread(c.Request.Context(), u, id)
	} else {
		st, err = h.svc.UnlikeThread(c.Request.Context(), u, id)
	}
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, st)
}

// ThreadLikeStateHandler reports the like count and, for signed-in
// callers, whether they liked the thread.
// @Summary Thread like state
// @Tags likes
// @Produce application/json
// @Param id path string true "thread id"
// @Success 200 {object} ResponseData{data=models.LikeState}
// @Router /threads/{id}/like [get]
func (h *Handler) ThreadLikeStateHandler(c *gin.Context) {
	id, ok := pathID[models.ThreadID](c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	n, err := h.svc.GetThreadLikeCount(ctx, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	st := &models.LikeState{Count: n}
	if u := CurrentUser(c); u != nil {
		if st.Liked, err = h.svc.CheckUserThreadLike(ctx, u, id); err != nil {
			HandleError(c, err)
			return
		}
	}
	ResponseSuccess(c, st)
}

// LikePostHandler likes a reply.
// @Summary Like post
// @Tags likes
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "post id"
// @Success 200 {object} ResponseData{data=models.LikeState}
// @Router /posts/{id}/like [post]
func (h *Handler) LikePostHandler(c *gin.Context) {
	h.postLike(c, h.svc.LikePost)
}

// UnlikePostHandler removes the caller's like from a reply.
// @Summary Unlike post
// @Tags likes
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "post id"
// @Success 200 {object} ResponseData{data=models.LikeState}
// @Router /posts/{id}/like [delete]
func (h *Handler) UnlikePostHandler(c *gin.Context) {
	h.postLike(c, h.svc.UnlikePost)
}

// TogglePostLikeHandler flips the caller's like on a reply.
// @Summary Toggle post like
// @Tags likes
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "post id"
// @Success 200 {object} ResponseData{data=models.LikeState}
// @Router /posts/{id}/like/toggle [post]
func (h *Handler) TogglePostLikeHandler(c *gin.Context) {
	h.postLike(c, h.svc.TogglePostLike)
}

type postLikeFunc func(ctx context.Context, user *models.SessionUser, id models.PostID) (*models.LikeState, error)

func (h *Handler) postLike(c *gin.Context, fn postLikeFunc) {
	u, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID[models.PostID](c, "id")
	if !ok {
		return
	}
	st, err := fn(c.Request.Context(), u, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, st)
}

// FollowHandler follows a user.
// @Summary Follow
// @Tags follows
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "user id"
// @Success 200 {object} ResponseData
// @Router /users/{id}/follow [post]
func (h *Handler) FollowHandler(c *gin.Context) {
	h.follow(c, h.svc.FollowUser)
}

// UnfollowHandler stops following a user.
// @Summary Unfollow
// @Tags follows
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "user id"
// @Success 200 {object} ResponseData
// @Router /users/{id}/follow [delete]
func (h *Handler) UnfollowHandler(c *gin.Context) {
	h.follow(c, h.svc.UnfollowUser)
}

func (h *Handler) follow(c *gin.Context, fn func(context.Context, *models.SessionUser, models.UserID) error) {
	u, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID[models.UserID](c, "id")
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), u, id); err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, nil)
}

// FollowStatusHandler reports whether the caller follows a user.
// @Summary Follow status
// @Tags follows
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "user id"
// @Success 200 {object} ResponseData{data=bool}
// @Router /users/{id}/follow [get]
func (h *Handler) FollowStatusHandler(c *gin.Context) {
	u, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID[models.UserID](c, "id")
	if !ok {
		return
	}
	following, err := h.svc.CheckFollowStatus(c.Request.Context(), u, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, following)
}

// FollowCountsHandler returns follower and following totals.
// @Summary Follow counts
// @Tags follows
// @Produce application/json
// @Param id path string true "user id"
// @Success 200 {object} ResponseData{data=models.FollowCounts}
// @Router /users/{id}/follow-counts [get]
func (h *Handler) FollowCountsHandler(c *gin.Context) {
	id, ok := pathID[models.UserID](c, "id")
	if !ok {
		return
	}
	counts, err := h.svc.GetFollowCounts(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, counts)
}

// FollowersHandler lists who follows a user.
// @Summary Followers
// @Tags follows
// @Produce application/json
// @Param id path string true "user id"
// @Success 200 {object} ResponseData{data=[]models.FollowEntry}
// @Router /users/{id}/followers [get]
func (h *Handler) FollowersHandler(c *gin.Context) {
	h.followList(c, h.svc.GetFollowersList)
}

// FollowingHandler lists who a user follows.
// @Summary Following
// @Tags follows
// @Produce application/json
// @Param id path string true "user id"
// @Success 200 {object} ResponseData{data=[]models.FollowEntry}
// @Router /users/{id}/following [get]
func (h *Handler) FollowingHandler(c *gin.Context) {
	h.followList(c, h.svc.GetFollowingList)
}

type followListFunc func(ctx context.Context, target models.UserID, viewer *models.SessionUser) ([]*models.FollowEntry, error)

func (h *Handler) followList(c *gin.Context, fn followListFunc) {
	id, ok := pathID[models.UserID](c, "id")
	if !ok {
		return
	}
	list, err := fn(c.Request.Context(), id, CurrentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, list)
}
