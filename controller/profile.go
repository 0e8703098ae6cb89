package controller

import (
	"errors"
	"io"
	"net/http"

	"gameforum/models"
	"gameforum/pkg/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxUploadRead bounds how much of an uploaded avatar is read into memory.
// The service applies the configured size limit on top of this.
const maxUploadRead = 8 << 20

// ProfilePageHandler renders a public profile with stats and latest
// activity.
// @Summary Profile page
// @Tags profiles
// @Produce application/json
// @Param username path string true "username"
// @Success 200 {object} ResponseData{data=models.ProfileView}
// @Router /profiles/{username} [get]
func (h *Handler) ProfilePageHandler(c *gin.Context) {
	v, err := h.svc.GetProfilePage(c.Request.Context(), c.Param("username"), CurrentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, v)
}

// LatestThreadsHandler lists a user's most recent threads.
// @Summary Latest threads of a user
// @Tags profiles
// @Produce application/json
// @Param username path string true "username"
// @Param limit query int false "max rows"
// @Success 200 {object} ResponseData{data=[]models.LatestThread}
// @Router /profiles/{username}/threads [get]
func (h *Handler) LatestThreadsHandler(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.svc.GetProfileByUsername(ctx, c.Param("username"))
	if err != nil {
		HandleError(c, err)
		return
	}
	list, err := h.svc.GetUserLatestThreads(ctx, p.ID, queryInt(c, "limit", 5))
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, list)
}

// LatestPostsHandler lists a user's most recent replies.
// @Summary Latest posts of a user
// @Tags profiles
// @Produce application/json
// @Param username path string true "username"
// @Param limit query int false "max rows"
// @Success 200 {object} ResponseData{data=[]models.LatestPost}
// @Router /profiles/{username}/posts [get]
func (h *Handler) LatestPostsHandler(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.svc.GetProfileByUsername(ctx, c.Param("username"))
	if err != nil {
		HandleError(c, err)
		return
	}
	list, err := h.svc.GetUserLatestPosts(ctx, p.ID, queryInt(c, "limit", 5))
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, list)
}

// UserProfileHandler renders a profile by user id.
// @Summary Profile by user id
// @Tags profiles
// @Produce application/json
// @Param id path string true "user id"
// @Success 200 {object} ResponseData{data=models.ProfileView}
// @Router /users/{id}/profile [get]
func (h *Handler) UserProfileHandler(c *gin.Context) {
	id, ok := pathID[models.UserID](c, "id")
	if !ok {
		return
	}
	v, err := h.svc.GetUserProfile(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, v)
}

// UpdateProfileHandler edits the caller's display name and bio. A
// multipart request may carry a new avatar in the "avatar" field.
// @Summary Update profile
// @Tags profiles
// @Accept multipart/form-data
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param display_name formData string false "display name"
// @Param bio formData string false "bio"
// @Param avatar formData file false "avatar image"
// @Success 200 {object} ResponseData{data=models.Profile}
// @Router /profile [put]
func (h *Handler) UpdateProfileHandler(c *gin.Context) {
	u, ok := requireUser(c)
	if !ok {
		return
	}
	p := new(models.ParamUpdateProfile)
	if err := c.ShouldBind(p); err != nil {
		bindError(c, err)
		return
	}
	avatar, err := readAvatar(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	prof, err := h.svc.UpdateProfile(c.Request.Context(), u, p, avatar)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, prof)
}

func readAvatar(c *gin.Context) (*models.AvatarUpload, error) {
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return nil, nil
	}
	fh, err := c.FormFile("avatar")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errorx.ErrInvalidParam.WithMsg("unreadable avatar upload")
	}
	f, err := fh.Open()
	if err != nil {
		zap.L().Error("open avatar upload failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadRead))
	if err != nil {
		return nil, errorx.ErrInvalidParam.WithMsg("unreadable avatar upload")
	}
	return &models.AvatarUpload{Filename: fh.Filename, Data: data}, nil
}

// PrivacyHandler returns the caller's privacy settings.
// @Summary Privacy settings
// @Tags profiles
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} ResponseData{data=models.UserSettings}
// @Router /profile/privacy [get]
func (h *Handler) PrivacyHandler(c *gin.Context) {
	u, ok := requireUser(c)
	if !ok {
		return
	}
	st, err := h.svc.GetPrivacySettings(c.Request.Context(), u)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, st)
}

// UpdatePrivacyHandler replaces the caller's privacy settings.
// @Summary Update privacy settings
// @Tags profiles
// @Accept application/json
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param object body models.ParamPrivacySettings true "settings"
// @Success 200 {object} ResponseData{data=models.UserSettings}
// @Router /profile/privacy [put]
func (h *Handler) UpdatePrivacyHandler(c *gin.Context) {
	u, ok := requireUser(c)
	if !ok {
		return
	}
	p := new(models.ParamPrivacySettings)
	if err := c.ShouldBindJSON(p); err != nil {
		bindError(c, err)
		return
	}
	st, err := h.svc.UpdatePrivacySettings(c.Request.Context(), u, p)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, st)
}
