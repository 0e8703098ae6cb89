package controller

import (
	"gameforum/logic"
	"gameforum/models"

	"github.com/gin-gonic/gin"
)

// Handler adapts HTTP requests to the forum service.
type Handler struct {
	svc *logic.Service
}

func New(svc *logic.Service) *Handler {
	return &Handler{svc: svc}
}

// SignUpHandler registers a new account and signs it in.
// @Summary Register
// @Tags auth
// @Accept application/json
// @Produce application/json
// @Param object body models.ParamSignUp true "registration"
// @Success 200 {object} ResponseData{data=models.AuthResult}
// @Router /auth/signup [post]
func (h *Handler) SignUpHandler(c *gin.Context) {
	p := new(models.ParamSignUp)
	if err := c.ShouldBindJSON(p); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.svc.Register(c.Request.Context(), p)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, res)
}

// LoginHandler exchanges credentials for a session token. A new login
// replaces the previous session of the same user.
// @Summary Login
// @Tags auth
// @Accept application/json
// @Produce application/json
// @Param object body models.ParamLogin true "credentials"
// @Success 200 {object} ResponseData{data=models.AuthResult}
// @Router /auth/login [post]
func (h *Handler) LoginHandler(c *gin.Context) {
	var p models.ParamLogin
	if err := c.ShouldBindJSON(&p); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.svc.Login(c.Request.Context(), &p)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, res)
}

// RefreshTokenHandler re-issues the caller's session token.
// @Summary Refresh session
// @Tags auth
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} ResponseData{data=models.AuthResult}
// @Router /auth/refresh [post]
func (h *Handler) RefreshTokenHandler(c *gin.Context) {
	token := c.GetString(CtxTokenKey)
	res, err := h.svc.RefreshSession(c.Request.Context(), token)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, res)
}

// LogoutHandler ends the caller's session.
// @Summary Logout
// @Tags auth
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} ResponseData
// @Router /auth/logout [post]
func (h *Handler) LogoutHandler(c *gin.Context) {
	u, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.svc.Logout(c.Request.Context(), u.ID); err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, nil)
}

// MeHandler returns the signed-in user.
// @Summary Current user
// @Tags auth
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} ResponseData{data=models.SessionUser}
// @Router /auth/me [get]
func (h *Handler) MeHandler(c *gin.Context) {
	u, ok := requireUser(c)
	if !ok {
		return
	}
	ResponseSuccess(c, u)
}
