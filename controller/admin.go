package controller

import (
	"net/http"

	"gameforum/models"
	"gameforum/pkg/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminDashboardHandler returns site totals and the recent activity feed.
// @Summary Dashboard
// @Tags admin
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} ResponseData{data=models.AdminDashboard}
// @Router /admin/dashboard [get]
func (h *Handler) AdminDashboardHandler(c *gin.Context) {
	u, ok := requireUser(c)
	if !ok {
		return
	}
	d, err := h.svc.GetAdminDashboard(c.Request.Context(), u)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, d)
}

// AdminThreadListHandler lists threads with moderation filters.
// @Summary Admin thread list
// @Tags admin
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param object query models.ParamAdminThreadList false "filters"
// @Success 200 {object} ResponseData{data=[]models.ThreadSummary}
// @Router /admin/threads [get]
func (h *Handler) AdminThreadListHandler(c *gin.Context) {
	p := new(models.ParamAdminThreadList)
	if err := c.ShouldBindQuery(p); err != nil {
		bindError(c, err)
		return
	}
	list, err := h.svc.ListAdminThreads(c.Request.Context(), p)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, list)
}

// TogglePinHandler pins or unpins a thread.
// @Summary Toggle pin
// @Tags admin
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "thread id"
// @Success 200 {object} ResponseData{data=models.ModerationFlags}
// @Router /admin/threads/{id}/pin [post]
func (h *Handler) TogglePinHandler(c *gin.Context) {
	h.toggle(c, false)
}

// ToggleLockHandler locks or unlocks a thread.
// @Summary Toggle lock
// @Tags admin
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "thread id"
// @Success 200 {object} ResponseData{data=models.ModerationFlags}
// @Router /admin/threads/{id}/lock [post]
func (h *Handler) ToggleLockHandler(c *gin.Context) {
	h.toggle(c, true)
}

func (h *Handler) toggle(c *gin.Context, lock bool) {
	u, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID[models.ThreadID](c, "id")
	if !ok {
		return
	}
	var (
		flags *models.ModerationFlags
		err   error
	)
	if lock {
		flags, err = h.svc.ToggleLock(c.Request.Context(), u, id)
	} else {
		flags, err = h.svc.TogglePin(c.Request.Context(), u, id)
	}
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, flags)
}

// SearchHandler matches threads and users.
// @Summary Search
// @Tags search
// @Produce application/json
// @Param object query models.ParamSearch true "query"
// @Success 200 {object} ResponseData{data=models.SearchResult}
// @Router /search [get]
func (h *Handler) SearchHandler(c *gin.Context) {
	p := new(models.ParamSearch)
	if err := c.ShouldBindQuery(p); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.svc.Search(c.Request.Context(), p, CurrentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, res)
}

// HealthHandler answers load balancer probes.
// @Summary Health
// @Tags ops
// @Produce application/json
// @Success 200 {object} ResponseData
// @Failure 503 {object} ResponseData
// @Router /healthz [get]
func (h *Handler) HealthHandler(c *gin.Context) {
	if err := h.svc.Health(c.Request.Context()); err != nil {
		zap.L().Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, &ResponseData{
			Code: errorx.CodeServerBusy,
			Msg:  errorx.ErrServerBusy.Msg,
		})
		return
	}
	ResponseSuccess(c, "ok")
}
