package controller

import (
	"context"

	"gameforum/models"

	"github.com/gin-gonic/gin"
)

// SubmitReportHandler flags a thread, post or profile for moderators.
// @Summary Report content
// @Tags reports
// @Accept application/json
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param object body models.ParamReport true "report"
// @Success 200 {object} ResponseData{data=models.Report}
// @Router /reports [post]
func (h *Handler) SubmitReportHandler(c *gin.Context) {
	u, ok := requireUser(c)
	if !ok {
		return
	}
	p := new(models.ParamReport)
	if err := c.ShouldBindJSON(p); err != nil {
		bindError(c, err)
		return
	}
	r, err := h.svc.SubmitReport(c.Request.Context(), u, p)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, r)
}

// CheckReportHandler tells whether the caller already has a pending
// report on the same target.
// @Summary Check existing report
// @Tags reports
// @Accept application/json
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param object body models.ParamReport true "report target"
// @Success 200 {object} ResponseData{data=bool}
// @Router /reports/check [post]
func (h *Handler) CheckReportHandler(c *gin.Context) {
	u, ok := requireUser(c)
	if !ok {
		return
	}
	p := new(models.ParamReport)
	if err := c.ShouldBindJSON(p); err != nil {
		bindError(c, err)
		return
	}
	exists, err := h.svc.CheckExistingReport(c.Request.Context(), u, p)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, exists)
}

// ReportListHandler lists reports for the moderation queue.
// @Summary List reports
// @Tags admin
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param object query models.ParamReportList false "filters"
// @Success 200 {object} ResponseData{data=[]models.ReportView}
// @Router /admin/reports [get]
func (h *Handler) ReportListHandler(c *gin.Context) {
	u, ok := requireUser(c)
	if !ok {
		return
	}
	p := new(models.ParamReportList)
	if err := c.ShouldBindQuery(p); err != nil {
		bindError(c, err)
		return
	}
	list, err := h.svc.ListReports(c.Request.Context(), u, p)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, list)
}

// ResolveReportHandler marks a pending report as acted upon.
// @Summary Resolve report
// @Tags admin
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "report id"
// @Success 200 {object} ResponseData{data=models.Report}
// @Router /admin/reports/{id}/resolve [post]
func (h *Handler) ResolveReportHandler(c *gin.Context) {
	h.transition(c, h.svc.ResolveReport)
}

// DismissReportHandler closes a pending report without action.
// @Summary Dismiss report
// @Tags admin
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "report id"
// @Success 200 {object} ResponseData{data=models.Report}
// @Router /admin/reports/{id}/dismiss [post]
func (h *Handler) DismissReportHandler(c *gin.Context) {
	h.transition(c, h.svc.DismissReport)
}

func (h *Handler) transition(c *gin.Context,
	fn func(context.Context, *models.SessionUser, models.ReportID) (*models.Report, error)) {
	u, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID[models.ReportID](c, "id")
	if !ok {
		return
	}
	r, err := fn(c.Request.Context(), u, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, r)
}

// SuggestReportHandler asks the moderation assistant for a hint.
// @Summary Suggest action
// @Tags admin
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "report id"
// @Success 200 {object} ResponseData{data=string}
// @Router /admin/reports/{id}/suggestion [get]
func (h *Handler) SuggestReportHandler(c *gin.Context) {
	u, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID[models.ReportID](c, "id")
	if !ok {
		return
	}
	hint, err := h.svc.SuggestReportAction(c.Request.Context(), u, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, gin.H{"suggestion": hint})
}
