package controller

import (
	"gameforum/models"

	"github.com/gin-gonic/gin"
)

// ThreadListHandler serves the forum page.
// @Summary List threads
// @Description Pinned threads come first, then the requested sort order.
// @Tags threads
// @Produce application/json
// @Param object query models.ParamThreadList false "filters"
// @Success 200 {object} ResponseData{data=[]models.ThreadSummary}
// @Router /threads [get]
func (h *Handler) ThreadListHandler(c *gin.Context) {
	p := new(models.ParamThreadList)
	if err := c.ShouldBindQuery(p); err != nil {
		bindError(c, err)
		return
	}
	list, err := h.svc.ListThreads(c.Request.Context(), p, CurrentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, list)
}

// ThreadDetailHandler returns a thread with its posts and counts a view.
// @Summary Thread detail
// @Tags threads
// @Produce application/json
// @Param id path string true "thread id"
// @Success 200 {object} ResponseData{data=models.ThreadDetail}
// @Router /threads/{id} [get]
func (h *Handler) ThreadDetailHandler(c *gin.Context) {
	id, ok := pathID[models.ThreadID](c, "id")
	if !ok {
		return
	}
	d, err := h.svc.GetThreadDetail(c.Request.Context(), id, CurrentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, d)
}

// CreateThreadHandler opens a new thread.
// @Summary Create thread
// @Tags threads
// @Accept application/json
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param object body models.ParamThread true "thread"
// @Success 200 {object} ResponseData{data=models.ThreadSummary}
// @Router /threads [post]
func (h *Handler) CreateThreadHandler(c *gin.Context) {
	u, ok := requireUser(c)
	if !ok {
		return
	}
	p := new(models.ParamThread)
	if err := c.ShouldBindJSON(p); err != nil {
		bindError(c, err)
		return
	}
	t, err := h.svc.CreateThread(c.Request.Context(), u, p)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, t)
}

// DeleteThreadHandler removes a thread with its posts, likes and reports.
// @Summary Delete thread
// @Tags admin
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "thread id"
// @Success 200 {object} ResponseData
// @Router /admin/threads/{id} [delete]
func (h *Handler) DeleteThreadHandler(c *gin.Context) {
	u, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID[models.ThreadID](c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteThread(c.Request.Context(), u, id); err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, nil)
}

// CreatePostHandler replies to a thread.
// @Summary Reply
// @Tags threads
// @Accept application/json
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "thread id"
// @Param object body models.ParamPost true "reply"
// @Success 200 {object} ResponseData{data=models.PostView}
// @Router /threads/{id}/posts [post]
func (h *Handler) CreatePostHandler(c *gin.Context) {
	u, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID[models.ThreadID](c, "id")
	if !ok {
		return
	}
	p := new(models.ParamPost)
	if err := c.ShouldBindJSON(p); err != nil {
		bindError(c, err)
		return
	}
	post, err := h.svc.CreatePost(c.Request.Context(), u, id, p)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, post)
}

// HomeHandler serves latest threads, trending threads and categories.
// @Summary Home page
// @Tags threads
// @Produce application/json
// @Success 200 {object} ResponseData{data=models.HomeView}
// @Router /home [get]
func (h *Handler) HomeHandler(c *gin.Context) {
	v, err := h.svc.GetHome(c.Request.Context(), CurrentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, v)
}

// ReviewsHandler lists threads of the reviews category.
// @Summary Reviews
// @Tags threads
// @Produce application/json
// @Success 200 {object} ResponseData{data=[]models.ThreadSummary}
// @Router /reviews [get]
func (h *Handler) ReviewsHandler(c *gin.Context) {
	list, err := h.svc.ListReviews(c.Request.Context(), CurrentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, list)
}

// CategoryListHandler lists all categories.
// @Summary Categories
// @Tags categories
// @Produce application/json
// @Success 200 {object} ResponseData{data=[]models.Category}
// @Router /categories [get]
func (h *Handler) CategoryListHandler(c *gin.Context) {
	list, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, list)
}

// CreateCategoryHandler adds a category. Admin only.
// @Summary Create category
// @Tags admin
// @Accept application/json
// @Produce application/json
// @Param Authorization header string true "Bearer token"
// @Param object body models.ParamCategory true "category"
// @Success 200 {object} ResponseData{data=models.Category}
// @Router /admin/categories [post]
func (h *Handler) CreateCategoryHandler(c *gin.Context) {
	p := new(models.ParamCategory)
	if err := c.ShouldBindJSON(p); err != nil {
		bindError(c, err)
		return
	}
	cat, err := h.svc.CreateCategory(c.Request.Context(), p)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, cat)
}
