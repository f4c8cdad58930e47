package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/toolhub/internal/middleware"
	"github.com/ashwinyue/toolhub/internal/model"
	"github.com/ashwinyue/toolhub/internal/service"
	"github.com/ashwinyue/toolhub/internal/service/lists"
)

// ListHandler 工具列表处理器
type ListHandler struct {
	svc *service.Services
}

// NewListHandler 创建工具列表处理器
func NewListHandler(svc *service.Services) *ListHandler {
	return &ListHandler{svc: svc}
}

// CreateList 新建列表
// POST /api/v1/lists
func (h *ListHandler) CreateList(c *gin.Context) {
	var req lists.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	list, err := h.svc.Lists.Create(c.Request.Context(), &req, user)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, list)
}

// ListLists 列出当前用户可见的列表
// GET /api/v1/lists?created_by=
func (h *ListHandler) ListLists(c *gin.Context) {
	page, pageSize, offset := getPagination(c)
	user, _ := middleware.GetCurrentUser(c)

	items, total, err := h.svc.Lists.List(c.Request.Context(), user, c.Query("created_by"), offset, pageSize)
	if err != nil {
		Error(c, err)
		return
	}

	SuccessWithPagination(c, items, total, page, pageSize)
}

// GetList 获取列表
// GET /api/v1/lists/:id
func (h *ListHandler) GetList(c *gin.Context) {
	list, ok := h.load(c)
	if !ok {
		return
	}
	Success(c, list)
}

// UpdateList 更新列表
// PUT /api/v1/lists/:id
func (h *ListHandler) UpdateList(c *gin.Context) {
	list, ok := h.load(c)
	if !ok {
		return
	}

	var req lists.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	updated, err := h.svc.Lists.Update(c.Request.Context(), list, &req, user)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, updated)
}

// DeleteList 删除列表
// DELETE /api/v1/lists/:id
func (h *ListHandler) DeleteList(c *gin.Context) {
	list, ok := h.load(c)
	if !ok {
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	if err := h.svc.Lists.Delete(c.Request.Context(), list, user); err != nil {
		Error(c, err)
		return
	}

	NoContent(c)
}

// ListRevisions 列表的修订历史
// GET /api/v1/lists/:id/revisions
func (h *ListHandler) ListRevisions(c *gin.Context) {
	if list, ok := h.load(c); ok {
		listRevisions(c, h.svc, model.ContentTypeToolList, list.ID)
	}
}

// GetRevision 获取单个修订
// GET /api/v1/lists/:id/revisions/:rev
func (h *ListHandler) GetRevision(c *gin.Context) {
	if list, ok := h.load(c); ok {
		getRevision(c, h.svc, model.ContentTypeToolList, list.ID, c.Param("rev"))
	}
}

// DiffRevisions 对比两个修订
// GET /api/v1/lists/:id/revisions/:rev/diff/:other
func (h *ListHandler) DiffRevisions(c *gin.Context) {
	if list, ok := h.load(c); ok {
		diffRevisions(c, h.svc, model.ContentTypeToolList, list.ID, c.Param("rev"), c.Param("other"))
	}
}

// GetFavorites 当前用户的收藏列表
// GET /api/v1/user/favorites
func (h *ListHandler) GetFavorites(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)
	list, err := h.svc.Lists.Favorites(c.Request.Context(), user)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, list)
}

// AddFavorite 收藏工具
// POST /api/v1/user/favorites/:name
func (h *ListHandler) AddFavorite(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)
	list, err := h.svc.Lists.AddFavorite(c.Request.Context(), user, c.Param("name"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, list)
}

// RemoveFavorite 取消收藏
// DELETE /api/v1/user/favorites/:name
func (h *ListHandler) RemoveFavorite(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)
	list, err := h.svc.Lists.RemoveFavorite(c.Request.Context(), user, c.Param("name"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, list)
}

// load 按 ID 加载当前用户可见的列表
func (h *ListHandler) load(c *gin.Context) (*model.ToolList, bool) {
	user, _ := middleware.GetCurrentUser(c)
	list, err := h.svc.Lists.Get(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		Error(c, err)
		return nil, false
	}
	return list, true
}
