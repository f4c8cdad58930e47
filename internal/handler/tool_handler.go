package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/toolhub/internal/middleware"
	"github.com/ashwinyue/toolhub/internal/model"
	"github.com/ashwinyue/toolhub/internal/permissions"
	"github.com/ashwinyue/toolhub/internal/repository"
	"github.com/ashwinyue/toolhub/internal/service"
)

// ToolHandler 工具处理器
type ToolHandler struct {
	svc *service.Services
}

// NewToolHandler 创建工具处理器
func NewToolHandler(svc *service.Services) *ToolHandler {
	return &ToolHandler{svc: svc}
}

// CreateTool 通过 API 新建工具
// POST /api/v1/tools
func (h *ToolHandler) CreateTool(c *gin.Context) {
	var record map[string]any
	if err := c.ShouldBindJSON(&record); err != nil {
		BadRequest(c, "Invalid toolinfo record: "+err.Error())
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	tool, err := h.svc.Tools.Create(c.Request.Context(), record, user)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, tool)
}

// ListTools 分页列出工具
// GET /api/v1/tools?origin=&created_by=
func (h *ToolHandler) ListTools(c *gin.Context) {
	page, pageSize, offset := getPagination(c)
	filter := repository.ToolFilter{
		Origin:    c.Query("origin"),
		CreatedBy: c.Query("created_by"),
	}

	tools, total, err := h.svc.Tools.List(c.Request.Context(), filter, offset, pageSize)
	if err != nil {
		Error(c, err)
		return
	}

	SuccessWithPagination(c, tools, total, page, pageSize)
}

// GetTool 获取工具
// GET /api/v1/tools/:name
func (h *ToolHandler) GetTool(c *gin.Context) {
	tool, err := h.svc.Tools.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, tool)
}

// UpdateTool 更新 API 管理的工具
// PUT /api/v1/tools/:name
func (h *ToolHandler) UpdateTool(c *gin.Context) {
	tool, ok := h.loadForChange(c, permissions.ActionChange)
	if !ok {
		return
	}

	var record map[string]any
	if err := c.ShouldBindJSON(&record); err != nil {
		BadRequest(c, "Invalid toolinfo record: "+err.Error())
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	updated, _, err := h.svc.Tools.Update(c.Request.Context(), tool, record, user)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, updated)
}

// DeleteTool 软删除工具
// DELETE /api/v1/tools/:name
func (h *ToolHandler) DeleteTool(c *gin.Context) {
	tool, ok := h.loadForChange(c, permissions.ActionDelete)
	if !ok {
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	if err := h.svc.Tools.Delete(c.Request.Context(), tool, user); err != nil {
		Error(c, err)
		return
	}

	NoContent(c)
}

// ListRevisions 工具的修订历史
// GET /api/v1/tools/:name/revisions
func (h *ToolHandler) ListRevisions(c *gin.Context) {
	tool, err := h.svc.Tools.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		Error(c, err)
		return
	}
	listRevisions(c, h.svc, model.ContentTypeTool, tool.ID)
}

// GetRevision 获取单个修订
// GET /api/v1/tools/:name/revisions/:id
func (h *ToolHandler) GetRevision(c *gin.Context) {
	tool, err := h.svc.Tools.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		Error(c, err)
		return
	}
	getRevision(c, h.svc, model.ContentTypeTool, tool.ID, c.Param("id"))
}

// DiffRevisions 对比两个修订
// GET /api/v1/tools/:name/revisions/:id/diff/:other
func (h *ToolHandler) DiffRevisions(c *gin.Context) {
	tool, err := h.svc.Tools.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		Error(c, err)
		return
	}
	diffRevisions(c, h.svc, model.ContentTypeTool, tool.ID, c.Param("id"), c.Param("other"))
}

// loadForChange 加载工具并做对象级权限检查
func (h *ToolHandler) loadForChange(c *gin.Context, action permissions.Action) (*model.Tool, bool) {
	tool, err := h.svc.Tools.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		Error(c, err)
		return nil, false
	}

	user, _ := middleware.GetCurrentUser(c)
	if !h.svc.Authz.Can(user, permissions.AppToolinfo, permissions.ModelTool, action, tool) {
		Forbidden(c, "Permission denied")
		return nil, false
	}
	return tool, true
}
