package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/toolhub/internal/middleware"
	"github.com/ashwinyue/toolhub/internal/service"
	"github.com/ashwinyue/toolhub/internal/service/applications"
)

// ApplicationHandler OAuth 应用处理器
type ApplicationHandler struct {
	svc *service.Services
}

// NewApplicationHandler 创建应用处理器
func NewApplicationHandler(svc *service.Services) *ApplicationHandler {
	return &ApplicationHandler{svc: svc}
}

// ListApplications 当前用户的应用，管理员看到全部
// GET /api/v1/applications
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)
	apps, err := h.svc.Applications.List(c.Request.Context(), user)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, apps)
}

// GetApplication 获取应用
// GET /api/v1/applications/:id
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	app, err := h.svc.Applications.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, app)
}

// RegisterApplication 登记应用，密钥只在这里返回一次
// POST /api/v1/applications
func (h *ApplicationHandler) RegisterApplication(c *gin.Context) {
	var req applications.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	reg, err := h.svc.Applications.Register(c.Request.Context(), &req, user)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, reg)
}

// UpdateApplication 修改应用
// PUT /api/v1/applications/:id
func (h *ApplicationHandler) UpdateApplication(c *gin.Context) {
	app, err := h.svc.Applications.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	var req applications.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	app, err = h.svc.Applications.Update(c.Request.Context(), app, &req, user)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, app)
}

// DeleteApplication 删除应用
// DELETE /api/v1/applications/:id
func (h *ApplicationHandler) DeleteApplication(c *gin.Context) {
	app, err := h.svc.Applications.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	if err := h.svc.Applications.Delete(c.Request.Context(), app, user); err != nil {
		Error(c, err)
		return
	}
	NoContent(c)
}
