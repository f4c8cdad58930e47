package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/toolhub/internal/middleware"
	"github.com/ashwinyue/toolhub/internal/model"
	"github.com/ashwinyue/toolhub/internal/service"
)

// SearchHandler 搜索处理器
type SearchHandler struct {
	svc *service.Services
}

// NewSearchHandler 创建搜索处理器
func NewSearchHandler(svc *service.Services) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// SearchTools 搜索工具
// GET /api/v1/search/tools?q=
func (h *SearchHandler) SearchTools(c *gin.Context) {
	page, pageSize, offset := getPagination(c)
	result, err := h.svc.Search.Search(c.Request.Context(), c.Query("q"), offset, pageSize)
	if err != nil {
		Error(c, err)
		return
	}

	c.Header("X-Search-Backend", result.Backend)
	SuccessWithPagination(c, result.Tools, result.Total, page, pageSize)
}

// Reindex 重建搜索索引，仅管理员
// POST /api/v1/search/reindex
func (h *SearchHandler) Reindex(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)
	if !user.InGroup(model.GroupAdministrators) {
		Forbidden(c, "Permission denied")
		return
	}

	count, err := h.svc.Search.Reindex(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"indexed": count})
}
