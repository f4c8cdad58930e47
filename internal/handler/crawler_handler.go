package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/toolhub/internal/middleware"
	"github.com/ashwinyue/toolhub/internal/model"
	"github.com/ashwinyue/toolhub/internal/service"
	"github.com/ashwinyue/toolhub/internal/service/crawler"
)

// CrawlerHandler 爬虫 URL 与运行记录处理器
type CrawlerHandler struct {
	svc *service.Services
}

// NewCrawlerHandler 创建爬虫处理器
func NewCrawlerHandler(svc *service.Services) *CrawlerHandler {
	return &CrawlerHandler{svc: svc}
}

// ListURLs 已登记的 toolinfo URL
// GET /api/v1/crawler/urls
func (h *CrawlerHandler) ListURLs(c *gin.Context) {
	page, pageSize, offset := getPagination(c)
	urls, total, err := h.svc.CrawlerURLs.ListURLs(c.Request.Context(), offset, pageSize)
	if err != nil {
		Error(c, err)
		return
	}
	SuccessWithPagination(c, urls, total, page, pageSize)
}

// GetURL 获取 URL
// GET /api/v1/crawler/urls/:id
func (h *CrawlerHandler) GetURL(c *gin.Context) {
	u, err := h.svc.CrawlerURLs.GetURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, u)
}

// AddURL 登记 URL
// POST /api/v1/crawler/urls
func (h *CrawlerHandler) AddURL(c *gin.Context) {
	var req crawler.URLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	u, err := h.svc.CrawlerURLs.AddURL(c.Request.Context(), &req, user)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, u)
}

// UpdateURL 修改 URL
// PUT /api/v1/crawler/urls/:id
func (h *CrawlerHandler) UpdateURL(c *gin.Context) {
	u, err := h.svc.CrawlerURLs.GetURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	var req crawler.URLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	u, err = h.svc.CrawlerURLs.UpdateURL(c.Request.Context(), u, &req, user)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, u)
}

// DeleteURL 删除 URL
// DELETE /api/v1/crawler/urls/:id
func (h *CrawlerHandler) DeleteURL(c *gin.Context) {
	u, err := h.svc.CrawlerURLs.GetURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	if err := h.svc.CrawlerURLs.DeleteURL(c.Request.Context(), u, user); err != nil {
		Error(c, err)
		return
	}
	NoContent(c)
}

// ListRuns 运行记录
// GET /api/v1/crawler/runs
func (h *CrawlerHandler) ListRuns(c *gin.Context) {
	page, pageSize, offset := getPagination(c)
	runs, total, err := h.svc.CrawlerURLs.ListRuns(c.Request.Context(), offset, pageSize)
	if err != nil {
		Error(c, err)
		return
	}
	SuccessWithPagination(c, runs, total, page, pageSize)
}

// GetRun 单次运行及各 URL 的结果
// GET /api/v1/crawler/runs/:id
func (h *CrawlerHandler) GetRun(c *gin.Context) {
	run, err := h.svc.CrawlerURLs.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, run)
}

// StartRun 立即执行一次抓取，仅管理员
// POST /api/v1/crawler/runs
func (h *CrawlerHandler) StartRun(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)
	if !user.InGroup(model.GroupAdministrators) {
		Forbidden(c, "Permission denied")
		return
	}

	run, err := h.svc.Crawler.Run(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, run)
}
