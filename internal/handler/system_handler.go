package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/toolhub/internal/service"
	"github.com/ashwinyue/toolhub/internal/service/search"
)

// SystemHandler 系统处理器
type SystemHandler struct {
	svc *service.Services
}

// NewSystemHandler 创建系统处理器
func NewSystemHandler(svc *service.Services) *SystemHandler {
	return &SystemHandler{svc: svc}
}

// SystemInfo 系统信息
type SystemInfo struct {
	Name           string   `json:"name"`
	Version        string   `json:"version"`
	Environment    string   `json:"environment"`
	SearchBackend  string   `json:"search_backend"`
	CASLCache      bool     `json:"casl_cache"`
	CrawlerRunning bool     `json:"crawler_running"`
	Permissions    []string `json:"permissions"`
}

// GetSystemInfo 获取系统信息
// GET /api/v1/system/info
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	cfg := h.svc.Config
	backend := search.BackendDatabase
	if h.svc.Search.Indexed() {
		backend = search.BackendElastic
	}

	Success(c, SystemInfo{
		Name:           cfg.App.Name,
		Version:        cfg.App.Version,
		Environment:    cfg.App.Environment,
		SearchBackend:  backend,
		CASLCache:      h.svc.CASL.Cached(),
		CrawlerRunning: h.svc.Crawler.Running(),
		Permissions:    h.svc.Authz.RuleNames(),
	})
}
