package handler

import (
	"github.com/ashwinyue/toolhub/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	Auth        *AuthHandler
	Tool        *ToolHandler
	List        *ListHandler
	User        *UserHandler
	Crawler     *CrawlerHandler
	Search      *SearchHandler
	Application *ApplicationHandler
	System      *SystemHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:        NewAuthHandler(svc),
		Tool:        NewToolHandler(svc),
		List:        NewListHandler(svc),
		User:        NewUserHandler(svc),
		Crawler:     NewCrawlerHandler(svc),
		Search:      NewSearchHandler(svc),
		Application: NewApplicationHandler(svc),
		System:      NewSystemHandler(svc),
	}
}
