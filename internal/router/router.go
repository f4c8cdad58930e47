package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/toolhub/internal/handler"
	"github.com/ashwinyue/toolhub/internal/middleware"
	"github.com/ashwinyue/toolhub/internal/permissions"
	"github.com/ashwinyue/toolhub/internal/service"
)

// SetupRouter 设置路由
func SetupRouter(svc *service.Services, h *handler.Handlers) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RecoveryMiddleware(svc.Logger))
	r.Use(middleware.LoggingMiddleware(svc.Logger))
	if svc.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(svc.Metrics))
	}
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.AuthMiddleware(svc))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if svc.Metrics != nil {
		r.GET("/metrics", gin.WrapH(svc.Metrics.Handler()))
	}

	authz := svc.Authz
	requireAuth := middleware.RequireAuth()
	perm := func(app, modelName string) gin.HandlerFunc {
		return middleware.RequirePerm(authz, app, modelName)
	}

	// API v1
	v1 := r.Group("/api/v1")
	{
		v1.GET("/system/info", h.System.GetSystemInfo)

		// Auth 认证
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", h.Auth.Register)
			authGroup.POST("/login", h.Auth.Login)
			authGroup.POST("/refresh", h.Auth.RefreshToken)
			authGroup.POST("/logout", requireAuth, h.Auth.Logout)
			authGroup.GET("/me", requireAuth, h.Auth.GetCurrentUser)
			authGroup.POST("/change-password", requireAuth, h.Auth.ChangePassword)
		}

		// User 当前用户
		user := v1.Group("/user")
		{
			user.GET("/casl", h.User.GetCASL)
			user.GET("/favorites", requireAuth, h.List.GetFavorites)
			user.POST("/favorites/:name", requireAuth, h.List.AddFavorite)
			user.DELETE("/favorites/:name", requireAuth, h.List.RemoveFavorite)
			user.GET("/tokens", requireAuth, h.Auth.ListTokens)
			user.DELETE("/tokens/:id", requireAuth, h.Auth.RevokeToken)
		}

		// Tool 工具
		tools := v1.Group("/tools", perm(permissions.AppToolinfo, permissions.ModelTool))
		{
			tools.POST("", h.Tool.CreateTool)
			tools.GET("", h.Tool.ListTools)
			tools.GET("/:name", h.Tool.GetTool)
			tools.PUT("/:name", h.Tool.UpdateTool)
			tools.DELETE("/:name", h.Tool.DeleteTool)
			tools.GET("/:name/revisions", h.Tool.ListRevisions)
			tools.GET("/:name/revisions/:id", h.Tool.GetRevision)
			tools.GET("/:name/revisions/:id/diff/:other", h.Tool.DiffRevisions)
		}

		// List 工具列表
		lists := v1.Group("/lists", perm(permissions.AppLists, permissions.ModelToolList))
		{
			lists.POST("", h.List.CreateList)
			lists.GET("", h.List.ListLists)
			lists.GET("/:id", h.List.GetList)
			lists.PUT("/:id", h.List.UpdateList)
			lists.DELETE("/:id", h.List.DeleteList)
			lists.GET("/:id/revisions", h.List.ListRevisions)
			lists.GET("/:id/revisions/:rev", h.List.GetRevision)
			lists.GET("/:id/revisions/:rev/diff/:other", h.List.DiffRevisions)
		}

		// Search 搜索
		searchGroup := v1.Group("/search")
		{
			searchGroup.GET("/tools", h.Search.SearchTools)
			searchGroup.POST("/reindex", requireAuth, h.Search.Reindex)
		}

		// Users 用户
		users := v1.Group("/users", perm(permissions.AppUser, permissions.ModelUser))
		{
			users.GET("", h.User.ListUsers)
			users.GET("/:id", h.User.GetUser)
			users.PUT("/:id", h.User.UpdateUser)
			users.DELETE("/:id", h.User.DeleteUser)
		}

		// Groups 用户组
		groups := v1.Group("/groups", perm(permissions.AppAuth, permissions.ModelGroup))
		{
			groups.GET("", h.User.ListGroups)
			groups.POST("", h.User.CreateGroup)
			groups.GET("/:id", h.User.GetGroup)
			groups.PUT("/:id", h.User.RenameGroup)
			groups.DELETE("/:id", h.User.DeleteGroup)
			groups.GET("/:id/members", h.User.ListMembers)
			groups.PUT("/:id/members/:user_id", h.User.AddMember)
			groups.DELETE("/:id/members/:user_id", h.User.RemoveMember)
		}

		// Crawler 爬虫
		crawlerGroup := v1.Group("/crawler")
		{
			urls := crawlerGroup.Group("/urls", perm(permissions.AppCrawler, permissions.ModelURL))
			{
				urls.GET("", h.Crawler.ListURLs)
				urls.POST("", h.Crawler.AddURL)
				urls.GET("/:id", h.Crawler.GetURL)
				urls.PUT("/:id", h.Crawler.UpdateURL)
				urls.DELETE("/:id", h.Crawler.DeleteURL)
			}
			crawlerGroup.GET("/runs", h.Crawler.ListRuns)
			crawlerGroup.GET("/runs/:id", h.Crawler.GetRun)
			crawlerGroup.POST("/runs", requireAuth, h.Crawler.StartRun)
		}

		// Applications OAuth 应用
		apps := v1.Group("/applications", requireAuth, perm(permissions.AppOAuth, permissions.ModelApplication))
		{
			apps.GET("", h.Application.ListApplications)
			apps.POST("", h.Application.RegisterApplication)
			apps.GET("/:id", h.Application.GetApplication)
			apps.PUT("/:id", h.Application.UpdateApplication)
			apps.DELETE("/:id", h.Application.DeleteApplication)
		}
	}

	return r
}
