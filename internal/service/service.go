package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ashwinyue/toolhub/internal/config"
	"github.com/ashwinyue/toolhub/internal/metrics"
	"github.com/ashwinyue/toolhub/internal/permissions"
	"github.com/ashwinyue/toolhub/internal/repository"
	"github.com/ashwinyue/toolhub/internal/service/applications"
	"github.com/ashwinyue/toolhub/internal/service/auth"
	"github.com/ashwinyue/toolhub/internal/service/casl"
	"github.com/ashwinyue/toolhub/internal/service/crawler"
	"github.com/ashwinyue/toolhub/internal/service/lists"
	"github.com/ashwinyue/toolhub/internal/service/search"
	"github.com/ashwinyue/toolhub/internal/service/toolinfo"
	"github.com/ashwinyue/toolhub/internal/service/users"
	"github.com/ashwinyue/toolhub/internal/service/version"
)

// Services 服务集合
type Services struct {
	// 业务服务
	Auth         *auth.Service
	Tools        *toolinfo.Service
	Versions     *version.Service
	Lists        *lists.Service
	Users        *users.Service
	Applications *applications.Service
	Search       *search.Service
	CrawlerURLs  *crawler.Service
	Crawler      *crawler.Crawler
	CASL         *casl.Cache

	// 共享依赖
	Config  *config.Config
	Authz   *permissions.Authorizer
	Metrics *metrics.Metrics
	Logger  *logrus.Logger
}

// Deps 可选的外部依赖，nil 表示未配置
type Deps struct {
	Redis *redis.Client
	Index *search.Index
}

// NewServices 创建所有服务
// Authorizer 在这里构造一次，之后只读地注入到各个服务
func NewServices(repo *repository.Repositories, cfg *config.Config, deps Deps, m *metrics.Metrics, logger *logrus.Logger) *Services {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	authz := permissions.NewDefault()

	var engine search.Engine
	if deps.Index != nil {
		engine = deps.Index
	}
	searchSvc := search.NewService(repo, engine, logger)
	tools := toolinfo.NewService(repo, searchSvc, m, logger)
	caslCache := casl.NewCache(authz, deps.Redis, cfg.Redis.CacheTTL(), m, logger)

	return &Services{
		Auth:         auth.NewService(repo, cfg.Auth),
		Tools:        tools,
		Versions:     version.NewService(repo),
		Lists:        lists.NewService(repo, authz, logger),
		Users:        users.NewService(repo, authz, caslCache, logger),
		Applications: applications.NewService(repo, authz),
		Search:       searchSvc,
		CrawlerURLs:  crawler.NewService(repo, authz),
		Crawler:      crawler.New(repo, tools, cfg.Crawler, m, logger),
		CASL:         caslCache,

		Config:  cfg,
		Authz:   authz,
		Metrics: m,
		Logger:  logger,
	}
}

// NewRedisClient 创建 Redis 客户端，未配置或无法连接时返回 nil
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, logger *logrus.Logger) *redis.Client {
	if !cfg.Enabled() {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).Warn("redis unavailable, casl rules will not be cached")
		_ = client.Close()
		return nil
	}
	return client
}

// NewSearchIndex 创建 Elasticsearch 索引，未配置或不可用时返回 nil
func NewSearchIndex(ctx context.Context, cfg config.ElasticConfig, logger *logrus.Logger) *search.Index {
	if !cfg.Enabled() {
		return nil
	}
	idx, err := search.NewIndex(cfg)
	if err != nil {
		logger.WithError(err).Warn("failed to create search index client, using database search")
		return nil
	}
	if err := idx.EnsureIndex(ctx); err != nil {
		logger.WithError(err).Warn("search index unavailable, using database search")
		return nil
	}
	return idx
}
