// Package search 工具检索：配置了 Elasticsearch 时使用索引，否则查询数据库
package search

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ashwinyue/toolhub/internal/model"
	"github.com/ashwinyue/toolhub/internal/repository"
)

// Engine 检索后端
type Engine interface {
	Put(ctx context.Context, tool *model.Tool) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, query string, offset, limit int) (*Hits, error)
}

// Result 检索结果
type Result struct {
	Tools   []*model.Tool `json:"tools"`
	Total   int64         `json:"total"`
	Backend string        `json:"backend"`
}

// 检索后端名称
const (
	BackendElastic  = "elasticsearch"
	BackendDatabase = "database"
)

// Service 检索服务，同时作为工具写入后的索引器
type Service struct {
	repo   *repository.Repositories
	engine Engine
	logger *logrus.Logger
}

// NewService 创建检索服务，engine 为 nil 时只使用数据库
func NewService(repo *repository.Repositories, engine Engine, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{repo: repo, engine: engine, logger: logger}
}

// Indexed 是否配置了搜索引擎
func (s *Service) Indexed() bool {
	return s.engine != nil
}

// IndexTool 写入索引
func (s *Service) IndexTool(ctx context.Context, tool *model.Tool) error {
	if s.engine == nil {
		return nil
	}
	return s.engine.Put(ctx, tool)
}

// DeleteTool 从索引删除
func (s *Service) DeleteTool(ctx context.Context, id string) error {
	if s.engine == nil {
		return nil
	}
	return s.engine.Remove(ctx, id)
}

// Search 检索工具，索引不可用时退回数据库查询
func (s *Service) Search(ctx context.Context, query string, offset, limit int) (*Result, error) {
	query = strings.TrimSpace(query)

	if s.engine != nil {
		result, err := s.searchIndex(ctx, query, offset, limit)
		if err == nil {
			return result, nil
		}
		s.logger.WithError(err).WithField("query", query).Warn("search index unavailable, falling back to database")
	}

	tools, total, err := s.repo.Tool.Search(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	return &Result{Tools: tools, Total: total, Backend: BackendDatabase}, nil
}

func (s *Service) searchIndex(ctx context.Context, query string, offset, limit int) (*Result, error) {
	hits, err := s.engine.Search(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}

	tools := make([]*model.Tool, 0, len(hits.IDs))
	for _, id := range hits.IDs {
		tool, err := s.repo.Tool.GetByID(ctx, id)
		if err != nil {
			// 索引可能滞后于数据库
			s.logger.WithError(err).WithField("tool_id", id).Debug("skipping stale search hit")
			continue
		}
		tools = append(tools, tool)
	}
	return &Result{Tools: tools, Total: hits.Total, Backend: BackendElastic}, nil
}

// Reindex 把数据库中的全部工具写入索引，返回写入数量
func (s *Service) Reindex(ctx context.Context) (int, error) {
	if s.engine == nil {
		return 0, nil
	}
	tools, err := s.repo.Tool.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, tool := range tools {
		if err := s.engine.Put(ctx, tool); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
