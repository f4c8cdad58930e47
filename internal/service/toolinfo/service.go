// Package toolinfo 工具目录：toolinfo 记录的校验、规范化与写入
package toolinfo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ashwinyue/toolhub/internal/metrics"
	"github.com/ashwinyue/toolhub/internal/model"
	"github.com/ashwinyue/toolhub/internal/repository"
	"github.com/ashwinyue/toolhub/internal/service/version"
)

// Indexer 搜索索引
type Indexer interface {
	IndexTool(ctx context.Context, tool *model.Tool) error
	DeleteTool(ctx context.Context, id string) error
}

// Service 工具服务
type Service struct {
	repo      *repository.Repositories
	validator *Validator
	indexer   Indexer
	metrics   *metrics.Metrics
	logger    *logrus.Logger
}

// NewService 创建工具服务，indexer 与 m 可以为 nil
func NewService(repo *repository.Repositories, indexer Indexer, m *metrics.Metrics, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		repo:      repo,
		validator: MustValidator(),
		indexer:   indexer,
		metrics:   m,
		logger:    logger,
	}
}

// Validate 按 toolinfo schema 校验记录
func (s *Service) Validate(record any) error {
	return s.validator.Validate(record)
}

// FromToolInfo 按 slug 创建或更新工具
// 返回值 created/updated 区分新建、更新与无变化；已存在记录的 origin 不同时返回 invariant 错误，记录保持不变
func (s *Service) FromToolInfo(ctx context.Context, record map[string]any, user *model.User, origin string) (tool *model.Tool, created, updated bool, err error) {
	defer func() {
		s.metrics.RecordUpsert(origin, created, updated, err)
	}()

	if origin != model.OriginCrawler && origin != model.OriginAPI {
		return nil, false, false, &ValidationError{Field: "origin", Code: CodeInvalid, Message: fmt.Sprintf("unknown origin %q", origin)}
	}
	if user == nil || user.ID == "" {
		return nil, false, false, &ValidationError{Field: "user", Code: CodeInvalid, Message: "an acting user is required"}
	}
	if err := s.validator.Validate(record); err != nil {
		return nil, false, false, err
	}

	candidate := Normalize(record)
	if candidate.Name == "" {
		return nil, false, false, &ValidationError{Field: "name", Code: CodeInvalid, Message: "name has no usable characters"}
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repositories) error {
		existing, err := tx.Tool.GetByNameUnscoped(ctx, candidate.Name)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			tool = candidate
			tool.ID = uuid.New().String()
			tool.Origin = origin
			tool.CreatedByID = user.ID
			tool.ModifiedByID = user.ID
			if err := tx.Tool.Create(ctx, tool); err != nil {
				return err
			}
			created = true
		case err != nil:
			return err
		default:
			if existing.Origin != origin {
				return &ValidationError{
					Field:   "origin",
					Code:    CodeInvariant,
					Message: fmt.Sprintf("origin of %q is %s and cannot be changed to %s", existing.Name, existing.Origin, origin),
				}
			}
			if sameContent(existing, candidate) && !existing.DeletedAt.Valid {
				tool = existing
				return nil
			}
			restored := existing.DeletedAt.Valid
			applyContent(existing, candidate)
			if restored {
				existing.CreatedByID = user.ID
			}
			existing.ModifiedByID = user.ID
			if err := tx.Tool.Save(ctx, existing); err != nil {
				return err
			}
			tool = existing
			updated = true
		}

		comment := "Updated from toolinfo"
		if created {
			comment = "Created from toolinfo"
		}
		return version.Record(ctx, tx.Version, model.ContentTypeTool, tool.ID, tool, user, comment)
	})
	if err != nil {
		return nil, false, false, err
	}

	if created || updated {
		tool.ModifiedBy = user
		if tool.CreatedByID == user.ID {
			tool.CreatedBy = user
		}
		s.index(ctx, tool)
	}

	return tool, created, updated, nil
}

// Create 通过 API 新建工具，同名工具已存在时返回 ErrToolExists
func (s *Service) Create(ctx context.Context, record map[string]any, user *model.User) (*model.Tool, error) {
	if name, _ := record["name"].(string); name != "" {
		// 已软删除的同名工具由 FromToolInfo 恢复
		if _, err := s.repo.Tool.GetByName(ctx, NameToSlug(name)); err == nil {
			return nil, fmt.Errorf("%s: %w", NameToSlug(name), ErrToolExists)
		}
	}
	tool, _, _, err := s.FromToolInfo(ctx, record, user, model.OriginAPI)
	return tool, err
}

// Update 通过 API 更新工具，爬虫管理的工具不能通过 API 修改
func (s *Service) Update(ctx context.Context, tool *model.Tool, record map[string]any, user *model.User) (*model.Tool, bool, error) {
	if err := apiManaged(tool); err != nil {
		return nil, false, err
	}

	// 名称由 URL 决定，不允许通过记录修改
	payload := make(map[string]any, len(record)+1)
	for k, v := range record {
		payload[k] = v
	}
	payload["name"] = tool.Name

	updated, _, changed, err := s.FromToolInfo(ctx, payload, user, model.OriginAPI)
	return updated, changed, err
}

// Get 按名称获取工具
func (s *Service) Get(ctx context.Context, name string) (*model.Tool, error) {
	tool, err := s.repo.Tool.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return tool, nil
}

// List 分页列出工具
func (s *Service) List(ctx context.Context, filter repository.ToolFilter, offset, limit int) ([]*model.Tool, int64, error) {
	return s.repo.Tool.List(ctx, filter, offset, limit)
}

// Delete 软删除工具并移出搜索索引，爬虫管理的工具不能通过 API 删除
func (s *Service) Delete(ctx context.Context, tool *model.Tool, user *model.User) error {
	if err := apiManaged(tool); err != nil {
		return err
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := version.Record(ctx, tx.Version, model.ContentTypeTool, tool.ID, tool, user, "Deleted"); err != nil {
			return err
		}
		return tx.Tool.Delete(ctx, tool.ID)
	})
	if err != nil {
		return err
	}

	if s.indexer != nil {
		if err := s.indexer.DeleteTool(ctx, tool.ID); err != nil {
			s.logger.WithError(err).WithField("tool", tool.Name).Warn("failed to remove tool from search index")
		}
	}
	return nil
}

func apiManaged(tool *model.Tool) error {
	if tool.Origin == model.OriginAPI {
		return nil
	}
	return &ValidationError{
		Field:   "origin",
		Code:    CodeInvariant,
		Message: fmt.Sprintf("%q is managed by the crawler and cannot be edited", tool.Name),
	}
}

// index 索引失败不影响写入结果
func (s *Service) index(ctx context.Context, tool *model.Tool) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexTool(ctx, tool); err != nil {
		s.logger.WithError(err).WithField("tool", tool.Name).Warn("failed to index tool")
	}
}
