// Package lists 工具列表与用户收藏
package lists

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ashwinyue/toolhub/internal/model"
	"github.com/ashwinyue/toolhub/internal/permissions"
	"github.com/ashwinyue/toolhub/internal/repository"
	"github.com/ashwinyue/toolhub/internal/service/version"
)

var (
	ErrNotFound     = errors.New("list not found")
	ErrForbidden    = errors.New("permission denied")
	ErrUnknownTools = errors.New("unknown tools")
	ErrFavorites    = errors.New("favorites list cannot be modified this way")
)

// FavoritesTitle 自动创建的收藏列表标题
const FavoritesTitle = "Favorites"

// CreateRequest 创建列表
type CreateRequest struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Published   bool     `json:"published"`
	Tools       []string `json:"tools"`
	Comment     string   `json:"comment"`
}

// UpdateRequest 更新列表，nil 字段保持不变
type UpdateRequest struct {
	Title       *string  `json:"title" binding:"omitempty,max=255"`
	Description *string  `json:"description"`
	Icon        *string  `json:"icon"`
	Published   *bool    `json:"published"`
	Tools       []string `json:"tools"`
	Comment     string   `json:"comment"`
}

// Service 列表服务
type Service struct {
	repo   *repository.Repositories
	authz  *permissions.Authorizer
	logger *logrus.Logger
}

// NewService 创建列表服务
func NewService(repo *repository.Repositories, authz *permissions.Authorizer, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{repo: repo, authz: authz, logger: logger}
}

// canEdit 创建者或管理员
func (s *Service) canEdit(user *model.User, list *model.ToolList) bool {
	return s.authz.Can(user, permissions.AppLists, permissions.ModelToolList, permissions.ActionChange, list)
}

// Get 获取列表，未发布的列表只对创建者与管理员可见
func (s *Service) Get(ctx context.Context, id string, viewer *model.User) (*model.ToolList, error) {
	list, err := s.repo.ToolList.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !list.Published && !s.canEdit(viewer, list) {
		return nil, ErrNotFound
	}
	return list, nil
}

// List 列出 viewer 可见的列表
func (s *Service) List(ctx context.Context, viewer *model.User, createdBy string, offset, limit int) ([]*model.ToolList, int64, error) {
	filter := repository.ToolListFilter{CreatedBy: createdBy}
	switch {
	case viewer == nil:
	case permissions.IsAdministrator.Test(viewer, nil):
		filter.All = true
	default:
		filter.ViewerID = viewer.ID
	}
	return s.repo.ToolList.List(ctx, filter, offset, limit)
}

// Create 创建列表
func (s *Service) Create(ctx context.Context, req *CreateRequest, user *model.User) (*model.ToolList, error) {
	if !s.authz.Can(user, permissions.AppLists, permissions.ModelToolList, permissions.ActionAdd, nil) {
		return nil, ErrForbidden
	}

	list := &model.ToolList{
		ID:           uuid.New().String(),
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Icon:         req.Icon,
		Published:    req.Published,
		CreatedByID:  user.ID,
		ModifiedByID: user.ID,
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repositories) error {
		tools, err := resolveTools(ctx, tx, req.Tools)
		if err != nil {
			return err
		}
		list.Tools = tools
		if err := tx.ToolList.Create(ctx, list); err != nil {
			return err
		}
		return version.Record(ctx, tx.Version, model.ContentTypeToolList, list.ID, list, user, commentOr(req.Comment, "Created"))
	})
	if err != nil {
		return nil, err
	}
	return s.repo.ToolList.GetByID(ctx, list.ID)
}

// Update 更新列表，需要 lists.change_toollist 对象权限
func (s *Service) Update(ctx context.Context, list *model.ToolList, req *UpdateRequest, user *model.User) (*model.ToolList, error) {
	if !s.canEdit(user, list) {
		return nil, ErrForbidden
	}
	if list.Favorites && req.Published != nil && *req.Published {
		return nil, ErrFavorites
	}

	if req.Title != nil {
		list.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		list.Description = *req.Description
	}
	if req.Icon != nil {
		list.Icon = *req.Icon
	}
	if req.Published != nil {
		list.Published = *req.Published
	}
	list.ModifiedByID = user.ID

	err := s.repo.Transaction(ctx, func(tx *repository.Repositories) error {
		var tools []model.Tool
		if req.Tools != nil {
			resolved, err := resolveTools(ctx, tx, req.Tools)
			if err != nil {
				return err
			}
			tools = resolved
			if tools == nil {
				tools = []model.Tool{}
			}
			list.Tools = tools
		}
		if err := tx.ToolList.Update(ctx, list, tools); err != nil {
			return err
		}
		return version.Record(ctx, tx.Version, model.ContentTypeToolList, list.ID, list, user, commentOr(req.Comment, "Updated"))
	})
	if err != nil {
		return nil, err
	}
	return s.repo.ToolList.GetByID(ctx, list.ID)
}

// Delete 软删除列表，收藏列表不能删除
func (s *Service) Delete(ctx context.Context, list *model.ToolList, user *model.User) error {
	if !s.authz.Can(user, permissions.AppLists, permissions.ModelToolList, permissions.ActionDelete, list) {
		return ErrForbidden
	}
	if list.Favorites {
		return ErrFavorites
	}
	return s.repo.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := version.Record(ctx, tx.Version, model.ContentTypeToolList, list.ID, list, user, "Deleted"); err != nil {
			return err
		}
		return tx.ToolList.Delete(ctx, list.ID)
	})
}

// Favorites 获取用户的收藏列表，不存在时创建
func (s *Service) Favorites(ctx context.Context, user *model.User) (*model.ToolList, error) {
	if user == nil {
		return nil, ErrForbidden
	}
	list, err := s.repo.ToolList.GetFavorites(ctx, user.ID)
	if err == nil {
		return list, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	list = &model.ToolList{
		ID:           uuid.New().String(),
		Title:        FavoritesTitle,
		Favorites:    true,
		CreatedByID:  user.ID,
		ModifiedByID: user.ID,
	}
	if err := s.repo.ToolList.Create(ctx, list); err != nil {
		// 并发请求已经创建了收藏列表
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.repo.ToolList.GetFavorites(ctx, user.ID)
		}
		return nil, fmt.Errorf("create favorites for %s: %w", user.Username, err)
	}
	return s.repo.ToolList.GetByID(ctx, list.ID)
}

// AddFavorite 把工具加入收藏，重复添加无副作用
func (s *Service) AddFavorite(ctx context.Context, user *model.User, toolName string) (*model.ToolList, error) {
	list, tool, err := s.favoriteAndTool(ctx, user, toolName)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ToolList.AddTool(ctx, list, tool); err != nil {
		return nil, err
	}
	return s.repo.ToolList.GetByID(ctx, list.ID)
}

// RemoveFavorite 从收藏中移除工具
func (s *Service) RemoveFavorite(ctx context.Context, user *model.User, toolName string) (*model.ToolList, error) {
	list, tool, err := s.favoriteAndTool(ctx, user, toolName)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ToolList.RemoveTool(ctx, list, tool); err != nil {
		return nil, err
	}
	return s.repo.ToolList.GetByID(ctx, list.ID)
}

func (s *Service) favoriteAndTool(ctx context.Context, user *model.User, toolName string) (*model.ToolList, *model.Tool, error) {
	list, err := s.Favorites(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	tool, err := s.repo.Tool.GetByName(ctx, toolName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%s: %w", toolName, ErrUnknownTools)
		}
		return nil, nil, err
	}
	return list, tool, nil
}

// resolveTools 按名称查找工具，任一名称不存在时返回 ErrUnknownTools
func resolveTools(ctx context.Context, repo *repository.Repositories, names []string) ([]model.Tool, error) {
	if len(names) == 0 {
		return nil, nil
	}

	unique := make(map[string]struct{}, len(names))
	for _, n := range names {
		unique[n] = struct{}{}
	}
	wanted := make([]string, 0, len(unique))
	for n := range unique {
		wanted = append(wanted, n)
	}

	tools, err := repo.Tool.GetByNames(ctx, wanted)
	if err != nil {
		return nil, err
	}
	if len(tools) != len(wanted) {
		for _, t := range tools {
			delete(unique, t.Name)
		}
		missing := make([]string, 0, len(unique))
		for n := range unique {
			missing = append(missing, n)
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("%s: %w", strings.Join(missing, ", "), ErrUnknownTools)
	}
	return tools, nil
}

func commentOr(comment, fallback string) string {
	if c := strings.TrimSpace(comment); c != "" {
		return c
	}
	return fallback
}
