// Package users 用户与用户组管理
package users

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ashwinyue/toolhub/internal/model"
	"github.com/ashwinyue/toolhub/internal/permissions"
	"github.com/ashwinyue/toolhub/internal/repository"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("permission denied")
	ErrBuiltinGroup  = errors.New("built-in groups cannot be renamed or deleted")
	ErrUnknownGroups = errors.New("unknown groups")
)

// Invalidator 在用户权限变化时清理缓存的 CASL 规则
type Invalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

// ChangeRequest 用户修改表单，nil 字段保持不变
// IsActive 与 Groups 只有管理员可以修改
type ChangeRequest struct {
	Email    *string  `json:"email" binding:"omitempty,email"`
	IsActive *bool    `json:"is_active"`
	Groups   []string `json:"groups"`
}

// GroupRequest 用户组表单
type GroupRequest struct {
	Name string `json:"name" binding:"required,max=150"`
}

// Service 用户服务
type Service struct {
	repo        *repository.Repositories
	authz       *permissions.Authorizer
	invalidator Invalidator
	logger      *logrus.Logger
}

// NewService 创建用户服务，invalidator 可以为 nil
func NewService(repo *repository.Repositories, authz *permissions.Authorizer, invalidator Invalidator, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{repo: repo, authz: authz, invalidator: invalidator, logger: logger}
}

// ========== 用户 ==========

// List 分页列出用户
func (s *Service) List(ctx context.Context, offset, limit int) ([]*model.User, int64, error) {
	return s.repo.Auth.ListUsers(ctx, offset, limit)
}

// Get 获取用户
func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.Auth.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// Update 修改用户，需要 user.change_toolhubuser 对象权限
func (s *Service) Update(ctx context.Context, target *model.User, req *ChangeRequest, actor *model.User) (*model.User, error) {
	if !s.authz.Can(actor, permissions.AppUser, permissions.ModelUser, permissions.ActionChange, target) {
		return nil, ErrForbidden
	}
	if (req.IsActive != nil || req.Groups != nil) && !permissions.IsAdministrator.Test(actor, nil) {
		return nil, ErrForbidden
	}

	if req.Email != nil {
		target.Email = strings.TrimSpace(*req.Email)
	}
	if req.IsActive != nil {
		target.IsActive = *req.IsActive
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Auth.UpdateUser(ctx, target); err != nil {
			return err
		}
		if req.Groups == nil {
			return nil
		}
		groups, err := resolveGroups(ctx, tx, req.Groups)
		if err != nil {
			return err
		}
		return tx.Auth.ReplaceGroups(ctx, target, groups)
	})
	if err != nil {
		return nil, err
	}

	if req.Groups != nil || req.IsActive != nil {
		s.invalidate(ctx, target.ID)
	}
	return s.Get(ctx, target.ID)
}

// Delete 删除用户，需要 user.delete_toolhubuser 对象权限
func (s *Service) Delete(ctx context.Context, target *model.User, actor *model.User) error {
	if !s.authz.Can(actor, permissions.AppUser, permissions.ModelUser, permissions.ActionDelete, target) {
		return ErrForbidden
	}
	if err := s.repo.Auth.DeleteUser(ctx, target.ID); err != nil {
		return err
	}
	s.invalidate(ctx, target.ID)
	return nil
}

// ========== 用户组 ==========

// ListGroups 列出用户组
func (s *Service) ListGroups(ctx context.Context) ([]*model.Group, error) {
	return s.repo.Group.List(ctx)
}

// GetGroup 获取用户组
func (s *Service) GetGroup(ctx context.Context, id string) (*model.Group, error) {
	group, err := s.repo.Group.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return group, nil
}

// CreateGroup 创建用户组
func (s *Service) CreateGroup(ctx context.Context, req *GroupRequest, actor *model.User) (*model.Group, error) {
	if !s.authz.Can(actor, permissions.AppAuth, permissions.ModelGroup, permissions.ActionAdd, nil) {
		return nil, ErrForbidden
	}
	group := &model.Group{ID: uuid.New().String(), Name: strings.TrimSpace(req.Name)}
	if err := s.repo.Group.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("create group %q: %w", group.Name, err)
	}
	return group, nil
}

// RenameGroup 重命名用户组
func (s *Service) RenameGroup(ctx context.Context, group *model.Group, req *GroupRequest, actor *model.User) (*model.Group, error) {
	if !s.authz.Can(actor, permissions.AppAuth, permissions.ModelGroup, permissions.ActionChange, group) {
		return nil, ErrForbidden
	}
	if slices.Contains(model.DefaultGroups, group.Name) {
		return nil, ErrBuiltinGroup
	}
	group.Name = strings.TrimSpace(req.Name)
	if err := s.repo.Group.Update(ctx, group); err != nil {
		return nil, fmt.Errorf("rename group: %w", err)
	}
	s.invalidateMembers(ctx, group.ID)
	return group, nil
}

// DeleteGroup 删除用户组
func (s *Service) DeleteGroup(ctx context.Context, group *model.Group, actor *model.User) error {
	if !s.authz.Can(actor, permissions.AppAuth, permissions.ModelGroup, permissions.ActionDelete, group) {
		return ErrForbidden
	}
	if slices.Contains(model.DefaultGroups, group.Name) {
		return ErrBuiltinGroup
	}
	members, err := s.repo.Group.Members(ctx, group.ID)
	if err != nil {
		return err
	}
	if err := s.repo.Group.Delete(ctx, group.ID); err != nil {
		return err
	}
	for _, m := range members {
		s.invalidate(ctx, m.ID)
	}
	return nil
}

// Members 用户组成员
func (s *Service) Members(ctx context.Context, group *model.Group) ([]*model.User, error) {
	return s.repo.Group.Members(ctx, group.ID)
}

// AddMember 把用户加入用户组
func (s *Service) AddMember(ctx context.Context, group *model.Group, userID string, actor *model.User) error {
	return s.changeMembership(ctx, group, userID, actor, s.repo.Group.AddMember)
}

// RemoveMember 把用户移出用户组
func (s *Service) RemoveMember(ctx context.Context, group *model.Group, userID string, actor *model.User) error {
	return s.changeMembership(ctx, group, userID, actor, s.repo.Group.RemoveMember)
}

func (s *Service) changeMembership(ctx context.Context, group *model.Group, userID string, actor *model.User,
	apply func(context.Context, *model.User, *model.Group) error) error {
	if !s.authz.Can(actor, permissions.AppAuth, permissions.ModelGroup, permissions.ActionChange, group) {
		return ErrForbidden
	}
	// 内置组决定权限，成员只能由管理员调整，与 Update 修改 Groups 一致
	if slices.Contains(model.DefaultGroups, group.Name) && !permissions.IsAdministrator.Test(actor, nil) {
		return ErrForbidden
	}
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := apply(ctx, user, group); err != nil {
		return err
	}
	s.invalidate(ctx, user.ID)
	return nil
}

func (s *Service) invalidateMembers(ctx context.Context, groupID string) {
	members, err := s.repo.Group.Members(ctx, groupID)
	if err != nil {
		s.logger.WithError(err).WithField("group", groupID).Warn("failed to load group members")
		return
	}
	for _, m := range members {
		s.invalidate(ctx, m.ID)
	}
}

// invalidate 缓存失效失败只记录日志，缓存条目会按 TTL 过期
func (s *Service) invalidate(ctx context.Context, userID string) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, userID); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("failed to invalidate casl cache")
	}
}

func resolveGroups(ctx context.Context, repo *repository.Repositories, names []string) ([]model.Group, error) {
	groups := make([]model.Group, 0, len(names))
	var missing []string
	for _, name := range names {
		g, err := repo.Group.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				missing = append(missing, name)
				continue
			}
			return nil, err
		}
		groups = append(groups, *g)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(missing, ", "), ErrUnknownGroups)
	}
	return groups, nil
}
