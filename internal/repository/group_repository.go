package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ashwinyue/toolhub/internal/model"
)

// GroupRepository 用户组数据访问
type GroupRepository struct {
	db *gorm.DB
}

// NewGroupRepository 创建用户组仓库
func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create 创建用户组
func (r *GroupRepository) Create(ctx context.Context, group *model.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

// GetByID 获取用户组
func (r *GroupRepository) GetByID(ctx context.Context, id string) (*model.Group, error) {
	var group model.Group
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// GetByName 按名称获取用户组
func (r *GroupRepository) GetByName(ctx context.Context, name string) (*model.Group, error) {
	var group model.Group
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// List 列出全部用户组
func (r *GroupRepository) List(ctx context.Context) ([]*model.Group, error) {
	var groups []*model.Group
	err := r.db.WithContext(ctx).Order("name ASC").Find(&groups).Error
	return groups, err
}

// Update 更新用户组
func (r *GroupRepository) Update(ctx context.Context, group *model.Group) error {
	return r.db.WithContext(ctx).Save(group).Error
}

// Delete 删除用户组及成员关系
func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group := &model.Group{ID: id}
		if err := tx.Exec("DELETE FROM user_groups WHERE group_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(group).Error
	})
}

// Members 用户组成员
func (r *GroupRepository) Members(ctx context.Context, groupID string) ([]*model.User, error) {
	var users []*model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN user_groups ON user_groups.user_id = users.id").
		Where("user_groups.group_id = ?", groupID).
		Order("users.username ASC").
		Find(&users).Error
	return users, err
}

// AddMember 添加成员
func (r *GroupRepository) AddMember(ctx context.Context, user *model.User, group *model.Group) error {
	return r.db.WithContext(ctx).Model(user).Association("Groups").Append(group)
}

// RemoveMember 移除成员
func (r *GroupRepository) RemoveMember(ctx context.Context, user *model.User, group *model.Group) error {
	return r.db.WithContext(ctx).Model(user).Association("Groups").Delete(group)
}
