package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ashwinyue/toolhub/internal/model"
)

// ToolListFilter 列表过滤条件
type ToolListFilter struct {
	// ViewerID 非空时额外包含该用户自己的未发布列表
	ViewerID string
	// All 包含全部未发布列表（管理员）
	All       bool
	CreatedBy string
}

// ToolListRepository 工具列表数据访问
type ToolListRepository struct {
	db *gorm.DB
}

// NewToolListRepository 创建工具列表仓库
func NewToolListRepository(db *gorm.DB) *ToolListRepository {
	return &ToolListRepository{db: db}
}

// Create 创建列表并写入工具关系
func (r *ToolListRepository) Create(ctx context.Context, list *model.ToolList) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tools := list.Tools
		if err := tx.Omit(clause.Associations).Create(list).Error; err != nil {
			return err
		}
		if len(tools) == 0 {
			return nil
		}
		return tx.Model(list).Omit("Tools.*").Association("Tools").Replace(tools)
	})
}

// GetByID 获取列表（含工具与创建者）
func (r *ToolListRepository) GetByID(ctx context.Context, id string) (*model.ToolList, error) {
	var list model.ToolList
	err := r.preloaded(ctx).Where("id = ?", id).First(&list).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// GetFavorites 获取用户的收藏列表
func (r *ToolListRepository) GetFavorites(ctx context.Context, userID string) (*model.ToolList, error) {
	var list model.ToolList
	err := r.preloaded(ctx).
		Where("created_by_id = ? AND favorites = ?", userID, true).
		First(&list).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// List 分页列出可见列表，收藏列表不出现在公共列表中
func (r *ToolListRepository) List(ctx context.Context, filter ToolListFilter, offset, limit int) ([]*model.ToolList, int64, error) {
	var (
		lists []*model.ToolList
		total int64
	)
	db := r.db.WithContext(ctx).Model(&model.ToolList{}).Where("favorites = ?", false)
	switch {
	case filter.All:
	case filter.ViewerID != "":
		db = db.Where("published = ? OR created_by_id = ?", true, filter.ViewerID)
	default:
		db = db.Where("published = ?", true)
	}
	if filter.CreatedBy != "" {
		db = db.Where("created_by_id = ?", filter.CreatedBy)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("Tools").Preload("CreatedBy").
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&lists).Error
	return lists, total, err
}

// Update 更新列表字段，tools 非 nil 时替换工具关系
func (r *ToolListRepository) Update(ctx context.Context, list *model.ToolList, tools []model.Tool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(list).Error; err != nil {
			return err
		}
		if tools == nil {
			return nil
		}
		return tx.Model(list).Omit("Tools.*").Association("Tools").Replace(tools)
	})
}

// AddTool 向列表添加工具
func (r *ToolListRepository) AddTool(ctx context.Context, list *model.ToolList, tool *model.Tool) error {
	return r.db.WithContext(ctx).Model(list).Omit("Tools.*").Association("Tools").Append(tool)
}

// RemoveTool 从列表移除工具
func (r *ToolListRepository) RemoveTool(ctx context.Context, list *model.ToolList, tool *model.Tool) error {
	return r.db.WithContext(ctx).Model(list).Association("Tools").Delete(tool)
}

// Delete 软删除列表
func (r *ToolListRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.ToolList{}, "id = ?", id).Error
}

func (r *ToolListRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Tools", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("CreatedBy").
		Preload("ModifiedBy")
}
