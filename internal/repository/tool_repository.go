package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ashwinyue/toolhub/internal/model"
)

// ToolFilter 工具列表过滤条件
type ToolFilter struct {
	Origin    string
	CreatedBy string
}

// ToolRepository 工具数据访问
type ToolRepository struct {
	db *gorm.DB
}

// NewToolRepository 创建工具仓库
func NewToolRepository(db *gorm.DB) *ToolRepository {
	return &ToolRepository{db: db}
}

// Create 创建工具
func (r *ToolRepository) Create(ctx context.Context, tool *model.Tool) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(tool).Error
}

// GetByID 获取工具
func (r *ToolRepository) GetByID(ctx context.Context, id string) (*model.Tool, error) {
	var tool model.Tool
	err := r.withUsers(ctx).Where("id = ?", id).First(&tool).Error
	if err != nil {
		return nil, err
	}
	return &tool, nil
}

// GetByName 获取工具
func (r *ToolRepository) GetByName(ctx context.Context, name string) (*model.Tool, error) {
	var tool model.Tool
	err := r.withUsers(ctx).Where("name = ?", name).First(&tool).Error
	if err != nil {
		return nil, err
	}
	return &tool, nil
}

// GetByNameUnscoped 获取工具，包括已软删除的记录
func (r *ToolRepository) GetByNameUnscoped(ctx context.Context, name string) (*model.Tool, error) {
	var tool model.Tool
	err := r.db.WithContext(ctx).Unscoped().Where("name = ?", name).First(&tool).Error
	if err != nil {
		return nil, err
	}
	return &tool, nil
}

// GetByNames 按名称批量获取
func (r *ToolRepository) GetByNames(ctx context.Context, names []string) ([]model.Tool, error) {
	var tools []model.Tool
	if len(names) == 0 {
		return tools, nil
	}
	err := r.db.WithContext(ctx).Where("name IN ?", names).Order("name ASC").Find(&tools).Error
	return tools, err
}

// List 分页列出工具
func (r *ToolRepository) List(ctx context.Context, filter ToolFilter, offset, limit int) ([]*model.Tool, int64, error) {
	var (
		tools []*model.Tool
		total int64
	)
	db := r.db.WithContext(ctx).Model(&model.Tool{})
	if filter.Origin != "" {
		db = db.Where("origin = ?", filter.Origin)
	}
	if filter.CreatedBy != "" {
		db = db.Where("created_by_id = ?", filter.CreatedBy)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("CreatedBy").Preload("ModifiedBy").
		Order("name ASC").Offset(offset).Limit(limit).Find(&tools).Error
	return tools, total, err
}

// ListAll 列出全部工具，用于重建搜索索引
func (r *ToolRepository) ListAll(ctx context.Context) ([]*model.Tool, error) {
	var tools []*model.Tool
	err := r.db.WithContext(ctx).Order("name ASC").Find(&tools).Error
	return tools, err
}

// Search 在名称、标题、描述中做不区分大小写的子串匹配
func (r *ToolRepository) Search(ctx context.Context, query string, offset, limit int) ([]*model.Tool, int64, error) {
	var (
		tools []*model.Tool
		total int64
	)
	pattern := "%" + strings.ToLower(query) + "%"
	db := r.db.WithContext(ctx).Model(&model.Tool{}).
		Where("LOWER(name) LIKE ? OR LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern, pattern)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("name ASC").Offset(offset).Limit(limit).Find(&tools).Error
	return tools, total, err
}

// Save 保存全部字段（包括软删除标记）
func (r *ToolRepository) Save(ctx context.Context, tool *model.Tool) error {
	return r.db.WithContext(ctx).Unscoped().Omit(clause.Associations).Save(tool).Error
}

// Delete 软删除工具
func (r *ToolRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Tool{}, "id = ?", id).Error
}

// Count 工具总数
func (r *ToolRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Tool{}).Count(&total).Error
	return total, err
}

func (r *ToolRepository) withUsers(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("CreatedBy").Preload("ModifiedBy")
}
