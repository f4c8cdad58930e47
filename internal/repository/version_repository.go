package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ashwinyue/toolhub/internal/model"
)

// VersionRepository 修订记录数据访问
type VersionRepository struct {
	db *gorm.DB
}

// NewVersionRepository 创建修订仓库
func NewVersionRepository(db *gorm.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

// Create 写入修订
func (r *VersionRepository) Create(ctx context.Context, v *model.Version) error {
	return r.db.WithContext(ctx).Omit("User").Create(v).Error
}

// GetByID 获取修订
func (r *VersionRepository) GetByID(ctx context.Context, contentType, objectID, id string) (*model.Version, error) {
	var v model.Version
	err := r.db.WithContext(ctx).Preload("User").
		Where("id = ? AND content_type = ? AND object_id = ?", id, contentType, objectID).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListForObject 对象的全部修订，最新在前
func (r *VersionRepository) ListForObject(ctx context.Context, contentType, objectID string, offset, limit int) ([]*model.Version, int64, error) {
	var (
		versions []*model.Version
		total    int64
	)
	db := r.db.WithContext(ctx).Model(&model.Version{}).
		Where("content_type = ? AND object_id = ?", contentType, objectID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("User").Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&versions).Error
	return versions, total, err
}
