package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ashwinyue/toolhub/internal/model"
)

// ApplicationRepository OAuth 应用数据访问
type ApplicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository 创建应用仓库
func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create 创建应用
func (r *ApplicationRepository) Create(ctx context.Context, app *model.Application) error {
	return r.db.WithContext(ctx).Omit("User").Create(app).Error
}

// GetByID 获取应用
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*model.Application, error) {
	var app model.Application
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// List 列出应用，userID 非空时只返回该用户的应用
func (r *ApplicationRepository) List(ctx context.Context, userID string) ([]*model.Application, error) {
	var apps []*model.Application
	db := r.db.WithContext(ctx)
	if userID != "" {
		db = db.Where("user_id = ?", userID)
	}
	err := db.Order("created_at DESC").Find(&apps).Error
	return apps, err
}

// Update 更新应用
func (r *ApplicationRepository) Update(ctx context.Context, app *model.Application) error {
	return r.db.WithContext(ctx).Omit("User").Save(app).Error
}

// Delete 删除应用
func (r *ApplicationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Application{}, "id = ?", id).Error
}
