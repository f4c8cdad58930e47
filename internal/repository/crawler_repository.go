package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ashwinyue/toolhub/internal/model"
)

// CrawlerRepository 爬虫 URL 与运行记录数据访问
type CrawlerRepository struct {
	db *gorm.DB
}

// NewCrawlerRepository 创建爬虫仓库
func NewCrawlerRepository(db *gorm.DB) *CrawlerRepository {
	return &CrawlerRepository{db: db}
}

// ========== URL ==========

// CreateURL 登记 URL
func (r *CrawlerRepository) CreateURL(ctx context.Context, u *model.CrawlerURL) error {
	return r.db.WithContext(ctx).Omit("CreatedBy").Create(u).Error
}

// GetURL 获取 URL
func (r *CrawlerRepository) GetURL(ctx context.Context, id string) (*model.CrawlerURL, error) {
	var u model.CrawlerURL
	if err := r.db.WithContext(ctx).Preload("CreatedBy").Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// ListURLs 分页列出 URL
func (r *CrawlerRepository) ListURLs(ctx context.Context, offset, limit int) ([]*model.CrawlerURL, int64, error) {
	var (
		urls  []*model.CrawlerURL
		total int64
	)
	db := r.db.WithContext(ctx).Model(&model.CrawlerURL{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("CreatedBy").Order("url ASC").Offset(offset).Limit(limit).Find(&urls).Error
	return urls, total, err
}

// AllURLs 全部 URL（含创建者），供抓取使用
func (r *CrawlerRepository) AllURLs(ctx context.Context) ([]*model.CrawlerURL, error) {
	var urls []*model.CrawlerURL
	err := r.db.WithContext(ctx).Preload("CreatedBy").Preload("CreatedBy.Groups").Order("url ASC").Find(&urls).Error
	return urls, err
}

// UpdateURL 更新 URL
func (r *CrawlerRepository) UpdateURL(ctx context.Context, u *model.CrawlerURL) error {
	return r.db.WithContext(ctx).Omit("CreatedBy").Save(u).Error
}

// DeleteURL 删除 URL
func (r *CrawlerRepository) DeleteURL(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.CrawlerURL{}, "id = ?", id).Error
}

// ========== Run ==========

// CreateRun 创建运行记录
func (r *CrawlerRepository) CreateRun(ctx context.Context, run *model.CrawlerRun) error {
	return r.db.WithContext(ctx).Omit("URLs").Create(run).Error
}

// UpdateRun 更新运行统计
func (r *CrawlerRepository) UpdateRun(ctx context.Context, run *model.CrawlerRun) error {
	return r.db.WithContext(ctx).Omit("URLs").Save(run).Error
}

// CreateRunURL 记录单个 URL 的抓取结果
func (r *CrawlerRepository) CreateRunURL(ctx context.Context, ru *model.CrawlerRunURL) error {
	return r.db.WithContext(ctx).Omit("URL").Create(ru).Error
}

// GetRun 获取运行记录（含每个 URL 的结果）
func (r *CrawlerRepository) GetRun(ctx context.Context, id string) (*model.CrawlerRun, error) {
	var run model.CrawlerRun
	err := r.db.WithContext(ctx).Preload("URLs").Preload("URLs.URL").Where("id = ?", id).First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns 分页列出运行记录，最新在前
func (r *CrawlerRepository) ListRuns(ctx context.Context, offset, limit int) ([]*model.CrawlerRun, int64, error) {
	var (
		runs  []*model.CrawlerRun
		total int64
	)
	db := r.db.WithContext(ctx).Model(&model.CrawlerRun{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("start_date DESC").Offset(offset).Limit(limit).Find(&runs).Error
	return runs, total, err
}
