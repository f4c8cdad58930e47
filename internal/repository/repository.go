package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories 仓库集合，用于统一管理所有仓库
type Repositories struct {
	DB          *gorm.DB // 直接访问数据库
	Auth        *AuthRepository
	Group       *GroupRepository
	Tool        *ToolRepository
	ToolList    *ToolListRepository
	Version     *VersionRepository
	Crawler     *CrawlerRepository
	Application *ApplicationRepository
}

// NewRepositories 创建所有仓库
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:          db,
		Auth:        NewAuthRepository(db),
		Group:       NewGroupRepository(db),
		Tool:        NewToolRepository(db),
		ToolList:    NewToolListRepository(db),
		Version:     NewVersionRepository(db),
		Crawler:     NewCrawlerRepository(db),
		Application: NewApplicationRepository(db),
	}
}

// Transaction 在同一事务中执行 fn，fn 收到的仓库集合绑定到该事务
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
