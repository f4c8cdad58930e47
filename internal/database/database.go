package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ashwinyue/toolhub/internal/config"
	"github.com/ashwinyue/toolhub/internal/model"
)

// DB 数据库封装
type DB struct {
	*gorm.DB
}

// Options 连接选项
type Options struct {
	// SkipMigrate 跳过自动迁移（migrate 子命令单独执行）
	SkipMigrate bool
}

// New 创建数据库连接
func New(cfg *config.Config, opts ...Options) (*DB, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}

	logLevel := gormlogger.Silent
	if cfg.App.Debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDSN()), GormConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database: %w", err)
	}

	// 连接池配置
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.MaxLifetime) * time.Second)

	// 健康检查
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	wrapped := &DB{DB: db}
	if !opt.SkipMigrate {
		if err := wrapped.Migrate(ctx); err != nil {
			return nil, err
		}
	}

	return wrapped, nil
}

// GormConfig 统一的 gorm 配置，唯一键冲突会被翻译为 gorm.ErrDuplicatedKey
// 创建者、修改者等引用允许为空，迁移时不建外键约束
func GormConfig(logLevel gormlogger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,

		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	}
}

// Migrate 自动迁移并写入内置用户组
func (db *DB) Migrate(ctx context.Context) error {
	if err := db.DB.WithContext(ctx).AutoMigrate(model.AllModels...); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	if err := ensureIndexes(ctx, db.DB); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	if err := SeedGroups(ctx, db.DB); err != nil {
		return fmt.Errorf("failed to seed groups: %w", err)
	}
	return nil
}

// partialIndexes AutoMigrate 无法表达的部分唯一索引，postgres 与 sqlite 语法相同
var partialIndexes = []string{
	// 每个用户最多一个收藏列表
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_tool_lists_favorites_owner
		ON tool_lists (created_by_id) WHERE favorites AND deleted_at IS NULL`,
}

func ensureIndexes(ctx context.Context, db *gorm.DB) error {
	for _, stmt := range partialIndexes {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedGroups 确保内置用户组存在
func SeedGroups(ctx context.Context, db *gorm.DB) error {
	for _, name := range model.DefaultGroups {
		var group model.Group
		err := db.WithContext(ctx).Where("name = ?", name).First(&group).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		group = model.Group{ID: uuid.New().String(), Name: name}
		if err := db.WithContext(ctx).Create(&group).Error; err != nil {
			return err
		}
	}
	return nil
}

// Close 关闭数据库连接
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping 检查数据库连接
func (db *DB) Ping(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
