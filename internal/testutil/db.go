// Package testutil 提供测试辅助工具
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ashwinyue/toolhub/internal/database"
	"github.com/ashwinyue/toolhub/internal/model"
)

// NewTestDB 创建已迁移的内存 sqlite 数据库，测试结束时关闭
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(gormlogger.Silent))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	// 内存库在单连接上运行，事务内的查询必须走同一个 tx
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	wrapped := &database.DB{DB: db}
	if err := wrapped.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser 创建用户并加入指定用户组，返回包含用户组的记录
func CreateUser(t *testing.T, db *gorm.DB, username string, groups ...string) *model.User {
	t.Helper()

	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        username + "@example.org",
		PasswordHash: "unused",
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}

	for _, name := range groups {
		var group model.Group
		if err := db.Where("name = ?", name).First(&group).Error; err != nil {
			t.Fatalf("find group %s: %v", name, err)
		}
		if err := db.Model(user).Association("Groups").Append(&group); err != nil {
			t.Fatalf("add %s to %s: %v", username, name, err)
		}
	}

	var loaded model.User
	if err := db.Preload("Groups").Where("id = ?", user.ID).First(&loaded).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return &loaded
}
