package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ashwinyue/toolhub/internal/model"
)

// AuthRepository 用户与令牌数据访问
type AuthRepository struct {
	db *gorm.DB
}

// NewAuthRepository 创建认证仓库
func NewAuthRepository(db *gorm.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

// CreateUser 创建用户
func (r *AuthRepository) CreateUser(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit("Groups.*").Create(user).Error
}

// GetUserByID 获取用户（含用户组）
func (r *AuthRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return r.findUser(ctx, "id = ?", id)
}

// GetUserByEmail 获取用户
func (r *AuthRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findUser(ctx, "email = ?", email)
}

// GetUserByUsername 获取用户
func (r *AuthRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findUser(ctx, "username = ?", username)
}

func (r *AuthRepository) findUser(ctx context.Context, query string, arg any) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Preload("Groups").Where(query, arg).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers 分页列出用户
func (r *AuthRepository) ListUsers(ctx context.Context, offset, limit int) ([]*model.User, int64, error) {
	var (
		users []*model.User
		total int64
	)
	db := r.db.WithContext(ctx).Model(&model.User{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("Groups").Order("username ASC").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}

// UpdateUser 更新用户字段，不修改用户组关系
func (r *AuthRepository) UpdateUser(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit("Groups").Save(user).Error
}

// ReplaceGroups 替换用户所属的用户组
func (r *AuthRepository) ReplaceGroups(ctx context.Context, user *model.User, groups []model.Group) error {
	return r.db.WithContext(ctx).Model(user).Omit("Groups.*").Association("Groups").Replace(groups)
}

// DeleteUser 删除用户及其令牌与组关系
func (r *AuthRepository) DeleteUser(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := &model.User{ID: id}
		if err := tx.Model(user).Association("Groups").Clear(); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.AuthToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
}

// CreateToken 创建令牌
func (r *AuthRepository) CreateToken(ctx context.Context, token *model.AuthToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// GetTokenByValue 获取未撤销且未过期的令牌
func (r *AuthRepository) GetTokenByValue(ctx context.Context, tokenValue string) (*model.AuthToken, error) {
	var token model.AuthToken
	err := r.db.WithContext(ctx).
		Where("token = ? AND is_revoked = ?", tokenValue, false).
		Where("expires_at > ?", time.Now()).
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// GetTokenByID 获取令牌
func (r *AuthRepository) GetTokenByID(ctx context.Context, id string) (*model.AuthToken, error) {
	var token model.AuthToken
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// GetTokensByUserID 获取用户的所有令牌
func (r *AuthRepository) GetTokensByUserID(ctx context.Context, userID string) ([]*model.AuthToken, error) {
	var tokens []*model.AuthToken
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&tokens).Error
	return tokens, err
}

// RevokeToken 撤销令牌
func (r *AuthRepository) RevokeToken(ctx context.Context, tokenID string) error {
	return r.db.WithContext(ctx).Model(&model.AuthToken{}).Where("id = ?", tokenID).Update("is_revoked", true).Error
}

// RevokeTokensByUserID 撤销用户的所有令牌
func (r *AuthRepository) RevokeTokensByUserID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&model.AuthToken{}).Where("user_id = ?", userID).Update("is_revoked", true).Error
}

// DeleteExpiredTokens 删除过期令牌
func (r *AuthRepository) DeleteExpiredTokens(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("expires_at < ? OR is_revoked = ?", time.Now(), true).Delete(&model.AuthToken{}).Error
}
