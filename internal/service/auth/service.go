package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ashwinyue/toolhub/internal/config"
	"github.com/ashwinyue/toolhub/internal/model"
	"github.com/ashwinyue/toolhub/internal/repository"
)

// 令牌类型
const (
	TokenTypeAccess  = "access_token"
	TokenTypeRefresh = "refresh_token"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token is revoked")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidPassword    = errors.New("invalid old password")
)

// Service 认证服务
type Service struct {
	repo       *repository.Repositories
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService 创建认证服务
func NewService(repo *repository.Repositories, cfg config.AuthConfig) *Service {
	s := &Service{
		repo:       repo,
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessDuration(),
		refreshTTL: cfg.RefreshDuration(),
	}
	if s.accessTTL <= 0 {
		s.accessTTL = 24 * time.Hour
	}
	if s.refreshTTL <= 0 {
		s.refreshTTL = 7 * 24 * time.Hour
	}
	return s
}

// RegisterRequest 注册请求（用户创建表单）
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=150"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	User         *model.UserInfo `json:"user"`
	Token        string          `json:"token"`
	RefreshToken string          `json:"refresh_token"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// Register 注册用户
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*model.User, error) {
	if existing, _ := s.repo.Auth.GetUserByUsername(ctx, req.Username); existing != nil {
		return nil, fmt.Errorf("username %q: %w", req.Username, ErrUserExists)
	}
	if existing, _ := s.repo.Auth.GetUserByEmail(ctx, req.Email); existing != nil {
		return nil, fmt.Errorf("email %q: %w", req.Email, ErrUserExists)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}
	if err := s.repo.Auth.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login 用户登录
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.repo.Auth.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.generateTokens(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &LoginResponse{
		User:         user.ToUserInfo(),
		Token:        accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ValidateToken 验证访问令牌，返回包含用户组的用户
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*model.User, error) {
	userID, err := s.parse(tokenString, "access")
	if err != nil {
		return nil, err
	}

	tokenRecord, err := s.repo.Auth.GetTokenByValue(ctx, tokenString)
	if err != nil || tokenRecord.IsRevoked {
		return nil, ErrTokenRevoked
	}

	user, err := s.repo.Auth.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return user, nil
}

// RefreshToken 刷新令牌，旧的刷新令牌随之撤销
func (s *Service) RefreshToken(ctx context.Context, refreshTokenString string) (string, string, error) {
	userID, err := s.parse(refreshTokenString, "refresh")
	if err != nil {
		return "", "", err
	}

	tokenRecord, err := s.repo.Auth.GetTokenByValue(ctx, refreshTokenString)
	if err != nil || tokenRecord.IsRevoked {
		return "", "", ErrTokenRevoked
	}

	user, err := s.repo.Auth.GetUserByID(ctx, userID)
	if err != nil {
		return "", "", err
	}

	if err := s.repo.Auth.RevokeToken(ctx, tokenRecord.ID); err != nil {
		return "", "", err
	}

	return s.generateTokens(ctx, user)
}

// RevokeToken 按令牌值撤销
func (s *Service) RevokeToken(ctx context.Context, tokenString string) error {
	tokenRecord, err := s.repo.Auth.GetTokenByValue(ctx, tokenString)
	if err != nil {
		return err
	}
	return s.repo.Auth.RevokeToken(ctx, tokenRecord.ID)
}

// ListTokens 用户的令牌
func (s *Service) ListTokens(ctx context.Context, userID string) ([]*model.AuthToken, error) {
	return s.repo.Auth.GetTokensByUserID(ctx, userID)
}

// GetToken 按 ID 获取令牌
func (s *Service) GetToken(ctx context.Context, id string) (*model.AuthToken, error) {
	return s.repo.Auth.GetTokenByID(ctx, id)
}

// RevokeTokenByID 按 ID 撤销令牌
func (s *Service) RevokeTokenByID(ctx context.Context, id string) error {
	return s.repo.Auth.RevokeToken(ctx, id)
}

// ChangePassword 修改密码
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.repo.Auth.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hashedPassword)
	return s.repo.Auth.UpdateUser(ctx, user)
}

// parse 校验签名、过期时间与令牌类型，返回用户 ID
func (s *Service) parse(tokenString, wantType string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	if tokenType, _ := claims["type"].(string); tokenType != wantType {
		return "", ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// generateTokens 生成访问令牌和刷新令牌
func (s *Service) generateTokens(ctx context.Context, user *model.User) (string, string, error) {
	now := time.Now()

	accessToken, err := s.sign(user, "access", now, s.accessTTL)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := s.sign(user, "refresh", now, s.refreshTTL)
	if err != nil {
		return "", "", err
	}

	records := []*model.AuthToken{
		{
			ID:        uuid.New().String(),
			UserID:    user.ID,
			Token:     accessToken,
			TokenType: TokenTypeAccess,
			ExpiresAt: now.Add(s.accessTTL),
		},
		{
			ID:        uuid.New().String(),
			UserID:    user.ID,
			Token:     refreshToken,
			TokenType: TokenTypeRefresh,
			ExpiresAt: now.Add(s.refreshTTL),
		},
	}
	for _, record := range records {
		if err := s.repo.Auth.CreateToken(ctx, record); err != nil {
			return "", "", err
		}
	}

	return accessToken, refreshToken, nil
}

func (s *Service) sign(user *model.User, tokenType string, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"jti":     uuid.New().String(),
		"user_id": user.ID,
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
		"type":    tokenType,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
