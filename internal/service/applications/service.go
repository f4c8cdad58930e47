// Package applications OAuth 客户端应用登记
package applications

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ashwinyue/toolhub/internal/model"
	"github.com/ashwinyue/toolhub/internal/permissions"
	"github.com/ashwinyue/toolhub/internal/repository"
)

var (
	ErrNotFound           = errors.New("application not found")
	ErrForbidden          = errors.New("permission denied")
	ErrInvalidRedirectURI = errors.New("redirect uris must be absolute urls")
)

// Request 创建或修改应用
type Request struct {
	Name         string   `json:"name" binding:"required,max=255"`
	RedirectURIs []string `json:"redirect_uris" binding:"required,min=1"`
}

// Registration 新建应用的返回值，ClientSecret 只在创建时返回一次
type Registration struct {
	*model.Application
	ClientSecret string `json:"client_secret"`
}

// Service 应用服务
type Service struct {
	repo  *repository.Repositories
	authz *permissions.Authorizer
}

// NewService 创建应用服务
func NewService(repo *repository.Repositories, authz *permissions.Authorizer) *Service {
	return &Service{repo: repo, authz: authz}
}

// List 列出应用，管理员看到全部应用
func (s *Service) List(ctx context.Context, user *model.User) ([]*model.Application, error) {
	if user == nil {
		return nil, ErrForbidden
	}
	owner := user.ID
	if permissions.IsAdministrator.Test(user, nil) {
		owner = ""
	}
	return s.repo.Application.List(ctx, owner)
}

// Get 获取应用
func (s *Service) Get(ctx context.Context, id string) (*model.Application, error) {
	app, err := s.repo.Application.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

// Register 登记新应用
func (s *Service) Register(ctx context.Context, req *Request, user *model.User) (*Registration, error) {
	if !s.authz.Can(user, permissions.AppOAuth, permissions.ModelApplication, permissions.ActionAdd, nil) {
		return nil, ErrForbidden
	}
	uris, err := validateRedirectURIs(req.RedirectURIs)
	if err != nil {
		return nil, err
	}

	secret, err := newSecret()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash client secret: %w", err)
	}

	app := &model.Application{
		ID:               uuid.New().String(),
		Name:             strings.TrimSpace(req.Name),
		ClientID:         strings.ReplaceAll(uuid.New().String(), "-", ""),
		ClientSecretHash: string(hash),
		RedirectURIs:     uris,
		UserID:           user.ID,
	}
	if err := s.repo.Application.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return &Registration{Application: app, ClientSecret: secret}, nil
}

// Update 修改应用名称与回调地址
func (s *Service) Update(ctx context.Context, app *model.Application, req *Request, user *model.User) (*model.Application, error) {
	if !s.authz.Can(user, permissions.AppOAuth, permissions.ModelApplication, permissions.ActionChange, app) {
		return nil, ErrForbidden
	}
	uris, err := validateRedirectURIs(req.RedirectURIs)
	if err != nil {
		return nil, err
	}
	app.Name = strings.TrimSpace(req.Name)
	app.RedirectURIs = uris
	if err := s.repo.Application.Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// Delete 删除应用
func (s *Service) Delete(ctx context.Context, app *model.Application, user *model.User) error {
	if !s.authz.Can(user, permissions.AppOAuth, permissions.ModelApplication, permissions.ActionDelete, app) {
		return ErrForbidden
	}
	return s.repo.Application.Delete(ctx, app.ID)
}

// VerifySecret 校验客户端密钥
func VerifySecret(app *model.Application, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(app.ClientSecretHash), []byte(secret)) == nil
}

func validateRedirectURIs(raw []string) ([]string, error) {
	uris := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		u, err := url.Parse(r)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%q: %w", r, ErrInvalidRedirectURI)
		}
		uris = append(uris, r)
	}
	return uris, nil
}

func newSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate client secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
