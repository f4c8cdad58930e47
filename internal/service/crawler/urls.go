package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ashwinyue/toolhub/internal/model"
	"github.com/ashwinyue/toolhub/internal/permissions"
	"github.com/ashwinyue/toolhub/internal/repository"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("permission denied")
	ErrInvalidURL = errors.New("url must be an absolute http or https url")
	ErrURLExists  = errors.New("url is already registered")
)

// URLRequest 登记或修改抓取地址
type URLRequest struct {
	URL string `json:"url" binding:"required,max=2047"`
}

// Service 抓取地址登记与抓取历史
type Service struct {
	repo  *repository.Repositories
	authz *permissions.Authorizer
}

// NewService 创建地址服务
func NewService(repo *repository.Repositories, authz *permissions.Authorizer) *Service {
	return &Service{repo: repo, authz: authz}
}

// ListURLs 分页列出登记的地址
func (s *Service) ListURLs(ctx context.Context, offset, limit int) ([]*model.CrawlerURL, int64, error) {
	return s.repo.Crawler.ListURLs(ctx, offset, limit)
}

// GetURL 获取地址
func (s *Service) GetURL(ctx context.Context, id string) (*model.CrawlerURL, error) {
	u, err := s.repo.Crawler.GetURL(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// AddURL 登记地址，登记者成为抓取到的工具的创建者
func (s *Service) AddURL(ctx context.Context, req *URLRequest, user *model.User) (*model.CrawlerURL, error) {
	if !s.authz.Can(user, permissions.AppCrawler, permissions.ModelURL, permissions.ActionAdd, nil) {
		return nil, ErrForbidden
	}
	normalized, err := normalizeURL(req.URL)
	if err != nil {
		return nil, err
	}

	u := &model.CrawlerURL{ID: uuid.New().String(), URL: normalized, CreatedByID: user.ID}
	if err := s.repo.Crawler.CreateURL(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%s: %w", normalized, ErrURLExists)
		}
		return nil, err
	}
	return s.GetURL(ctx, u.ID)
}

// UpdateURL 修改地址
func (s *Service) UpdateURL(ctx context.Context, u *model.CrawlerURL, req *URLRequest, user *model.User) (*model.CrawlerURL, error) {
	if !s.authz.Can(user, permissions.AppCrawler, permissions.ModelURL, permissions.ActionChange, u) {
		return nil, ErrForbidden
	}
	normalized, err := normalizeURL(req.URL)
	if err != nil {
		return nil, err
	}
	u.URL = normalized
	if err := s.repo.Crawler.UpdateURL(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%s: %w", normalized, ErrURLExists)
		}
		return nil, err
	}
	return u, nil
}

// DeleteURL 删除地址
func (s *Service) DeleteURL(ctx context.Context, u *model.CrawlerURL, user *model.User) error {
	if !s.authz.Can(user, permissions.AppCrawler, permissions.ModelURL, permissions.ActionDelete, u) {
		return ErrForbidden
	}
	return s.repo.Crawler.DeleteURL(ctx, u.ID)
}

// ListRuns 分页列出抓取记录
func (s *Service) ListRuns(ctx context.Context, offset, limit int) ([]*model.CrawlerRun, int64, error) {
	return s.repo.Crawler.ListRuns(ctx, offset, limit)
}

// GetRun 获取抓取记录及每个地址的结果
func (s *Service) GetRun(ctx context.Context, id string) (*model.CrawlerRun, error) {
	run, err := s.repo.Crawler.GetRun(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return run, nil
}

func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%q: %w", raw, ErrInvalidURL)
	}
	return u.String(), nil
}
