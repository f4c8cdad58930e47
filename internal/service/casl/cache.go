// Package casl 按用户缓存前端使用的 CASL 规则
package casl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ashwinyue/toolhub/internal/metrics"
	"github.com/ashwinyue/toolhub/internal/model"
	"github.com/ashwinyue/toolhub/internal/permissions"
)

const (
	// Redis key 前缀
	keyPrefix = "toolhub:casl:"
	// 匿名用户共用的缓存 key
	anonymousKey = "anon"
	// 未配置时的缓存时间
	defaultTTL = 5 * time.Minute
)

// Cache CASL 规则缓存，redis 为 nil 时每次直接计算
type Cache struct {
	authz   *permissions.Authorizer
	redis   *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *logrus.Logger
}

// NewCache 创建规则缓存
func NewCache(authz *permissions.Authorizer, redisClient *redis.Client, ttl time.Duration, m *metrics.Metrics, logger *logrus.Logger) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Cache{authz: authz, redis: redisClient, ttl: ttl, metrics: m, logger: logger}
}

// Cached 是否启用了 redis 缓存
func (c *Cache) Cached() bool {
	return c.redis != nil
}

// Key 用户的缓存 key
func Key(user *model.User) string {
	if user == nil || user.ID == "" {
		return keyPrefix + anonymousKey
	}
	return keyPrefix + user.ID
}

// RulesForUser 返回用户的 CASL 规则，缓存读写失败时退回直接计算
func (c *Cache) RulesForUser(ctx context.Context, user *model.User) []permissions.CASLRule {
	if c.redis == nil {
		return c.authz.CASLForUser(user)
	}

	key := Key(user)
	if rules, err := c.load(ctx, key); err == nil {
		c.metrics.RecordCASLCache(true)
		return rules
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WithError(err).WithField("key", key).Warn("failed to read casl cache")
	}
	c.metrics.RecordCASLCache(false)

	rules := c.authz.CASLForUser(user)
	if err := c.save(ctx, key, rules); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("failed to write casl cache")
	}
	return rules
}

// Invalidate 删除用户的缓存规则
func (c *Cache) Invalidate(ctx context.Context, userID string) error {
	if c.redis == nil {
		return nil
	}
	key := keyPrefix + userID
	if userID == "" {
		key = keyPrefix + anonymousKey
	}
	if err := c.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (c *Cache) load(ctx context.Context, key string) ([]permissions.CASLRule, error) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var rules []permissions.CASLRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("decode cached rules: %w", err)
	}
	return rules, nil
}

func (c *Cache) save(ctx context.Context, key string, rules []permissions.CASLRule) error {
	data, err := json.Marshal(rules)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, key, data, c.ttl).Err()
}
