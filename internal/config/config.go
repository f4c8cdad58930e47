package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Elastic  ElasticConfig
	Auth     AuthConfig
	Crawler  CrawlerConfig
	Log      LogConfig
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string
	Environment string
	Version     string
	Debug       bool
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string
	Port         int
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
}

// RedisConfig Redis配置，Host 为空时不启用 CASL 缓存
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	CASLTTL  int // 秒
}

// ElasticConfig Elasticsearch配置，Host 为空时搜索回退到数据库
type ElasticConfig struct {
	Host        string
	Username    string
	Password    string
	IndexPrefix string
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWTSecret  string
	AccessTTL  int // 秒
	RefreshTTL int // 秒
}

// CrawlerConfig 爬虫配置
type CrawlerConfig struct {
	Enabled   bool
	Schedule  string
	Timeout   int // 秒
	UserAgent string
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string
	Format string // text, json
}

// Load 加载配置
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// 环境变量，例如 TOOLHUB_DATABASE_HOST
	v.SetEnvPrefix("TOOLHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GetAddr 获取服务器地址
func (c *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetAddr 获取 Redis 地址
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Enabled 是否配置了 Redis
func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

// CacheTTL CASL 缓存时长
func (c *RedisConfig) CacheTTL() time.Duration {
	return time.Duration(c.CASLTTL) * time.Second
}

// Enabled 是否配置了 Elasticsearch
func (c *ElasticConfig) Enabled() bool {
	return c.Host != ""
}

// ToolsIndex 工具索引名
func (c *ElasticConfig) ToolsIndex() string {
	if c.IndexPrefix == "" {
		return "tools"
	}
	return c.IndexPrefix + "_tools"
}

// AccessDuration access token 有效期
func (c *AuthConfig) AccessDuration() time.Duration {
	return time.Duration(c.AccessTTL) * time.Second
}

// RefreshDuration refresh token 有效期
func (c *AuthConfig) RefreshDuration() time.Duration {
	return time.Duration(c.RefreshTTL) * time.Second
}

// RequestTimeout 单个 URL 的抓取超时
func (c *CrawlerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "toolhub")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.debug", true)

	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "toolhub")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.maxLifetime", 300)

	// Redis
	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.caslTTL", 300)

	// Elastic
	v.SetDefault("elastic.host", "")
	v.SetDefault("elastic.indexPrefix", "toolhub")

	// Auth
	v.SetDefault("auth.jwtSecret", "change-me-in-production")
	v.SetDefault("auth.accessTTL", 86400)
	v.SetDefault("auth.refreshTTL", 7*86400)

	// Crawler
	v.SetDefault("crawler.enabled", false)
	v.SetDefault("crawler.schedule", "@hourly")
	v.SetDefault("crawler.timeout", 30)
	v.SetDefault("crawler.userAgent", "Toolhub crawler (+https://toolhub.wikimedia.org/)")

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
