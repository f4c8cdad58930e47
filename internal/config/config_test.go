package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "toolhub", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "toolhub", cfg.Database.DBName)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Elastic.Enabled())
	assert.Equal(t, "toolhub_tools", cfg.Elastic.ToolsIndex())
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessDuration())
	assert.Equal(t, "@hourly", cfg.Crawler.Schedule)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
redis:
  host: cache
  caslTTL: 60
crawler:
  enabled: true
  schedule: "*/30 * * * *"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "cache:6379", cfg.Redis.GetAddr())
	assert.Equal(t, time.Minute, cfg.Redis.CacheTTL())
	assert.True(t, cfg.Crawler.Enabled)
	assert.Equal(t, "*/30 * * * *", cfg.Crawler.Schedule)
	// 未在文件中出现的键保留默认值
	assert.Equal(t, "localhost", cfg.Database.Host)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TOOLHUB_DATABASE_HOST", "db.internal")
	t.Setenv("TOOLHUB_AUTH_JWTSECRET", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Contains(t, cfg.Database.GetDSN(), "host=db.internal")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
