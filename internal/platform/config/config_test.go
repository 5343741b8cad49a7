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
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, StoreMemory, cfg.Location.Store)
	assert.Equal(t, 5*time.Second, cfg.Location.FetchTimeout)
	assert.Equal(t, 10, cfg.Timeline.Step)
	assert.True(t, cfg.UsesDevSigningKey())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  addr: ":9090"
  log_level: debug
location:
  fetch_timeout: 2s
  breaker_failures: 7
timeline:
  step: 25
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("CRMDIR_SERVER_ADDR", ":7070")
	t.Setenv("CRMDIR_SERVER_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr, "env overrides file")
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.Location.FetchTimeout)
	assert.Equal(t, 7, cfg.Location.BreakerFailures)
	assert.Equal(t, 25, cfg.Timeline.Step)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	t.Run("postgres store needs a database", func(t *testing.T) {
		t.Setenv("CRMDIR_LOCATION_STORE", StorePostgres)
		_, err := Load(t.TempDir())
		assert.ErrorContains(t, err, "database.url")
	})

	t.Run("redis store needs redis", func(t *testing.T) {
		t.Setenv("CRMDIR_LOCATION_STORE", StoreRedis)
		_, err := Load(t.TempDir())
		assert.ErrorContains(t, err, "redis.url")
	})

	t.Run("unknown store", func(t *testing.T) {
		t.Setenv("CRMDIR_LOCATION_STORE", "etcd")
		_, err := Load(t.TempDir())
		assert.ErrorContains(t, err, "unknown location.store")
	})
}
