package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "analytics.db"), config.DatabasePath)
	assert.Equal(t, DefaultLookbackDays, config.DefaultLookbackDays)
	assert.Equal(t, CacheBackendDuckDB, config.Cache.Backend)
	assert.Equal(t, 24*time.Hour, config.Cache.ReportTTL)
	assert.Equal(t, DefaultServerAddr, config.Server.Addr)
}

func TestSetAndReload(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	require.NoError(t, Set("default_lookback_days", "30"))
	require.NoError(t, Set("cache.report_ttl", "2h"))
	require.NoError(t, Set("cache.backend", "redis"))

	info, err := os.Stat(filepath.Join(dir, ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 30, config.DefaultLookbackDays)
	assert.Equal(t, 2*time.Hour, config.Cache.ReportTTL)
	assert.Equal(t, CacheBackendRedis, config.Cache.Backend)
}

func TestSetRejectsBadValues(t *testing.T) {
	t.Setenv(HomeEnv, t.TempDir())

	assert.Error(t, Set("cache.backend", "memcached"))
	assert.Error(t, Set("default_lookback_days", "-3"))
	assert.Error(t, Set("no.such.key", "1"))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(HomeEnv, t.TempDir())
	t.Setenv("ANALYTICS_LOOKBACK_DAYS", "90")
	t.Setenv("ANALYTICS_SERVER_ADDR", "127.0.0.1:9000")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 90, config.DefaultLookbackDays)
	assert.Equal(t, "127.0.0.1:9000", config.Server.Addr)
}
