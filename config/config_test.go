package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "wgpu", cfg.Backend)
	assert.Equal(t, 2*time.Second, cfg.MapTimeout)
	assert.False(t, cfg.CacheSession)
	require.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen4ids.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend: mock
kernel_path: /tmp/k.wgsl
power_preference: high
map_timeout: 500ms
cache_session: true
max_in_flight: 4
searches_per_second: 2.5
log_format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mock", cfg.Backend)
	assert.Equal(t, "/tmp/k.wgsl", cfg.KernelPath)
	assert.Equal(t, "high", cfg.PowerPreference)
	assert.Equal(t, 500*time.Millisecond, cfg.MapTimeout)
	assert.True(t, cfg.CacheSession)
	assert.Equal(t, int64(4), cfg.MaxInFlight)
	assert.Equal(t, 2.5, cfg.SearchesPerSecond)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen4ids.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: wgpu\nmax_in_flight: 1\n"), 0o644))

	t.Setenv("GEN4IDS_BACKEND", "mock")
	t.Setenv("GEN4IDS_MAX_IN_FLIGHT", "8")
	t.Setenv("GEN4IDS_MAP_TIMEOUT", "3s")
	t.Setenv("GEN4IDS_CACHE_SESSION", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mock", cfg.Backend)
	assert.Equal(t, int64(8), cfg.MaxInFlight)
	assert.Equal(t, 3*time.Second, cfg.MapTimeout)
	assert.True(t, cfg.CacheSession)
}

func TestBadEnv(t *testing.T) {
	t.Setenv("GEN4IDS_MAP_TIMEOUT", "soon")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := map[string]func(c *Config){
		"no backend":       func(c *Config) { c.Backend = "" },
		"power preference": func(c *Config) { c.PowerPreference = "turbo" },
		"negative timeout": func(c *Config) { c.MapTimeout = -time.Second },
		"negative flight":  func(c *Config) { c.MaxInFlight = -1 },
		"negative rate":    func(c *Config) { c.SearchesPerSecond = -1 },
		"log format":       func(c *Config) { c.LogFormat = "xml" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateNoMapTimeout(t *testing.T) {
	cfg := Default()
	cfg.MapTimeout = 0
	assert.NoError(t, cfg.Validate())

	t.Setenv("GEN4IDS_MAP_TIMEOUT", "0s")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Zero(t, cfg.MapTimeout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
