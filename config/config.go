// Package config holds the runtime settings for gen4ids. Settings come from
// defaults, then an optional YAML file, then GEN4IDS_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full set of runtime settings.
type Config struct {
	// Backend is the registered backend name: "wgpu" or "mock".
	Backend string `yaml:"backend"`
	// KernelPath points at a WGSL kernel. Empty uses the embedded reference kernel.
	KernelPath string `yaml:"kernel_path"`
	// PowerPreference is "", "low" or "high".
	PowerPreference string `yaml:"power_preference"`
	// MapTimeout bounds the staging buffer map wait. 0 means no time limit,
	// which is what browsers need: their map callback only runs once the
	// Go side yields to the event loop.
	MapTimeout time.Duration `yaml:"map_timeout"`
	// CacheSession keeps one device across searches.
	CacheSession bool `yaml:"cache_session"`
	// MaxInFlight caps concurrent searches. 0 means unlimited.
	MaxInFlight int64 `yaml:"max_in_flight"`
	// SearchesPerSecond caps how fast searches start. 0 means unlimited.
	SearchesPerSecond float64 `yaml:"searches_per_second"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // "text" or "json"
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Backend:    "wgpu",
		MapTimeout: 2 * time.Second,
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

// Load reads path (if non-empty) over the defaults and applies the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv is Load without a file.
func FromEnv() (Config, error) {
	return Load("")
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("GEN4IDS_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := getenv("GEN4IDS_KERNEL"); v != "" {
		c.KernelPath = v
	}
	if v := getenv("GEN4IDS_POWER_PREFERENCE"); v != "" {
		c.PowerPreference = v
	}
	if v := getenv("GEN4IDS_MAP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("GEN4IDS_MAP_TIMEOUT: %w", err)
		}
		c.MapTimeout = d
	}
	if v := getenv("GEN4IDS_CACHE_SESSION"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("GEN4IDS_CACHE_SESSION: %w", err)
		}
		c.CacheSession = b
	}
	if v := getenv("GEN4IDS_MAX_IN_FLIGHT"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("GEN4IDS_MAX_IN_FLIGHT: %w", err)
		}
		c.MaxInFlight = n
	}
	if v := getenv("GEN4IDS_SEARCHES_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("GEN4IDS_SEARCHES_PER_SECOND: %w", err)
		}
		c.SearchesPerSecond = f
	}
	if v := getenv("GEN4IDS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("GEN4IDS_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	return nil
}

// Validate rejects settings no backend can run with.
func (c Config) Validate() error {
	if c.Backend == "" {
		return fmt.Errorf("config: backend must be set")
	}
	switch strings.ToLower(c.PowerPreference) {
	case "", "low", "high":
	default:
		return fmt.Errorf("config: power_preference %q (want low, high or empty)", c.PowerPreference)
	}
	if c.MapTimeout < 0 {
		return fmt.Errorf("config: map_timeout must not be negative, got %s", c.MapTimeout)
	}
	if c.MaxInFlight < 0 {
		return fmt.Errorf("config: max_in_flight must not be negative")
	}
	if c.SearchesPerSecond < 0 {
		return fmt.Errorf("config: searches_per_second must not be negative")
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: log_format %q (want text or json)", c.LogFormat)
	}
	return nil
}
