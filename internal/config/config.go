// Package config loads supplyline client settings from an optional YAML file
// and SUPPLYLINE_* environment variables, in that order of precedence
// (environment wins).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Credential backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type CredentialsConfig struct {
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis"`
}

// Config mirrors the supplyline.yaml schema.
type Config struct {
	Log         LogConfig         `yaml:"log"`
	API         APIConfig         `yaml:"api"`
	DataDir     string            `yaml:"data_dir"`
	DBPath      string            `yaml:"db_path"`
	Credentials CredentialsConfig `yaml:"credentials"`
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides and defaults, and validates the result.
func Load(path string) (Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := applyEnv(&c, os.Getenv); err != nil {
		return Config{}, err
	}
	applyDefaults(&c)
	if err := validate(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

func applyEnv(c *Config, getenv func(string) string) error {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Log.Level, "SUPPLYLINE_LOG_LEVEL")
	set(&c.Log.Format, "SUPPLYLINE_LOG_FORMAT")
	set(&c.API.BaseURL, "SUPPLYLINE_API_URL")
	set(&c.DataDir, "SUPPLYLINE_DATA_DIR")
	set(&c.DBPath, "SUPPLYLINE_DB_PATH")
	set(&c.Credentials.Backend, "SUPPLYLINE_CREDENTIALS_BACKEND")
	set(&c.Credentials.Redis.Addr, "SUPPLYLINE_REDIS_ADDR")
	set(&c.Credentials.Redis.Password, "SUPPLYLINE_REDIS_PASSWORD")

	if v := strings.TrimSpace(getenv("SUPPLYLINE_API_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SUPPLYLINE_API_TIMEOUT: %w", err)
		}
		c.API.Timeout = d
	}
	return nil
}

func applyDefaults(c *Config) {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "supplyline.db")
	}
	if c.Credentials.Backend == "" {
		c.Credentials.Backend = BackendSQLite
	}
	if c.Credentials.Backend == BackendRedis && c.Credentials.Redis.Addr == "" {
		c.Credentials.Redis.Addr = "127.0.0.1:6379"
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "supplyline")
	}
	return ".supplyline"
}

// RequireAPI reports an error when no backend URL is configured. Commands
// that only touch local state can run without one.
func (c Config) RequireAPI() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	return nil
}

func validate(c *Config) error {
	if c.API.BaseURL != "" {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("api.base_url %q is not an http(s) URL", c.API.BaseURL)
		}
	}
	if c.API.Timeout < 0 {
		return errors.New("api.timeout must not be negative")
	}
	switch c.Credentials.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("credentials.backend %q is invalid", c.Credentials.Backend)
	}
	return nil
}
