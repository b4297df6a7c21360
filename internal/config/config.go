// Package config loads the server configuration from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Session SessionConfig `yaml:"session"`
	Pages   PagesConfig   `yaml:"pages"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// BaseURL is the public origin used to build share links.
	BaseURL         string `yaml:"base_url"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

type StorageConfig struct {
	Driver     string `yaml:"driver"` // sqlite or mysql
	SQLitePath string `yaml:"sqlite_path"`
	MySQLDSN   string `yaml:"mysql_dsn"`
}

type SessionConfig struct {
	Driver     string `yaml:"driver"` // cookie or redis
	Secret     string `yaml:"secret"`
	CookieName string `yaml:"cookie_name"`
	Secure     bool   `yaml:"secure"`
	RedisAddr  string `yaml:"redis_addr"`
	TTL        string `yaml:"ttl"`
	// Dir holds cookie-driver states that outgrow the cookie. Empty means the OS temp dir.
	Dir string `yaml:"dir"`
}

type PagesConfig struct {
	// APIBaseURL is where the pages reach the JSON API. Empty means this server.
	APIBaseURL       string `yaml:"api_base_url"`
	DefaultGroupName string `yaml:"default_group_name"`
	MaxQuantity      int    `yaml:"max_quantity"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

var (
	ValidStorageDrivers = []string{"sqlite", "mysql"}
	ValidSessionDrivers = []string{"cookie", "redis"}
	ValidLogLevels      = []string{"debug", "info", "warn", "error"}
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			BaseURL:         "http://localhost:8080",
			ShutdownTimeout: "10s",
		},
		Storage: StorageConfig{
			Driver:     "sqlite",
			SQLitePath: "./data/mochiyoru.db",
		},
		Session: SessionConfig{
			Driver:     "cookie",
			Secret:     "change-me-in-production",
			CookieName: "mochiyoru-session",
			RedisAddr:  "localhost:6379",
			TTL:        "24h",
		},
		Pages: PagesConfig{
			DefaultGroupName: "New group",
			MaxQuantity:      10,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment variables override both.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{"ADDR", &c.Server.Addr},
		{"BASE_URL", &c.Server.BaseURL},
		{"API_BASE_URL", &c.Pages.APIBaseURL},
		{"STORAGE_DRIVER", &c.Storage.Driver},
		{"DB_PATH", &c.Storage.SQLitePath},
		{"MYSQL_DSN", &c.Storage.MySQLDSN},
		{"SESSION_DRIVER", &c.Session.Driver},
		{"SESSION_SECRET", &c.Session.Secret},
		{"REDIS_ADDR", &c.Session.RedisAddr},
		{"LOG_LEVEL", &c.Log.Level},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
		}
	}
}

// GetShutdownTimeout returns the graceful shutdown timeout as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetSessionTTL returns the session TTL as a duration.
func (c *Config) GetSessionTTL() time.Duration {
	d, err := time.ParseDuration(c.Session.TTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !slices.Contains(ValidStorageDrivers, c.Storage.Driver) {
		return fmt.Errorf("invalid storage driver: %s (valid: %v)", c.Storage.Driver, ValidStorageDrivers)
	}
	if c.Storage.Driver == "mysql" && c.Storage.MySQLDSN == "" {
		return fmt.Errorf("mysql storage requires a DSN (set storage.mysql_dsn or MYSQL_DSN)")
	}
	if c.Storage.Driver == "sqlite" && c.Storage.SQLitePath == "" {
		return fmt.Errorf("sqlite storage requires a path (set storage.sqlite_path or DB_PATH)")
	}

	if !slices.Contains(ValidSessionDrivers, c.Session.Driver) {
		return fmt.Errorf("invalid session driver: %s (valid: %v)", c.Session.Driver, ValidSessionDrivers)
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("session secret not configured (set session.secret or SESSION_SECRET)")
	}
	if c.Session.Driver == "redis" && c.Session.RedisAddr == "" {
		return fmt.Errorf("redis sessions require an address (set session.redis_addr or REDIS_ADDR)")
	}

	if !slices.Contains(ValidLogLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Log.Level, ValidLogLevels)
	}
	if c.Pages.MaxQuantity < 1 {
		return fmt.Errorf("pages.max_quantity must be at least 1")
	}

	return nil
}
