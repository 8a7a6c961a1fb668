// Package config provides configuration loading, validation, and hot
// reload.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Search   SearchConfig   `yaml:"search"`
	Media    MediaConfig    `yaml:"media"`
	Messages MessagesConfig `yaml:"messages"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig configures the database.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite"
	DSN    string `yaml:"dsn"`
}

// SearchConfig configures the reference search helper.
type SearchConfig struct {
	MaxResults int `yaml:"max_results"`
}

// MediaConfig configures media attachment handling.
type MediaConfig struct {
	PageSize      int   `yaml:"page_size"`
	MaxUploadSize int64 `yaml:"max_upload_size"` // bytes
}

// MessagesConfig configures the message catalog.
type MessagesConfig struct {
	// Path to a yaml locale file; empty uses built-in defaults.
	Path string `yaml:"path"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "scaffold.db",
		},
		Search: SearchConfig{
			MaxResults: 50,
		},
		Media: MediaConfig{
			PageSize:      20,
			MaxUploadSize: 10 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load reads configuration from a yaml file, applies environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds configuration from defaults plus environment variables
// only (no file).
func FromEnv() (*Config, error) {
	cfg := Default()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// HasEnvConfig reports whether any SCAFFOLD_* override is set.
func HasEnvConfig() bool {
	for _, key := range []string{"SCAFFOLD_DATABASE_DSN", "SCAFFOLD_SERVER_PORT", "SCAFFOLD_LOG_LEVEL"} {
		if os.Getenv(key) != "" {
			return true
		}
	}
	return false
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SCAFFOLD_SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("SCAFFOLD_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("SCAFFOLD_DATABASE_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("SCAFFOLD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SCAFFOLD_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("SCAFFOLD_MESSAGES_PATH"); v != "" {
		c.Messages.Path = v
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if c.Search.MaxResults < 1 {
		return fmt.Errorf("search max_results must be positive, got %d", c.Search.MaxResults)
	}
	if c.Media.PageSize < 1 {
		return fmt.Errorf("media page_size must be positive, got %d", c.Media.PageSize)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q", c.Logging.Format)
	}
	return nil
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
