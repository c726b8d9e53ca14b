package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Pixi      PixiConfig      `yaml:"pixi"`
	Execution ExecutionConfig `yaml:"execution"`
	Database  DatabaseConfig  `yaml:"database"`
	History   HistoryConfig   `yaml:"history"`
}

type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	BaseURL      string `yaml:"base_url"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// AuthConfig holds the access token. TokenHash is a bcrypt hash and wins
// over Token when both are set.
type AuthConfig struct {
	Token     string `yaml:"token"`
	TokenHash string `yaml:"token_hash"`
}

type PixiConfig struct {
	Binary     string `yaml:"binary"`
	ProjectDir string `yaml:"project_dir"`
	Manifest   string `yaml:"manifest"`
}

// ExecutionConfig controls how the package manager is invoked. An empty
// Timeout means runs are never killed; Serialize makes overlapping installs
// wait for each other.
type ExecutionConfig struct {
	Timeout   string `yaml:"timeout"`
	Serialize bool   `yaml:"serialize"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type HistoryConfig struct {
	Enabled *bool `yaml:"enabled"`
}

func (c *ExecutionConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// CheckTimeout returns an error when Timeout is set but is not a
// non-negative duration. GetTimeout treats such values as no timeout.
func (c *ExecutionConfig) CheckTimeout() error {
	if c.Timeout == "" {
		return nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid execution.timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return fmt.Errorf("invalid execution.timeout %q: must not be negative", c.Timeout)
	}
	return nil
}

// IsEnabled reports whether install history is recorded. Unset means enabled.
func (c *HistoryConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	setDefaults(&cfg)

	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	setDefaults(&cfg)
	return &cfg
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8888
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "/"
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 64 << 10
	}
	if cfg.Pixi.Binary == "" {
		cfg.Pixi.Binary = "pixi"
	}
	if cfg.Pixi.ProjectDir == "" {
		cfg.Pixi.ProjectDir = "."
	}
	if cfg.Pixi.Manifest == "" {
		cfg.Pixi.Manifest = "pixi.toml"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./data/pixi-server.db"
	}
}
