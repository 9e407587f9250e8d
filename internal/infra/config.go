package infra

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every application setting. Sensitive or deployment-specific
// values can be overridden through environment variables after loading.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Market struct {
		Admin string `yaml:"admin"` // administrator identity, first boot only
	} `yaml:"market"`

	Storage struct {
		Path string `yaml:"path"` // empty = user config dir
	} `yaml:"storage"`

	Feed struct {
		ListenAddr string `yaml:"listen_addr"`
		InboxSize  int    `yaml:"inbox_size"`
	} `yaml:"feed"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Market.Admin == "" {
		return fmt.Errorf("market administrator identity is required")
	}
	if c.Feed.ListenAddr == "" {
		return fmt.Errorf("feed listen address is required")
	}
	if c.Feed.InboxSize <= 0 {
		return fmt.Errorf("feed inbox size must be positive")
	}
	return nil
}

// overrideWithEnv overrides settings from environment variables when present.
func overrideWithEnv(cfg *Config) {
	if admin := os.Getenv("GRID_ADMIN_ID"); admin != "" {
		cfg.Market.Admin = admin
	}
	if path := os.Getenv("GRID_DB_PATH"); path != "" {
		cfg.Storage.Path = path
	}
	if addr := os.Getenv("GRID_FEED_ADDR"); addr != "" {
		cfg.Feed.ListenAddr = addr
	}
}
