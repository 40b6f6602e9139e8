// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig maps backend connection settings.
type ServerConfig struct {
	BaseURL *string `toml:"base-url"`
	Timeout *string `toml:"timeout"`
}

// CacheConfig maps local snapshot settings.
type CacheConfig struct {
	Enabled *bool `toml:"enabled"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level     *string `toml:"level"`
	Path      *string `toml:"path"`
	SentryDSN *string `toml:"sentry-dsn"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
