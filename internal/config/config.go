// Package config loads crumbs settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/artpar/crumbs/internal/logging"
	"gopkg.in/yaml.v3"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds crumbs settings.
type Config struct {
	// File is the CSV cookie file.
	File string `yaml:"file"`

	// LogLevel is one of debug, info, warn (or warning), error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is text or json.
	LogFormat string `yaml:"log_format"`

	// FetchTimeout bounds requests made by the fetch command.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// Dir returns the crumbs configuration directory.
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = "."
	}
	return filepath.Join(configDir, "crumbs")
}

// DefaultPath returns the default configuration file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		File:         filepath.Join(Dir(), "cookies.csv"),
		LogLevel:     "warn",
		LogFormat:    FormatText,
		FetchTimeout: 30 * time.Second,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.File != "" {
		c.File = source.File
	}
	if source.LogLevel != "" {
		c.LogLevel = source.LogLevel
	}
	if source.LogFormat != "" {
		c.LogFormat = source.LogFormat
	}
	if source.FetchTimeout > 0 {
		c.FetchTimeout = source.FetchTimeout
	}
}

// Validate checks that every setting holds a usable value.
func (c *Config) Validate() error {
	if c.File == "" {
		return errors.New("config: file is required")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.LogFormat {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("config: unknown log_format %q", c.LogFormat)
	}
	if c.FetchTimeout <= 0 {
		return errors.New("config: fetch_timeout must be positive")
	}
	return nil
}

// Load reads a YAML config file and merges it over the defaults. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.Merge(&fileCfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
