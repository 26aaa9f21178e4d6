// Package config loads the REPL's optional YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds REPL settings. Command-line flags override every field.
type Config struct {
	// Engine is the path to the engine binary; empty resolves from PATH.
	Engine string `yaml:"engine"`

	// Database is the default database locator.
	Database string `yaml:"database"`

	// ReadOnly opens databases read-only.
	ReadOnly bool `yaml:"readonly"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Database: ":memory:",
		LogLevel: "warn",
	}
}

// Load reads a YAML config file. A missing file is not an error; defaults
// are returned so the REPL works without any setup.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}
