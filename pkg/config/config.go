// Package config provides configuration loading and management for
// spacetimeview. Values come from defaults, then an optional YAML file,
// then environment variable overrides, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Playback parameters
	Playback struct {
		// DefaultFPS is used when the source carries no usable frame rate
		DefaultFPS float64 `yaml:"defaultFPS" env:"SPACETIME_DEFAULT_FPS"`

		// MinFPS is the floor user-entered rates clamp to
		MinFPS float64 `yaml:"minFPS" env:"SPACETIME_MIN_FPS"`

		// MaxFPS is the ceiling user-entered rates clamp to. The original
		// tool hard-coded 1000 as an informal hardware bound; here it is
		// just a configurable limit.
		MaxFPS float64 `yaml:"maxFPS" env:"SPACETIME_MAX_FPS"`
	} `yaml:"playback"`

	// Export parameters
	Export struct {
		// Dir is where exported GIFs are written, created on demand
		Dir string `yaml:"dir" env:"SPACETIME_EXPORT_DIR"`
	} `yaml:"export"`

	// Preview parameters
	Preview struct {
		// Path is the PNG file playback renders to; empty disables the
		// file preview and logs progress only
		Path string `yaml:"path" env:"SPACETIME_PREVIEW_PATH"`

		// MaxWidth downscales wider slices before writing; 0 disables
		MaxWidth int `yaml:"maxWidth" env:"SPACETIME_PREVIEW_MAX_WIDTH"`
	} `yaml:"preview"`

	// Output parameters
	Output struct {
		// Verbose enables debug-level logging
		Verbose bool `yaml:"verbose" env:"SPACETIME_VERBOSE"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Playback.DefaultFPS = 20
	cfg.Playback.MinFPS = 1
	cfg.Playback.MaxFPS = 1000

	cfg.Export.Dir = "exports"

	cfg.Preview.Path = filepath.Join("preview", "current.png")
	cfg.Preview.MaxWidth = 1024

	cfg.Output.Verbose = false

	return cfg
}

// LoadConfig loads configuration from a YAML file and applies
// environment overrides. A missing file is not an error; defaults are
// used instead.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error applying environment overrides: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Playback.MinFPS <= 0 {
		return fmt.Errorf("playback.minFPS must be positive, got %v", c.Playback.MinFPS)
	}
	if c.Playback.MaxFPS < c.Playback.MinFPS {
		return fmt.Errorf("playback.maxFPS (%v) must be at least minFPS (%v)",
			c.Playback.MaxFPS, c.Playback.MinFPS)
	}
	if c.Playback.DefaultFPS <= 0 {
		return fmt.Errorf("playback.defaultFPS must be positive, got %v", c.Playback.DefaultFPS)
	}
	return nil
}
