package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/objbench/pkg/obj"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	return LoadPath("")
}

// LoadPath is Load with an explicit config file. An empty path falls back
// to the --config flag and then to the default search locations.
func LoadPath(path string) (*Config, error) {
	cfg := Default()

	configPath := path
	if configPath == "" {
		configPath = ConfigPath()
	}
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if _, err := obj.ParseMode(c.Parser.Mode); err != nil {
		return fmt.Errorf("parser.mode: %w", err)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload.max_bytes must be positive, got %d", c.Upload.MaxBytes)
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("batch.workers must be positive, got %d", c.Batch.Workers)
	}
	return nil
}

// ParseOptions returns the parser options for this config.
// Call Validate first; an unknown mode falls back to permissive.
func (c *Config) ParseOptions() obj.Options {
	mode, _ := obj.ParseMode(c.Parser.Mode)
	return obj.Options{Mode: mode, ValidateFaces: c.Parser.ValidateFaces}
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./objbench.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "objbench")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "objbench")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "objbench")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "objbench")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
