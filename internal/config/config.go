// Package config loads rebrand configuration from an optional YAML file,
// falling back to built-in defaults when no file is present.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the config file rebrand looks for in the project root.
const DefaultConfigPath = ".rebrand.yaml"

// Config represents rebrand configuration options.
type Config struct {
	// OldName is the placeholder identifier to replace throughout the tree
	OldName string `yaml:"old_name"`

	// SourceDir is the directory containing the package subtree (e.g. "src")
	SourceDir string `yaml:"source_dir"`

	// ExcludeDirs lists directory names skipped by every scan pass
	// (version-control internals, virtual environments, caches)
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// InitFileName is the module initializer filename that marks a
	// directory as an importable package unit
	InitFileName string `yaml:"init_file_name"`

	// MinInitSize is the size in bytes below which an initializer file
	// gets a provenance docstring injected before the move
	MinInitSize int64 `yaml:"min_init_size"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// DryRun computes and prints the plan without mutating the tree
	DryRun bool `yaml:"dry_run"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		OldName:   "project_name",
		SourceDir: "src",
		ExcludeDirs: []string{
			".git",
			".hg",
			".svn",
			".venv",
			"venv",
			"__pycache__",
			".mypy_cache",
			".pytest_cache",
			"node_modules",
		},
		InitFileName: "__init__.py",
		MinInitSize:  10,
		LogLevel:     "info",
		DryRun:       false,
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks configuration values for consistency.
func (c *Config) Validate() error {
	if c.OldName == "" {
		return fmt.Errorf("old_name cannot be empty")
	}
	if c.SourceDir == "" {
		return fmt.Errorf("source_dir cannot be empty")
	}
	if c.InitFileName == "" {
		return fmt.Errorf("init_file_name cannot be empty")
	}
	if c.MinInitSize < 0 {
		return fmt.Errorf("min_init_size cannot be negative, got %d", c.MinInitSize)
	}
	return nil
}

// ExcludeSet returns the exclusion list as a lookup map.
func (c *Config) ExcludeSet() map[string]bool {
	set := make(map[string]bool, len(c.ExcludeDirs))
	for _, dir := range c.ExcludeDirs {
		set[dir] = true
	}
	return set
}
