// Package config holds the resolved run configuration for the renamer.
//
// A Config is built once at startup from built-in defaults, an optional YAML
// file and the command-line flags, validated, and then passed by value to
// every component that needs it.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultGlob is the pattern used when none is configured.
	DefaultGlob = "*.jpg"

	// DefaultLogLevel is the zerolog level used when none is configured.
	DefaultLogLevel = "info"
)

// Config is the fully resolved configuration for one run.
type Config struct {
	Execute  bool   `yaml:"-"` // perform real renames
	Practice bool   `yaml:"-"` // dry run, narrate only
	Verbose  bool   `yaml:"verbose"`
	Quiet    bool   `yaml:"quiet"`
	Sort     bool   `yaml:"sort"`     // order by EXIF capture time
	Glob     string `yaml:"glob"`     // matched against file names in each directory
	Dir      string `yaml:"dir"`      // scan root
	Workers  int    `yaml:"workers"`  // 0 = hardware parallelism
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in defaults. Dir is left empty and resolved to the
// working directory by ApplyDefaults.
func Default() Config {
	return Config{
		Glob:     DefaultGlob,
		LogLevel: DefaultLogLevel,
	}
}

// LoadFile reads YAML defaults from path on top of Default(). A missing file
// is not an error. Callers apply flag overrides and then ApplyDefaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}

// ApplyDefaults fills zero values that have a built-in default.
func (c *Config) ApplyDefaults() {
	if c.Glob == "" {
		c.Glob = DefaultGlob
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Dir == "" {
		if wd, err := os.Getwd(); err == nil {
			c.Dir = wd
		}
	}
}

// Narrate reports whether each rename should be printed. Quiet wins over
// verbose.
func (c Config) Narrate() bool {
	return c.Verbose && !c.Quiet
}

// DryRun reports whether renames are only narrated.
func (c Config) DryRun() bool {
	return !c.Execute
}
