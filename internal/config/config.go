// Package config implements ICU's hierarchical configuration
// discovery: .icu.yml walk-up, a global fallback, .icuignore parsing,
// and an environment-variable overlay.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/icu-sec/icu/internal/safefile"
)

var configFileNames = []string{".icu.yml", ".icu.yaml"}

// Config is ICU's top-level scan configuration.
type Config struct {
	Depth           string   `yaml:"depth,omitempty"` // "auto", "fast", "deep"
	MaxFileSizeMiB  int      `yaml:"max_file_size_mib,omitempty"`
	DisableDB       bool     `yaml:"disable_db,omitempty"`
	PolicyPath      string   `yaml:"policy,omitempty"`
	Exclude         []string `yaml:"exclude,omitempty"`
	EntropyThresh   float64  `yaml:"entropy_threshold,omitempty"`
	Workers         int      `yaml:"workers,omitempty"`
}

// Defaults returns ICU's built-in configuration.
func Defaults() *Config {
	return &Config{
		Depth:          "auto",
		MaxFileSizeMiB: 1,
		EntropyThresh:  4.5,
		Workers:        4,
	}
}

// Discover walks up from startDir looking for a .icu.yml/.icu.yaml,
// falling back to ~/.icu/config.yml, then to Defaults.
func Discover(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range configFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				cfg, err := Load(candidate)
				return cfg, candidate, err
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, ".icu", "config.yml")
		if _, err := os.Stat(candidate); err == nil {
			cfg, err := Load(candidate)
			return cfg, candidate, err
		}
	}

	return Defaults(), "", nil
}

// Load reads and decodes a config file at path, starting from
// Defaults so unset fields keep their default value.
func Load(path string) (*Config, error) {
	raw, err := safefile.ReadFileMax(path, 1<<20)
	if err != nil {
		return nil, err
	}
	cfg := Defaults()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Overlay applies ICU_DEPTH, ICU_MAX_SIZE, ICU_NO_DB, and ICU_POLICY
// environment variables on top of cfg, in that order, after any YAML
// load and before caller-supplied flag overrides.
func Overlay(cfg *Config) *Config {
	if v := os.Getenv("ICU_DEPTH"); v != "" {
		cfg.Depth = v
	}
	if v := os.Getenv("ICU_MAX_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxFileSizeMiB = n
		}
	}
	if v := os.Getenv("ICU_NO_DB"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.DisableDB = b
		}
	}
	if v := os.Getenv("ICU_POLICY"); v != "" {
		cfg.PolicyPath = v
	}
	return cfg
}
