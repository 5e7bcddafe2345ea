// Package config loads the global anvil settings from ~/.anvil/config.yaml.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Global holds settings from ~/.anvil/config.yaml.
type Global struct {
	Debug   DebugConfig   `yaml:"debug"`
	History HistoryConfig `yaml:"history"`
}

// DebugConfig controls debug log files under the output base.
type DebugConfig struct {
	// RetentionDays is how many days of debug logs to keep (0 = forever).
	RetentionDays int `yaml:"retention_days"`
}

// HistoryConfig controls the invocation history store.
type HistoryConfig struct {
	// Enabled turns invocation recording on. The --nohistory startup
	// option overrides this per invocation.
	Enabled bool `yaml:"enabled"`
	// Limit caps how many invocations the history command shows by default.
	Limit int `yaml:"limit"`
	// RetentionDays is how many days of invocations to keep (0 = forever).
	RetentionDays int `yaml:"retention_days"`
}

// Default returns the default global configuration.
func Default() *Global {
	return &Global{
		Debug:   DebugConfig{RetentionDays: 7},
		History: HistoryConfig{Enabled: true, Limit: 20, RetentionDays: 90},
	}
}

// Load reads ~/.anvil/config.yaml and applies environment overrides. A
// missing or malformed file falls back to defaults.
func Load() (*Global, error) {
	cfg := Default()

	if data, err := os.ReadFile(filepath.Join(Dir(), "config.yaml")); err == nil {
		_ = yaml.Unmarshal(data, cfg)
	}

	if v := os.Getenv("ANVIL_DEBUG_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.Debug.RetentionDays = days
		}
	}
	if v := os.Getenv("ANVIL_HISTORY_LIMIT"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			cfg.History.Limit = limit
		}
	}
	if v := os.Getenv("ANVIL_HISTORY_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.History.RetentionDays = days
		}
	}

	return cfg, nil
}

// Dir returns the path to ~/.anvil.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".anvil")
	}
	return filepath.Join(home, ".anvil")
}
