package config

import (
	"os"
	"path/filepath"
	"strings"
)

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("KANBY_DATA_FILE"); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv("KANBY_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("KANBY_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("KANBY_HISTORY"); v != "" {
		cfg.History.Enabled = boolFromString(v)
	}
	// https://no-color.org: any non-empty value disables colour.
	if os.Getenv("NO_COLOR") != "" {
		cfg.UI.Color = false
	}
}

func boolFromString(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// expandPath expands a leading ~ and environment variables.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	expanded := os.ExpandEnv(p)
	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return expanded
		}
		return filepath.Join(home, strings.TrimPrefix(expanded[1:], "/"))
	}
	return expanded
}
