// Package config loads kanby settings from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"kanby/internal/logging"
	"kanby/internal/store"
)

const (
	DefaultLogLevel = "info"
	fileName        = "config.toml"
	appDir          = "kanby"
)

// Config holds every setting. Zero values are filled from Default before the
// file is decoded, so a key missing from the file keeps its default.
type Config struct {
	DataFile       string   `toml:"data_file"`
	DefaultProject string   `toml:"default_project"`
	DefaultColumns []string `toml:"default_columns"`

	Log     LogConfig     `toml:"log"`
	History HistoryConfig `toml:"history"`
	UI      UIConfig      `toml:"ui"`

	// Path is the file the config was read from; empty when none was found.
	Path string `toml:"-"`
	// Unknown lists keys in the file that no setting uses.
	Unknown []string `toml:"-"`
}

type LogConfig struct {
	// File receives log output. Empty disables logging in the interactive board.
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type HistoryConfig struct {
	Enabled bool `toml:"enabled"`
	// File defaults to the data file name with a ".history.sqlite" extension.
	File string `toml:"file"`
}

type UIConfig struct {
	Color bool `toml:"color"`
	// ColumnWidth fixes the width of each column; 0 divides the terminal evenly.
	ColumnWidth int `toml:"column_width"`
}

func Default() *Config {
	return &Config{
		DataFile:       store.DefaultDataFile,
		DefaultProject: store.DefaultProjectName,
		DefaultColumns: append([]string(nil), store.DefaultColumns...),
		Log:            LogConfig{Level: DefaultLogLevel},
		History:        HistoryConfig{Enabled: true},
		UI:             UIConfig{Color: true},
	}
}

// DefaultPath returns where the config file is looked up: $KANBY_CONFIG, then
// $XDG_CONFIG_HOME/kanby/config.toml, then ~/.config/kanby/config.toml.
func DefaultPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv("KANBY_CONFIG")); p != "" {
		return expandPath(p), nil
	}
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, appDir, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appDir, fileName), nil
}

// Load reads the config. An explicit path must exist; the default location
// is optional. Environment variables override file values.
func Load(explicitPath string) (*Config, error) {
	cfg := Default()

	path := strings.TrimSpace(explicitPath)
	required := path != ""
	if required {
		path = expandPath(path)
	} else {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("locating config: %w", err)
		}
		path = p
	}

	if err := loadFile(cfg, path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			path = ""
		} else {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}
	cfg.Path = path

	loadFromEnv(cfg)

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	for _, k := range md.Undecoded() {
		cfg.Unknown = append(cfg.Unknown, k.String())
	}
	return nil
}

func (c *Config) finalize() error {
	c.DataFile = expandPath(strings.TrimSpace(c.DataFile))
	if c.DataFile == "" {
		c.DataFile = store.DefaultDataFile
	}
	c.Log.File = expandPath(strings.TrimSpace(c.Log.File))
	c.History.File = expandPath(strings.TrimSpace(c.History.File))
	return c.Validate()
}

func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.UI.ColumnWidth < 0 {
		return fmt.Errorf("ui.column_width: must not be negative, got %d", c.UI.ColumnWidth)
	}
	if strings.TrimSpace(c.DefaultProject) == store.MetaKey {
		return fmt.Errorf("default_project: %q is reserved", store.MetaKey)
	}
	seen := map[string]bool{}
	for _, col := range c.DefaultColumns {
		col = strings.TrimSpace(col)
		if col == "" {
			return errors.New("default_columns: column names must not be empty")
		}
		if seen[col] {
			return fmt.Errorf("default_columns: duplicate column %q", col)
		}
		seen[col] = true
	}
	return nil
}

// StoreDefaults is the shape new projects and first-run boards get.
func (c *Config) StoreDefaults() store.Defaults {
	return store.Defaults{Project: c.DefaultProject, Columns: c.DefaultColumns}
}

// HistoryPath returns the history database path, or "" when history is off.
func (c *Config) HistoryPath() string {
	if !c.History.Enabled {
		return ""
	}
	if c.History.File != "" {
		return c.History.File
	}
	return store.DefaultHistoryPath(c.DataFile)
}
