package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"kanby/internal/store"
)

// isolate points every lookup at an empty temp dir so the user's real config
// and environment cannot leak into a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("KANBY_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("KANBY_DATA_FILE", "")
	t.Setenv("KANBY_LOG_FILE", "")
	t.Setenv("KANBY_LOG_LEVEL", "")
	t.Setenv("KANBY_HISTORY", "")
	t.Setenv("NO_COLOR", "")
	return dir
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("Path: got %q, want empty", cfg.Path)
	}
	if cfg.DataFile != store.DefaultDataFile {
		t.Errorf("DataFile: got %q", cfg.DataFile)
	}
	if !reflect.DeepEqual(cfg.DefaultColumns, store.DefaultColumns) {
		t.Errorf("DefaultColumns: got %v", cfg.DefaultColumns)
	}
	if !cfg.History.Enabled || !cfg.UI.Color || cfg.Log.Level != DefaultLogLevel {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if got := cfg.HistoryPath(); got != "kanby_data.history.sqlite" {
		t.Errorf("HistoryPath: got %q", got)
	}
}

func TestLoad_XDGFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "kanby", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	content := `
data_file = "/tmp/board.json"
default_project = "Inbox"
default_columns = ["Backlog", "Doing", "Review", "Done"]
mystery = 1

[log]
file = "~/kanby.log"
level = "debug"

[history]
enabled = false

[ui]
color = false
column_width = 30
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != path {
		t.Errorf("Path: got %q, want %q", cfg.Path, path)
	}
	if cfg.DataFile != "/tmp/board.json" || cfg.DefaultProject != "Inbox" {
		t.Errorf("got %+v", cfg)
	}
	if len(cfg.DefaultColumns) != 4 || cfg.DefaultColumns[2] != "Review" {
		t.Errorf("DefaultColumns: got %v", cfg.DefaultColumns)
	}
	if cfg.Log.File != filepath.Join(dir, "kanby.log") || cfg.Log.Level != "debug" {
		t.Errorf("Log: got %+v", cfg.Log)
	}
	if cfg.HistoryPath() != "" {
		t.Errorf("history should be disabled")
	}
	if cfg.UI.Color || cfg.UI.ColumnWidth != 30 {
		t.Errorf("UI: got %+v", cfg.UI)
	}
	if !reflect.DeepEqual(cfg.Unknown, []string{"mystery"}) {
		t.Errorf("Unknown: got %v", cfg.Unknown)
	}
	d := cfg.StoreDefaults()
	if d.Project != "Inbox" || len(d.Columns) != 4 {
		t.Errorf("StoreDefaults: got %+v", d)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(path, []byte("data_file = \"from-file.json\"\n[log]\nlevel = \"error\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("KANBY_CONFIG", path)
	t.Setenv("KANBY_DATA_FILE", "from-env.json")
	t.Setenv("KANBY_LOG_LEVEL", "warn")
	t.Setenv("NO_COLOR", "1")
	t.Setenv("KANBY_HISTORY", "off")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != path {
		t.Errorf("Path: got %q", cfg.Path)
	}
	if cfg.DataFile != "from-env.json" || cfg.Log.Level != "warn" {
		t.Errorf("env did not override: %+v", cfg)
	}
	if cfg.UI.Color || cfg.History.Enabled {
		t.Errorf("NO_COLOR / KANBY_HISTORY ignored: %+v", cfg)
	}
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	dir := isolate(t)
	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatalf("expected error for a missing explicit config")
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"syntax":           "data_file = ",
		"bad level":        "[log]\nlevel = \"loud\"\n",
		"negative width":   "[ui]\ncolumn_width = -1\n",
		"duplicate column": "default_columns = [\"A\", \"A\"]\n",
		"empty column":     "default_columns = [\"A\", \" \"]\n",
		"reserved project": "default_project = \"_meta\"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := isolate(t)
			path := filepath.Join(dir, "c.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	dir := isolate(t)

	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath: %v", err)
	}
	if want := filepath.Join(dir, "kanby", "config.toml"); got != want {
		t.Errorf("XDG: got %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	got, _ = DefaultPath()
	if want := filepath.Join(dir, ".config", "kanby", "config.toml"); got != want {
		t.Errorf("home: got %q, want %q", got, want)
	}

	t.Setenv("KANBY_CONFIG", "/etc/kanby.toml")
	got, _ = DefaultPath()
	if got != "/etc/kanby.toml" {
		t.Errorf("KANBY_CONFIG: got %q", got)
	}
}
