// Package logging builds the charmbracelet/log loggers used by the CLI and the board.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

const prefix = "kanby"

// ParseLevel parses debug, info, warn (or warning), error and fatal.
// Empty means info.
func ParseLevel(level string) (log.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "":
		return log.InfoLevel, nil
	case "warning":
		return log.WarnLevel, nil
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
	return lvl, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// Console logs human-readable lines to w (normally stderr) for CLI commands.
func Console(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:     level,
		Formatter: log.TextFormatter,
		Prefix:    prefix,
	})
}

// OpenFile appends logfmt lines to path, creating parent directories. The
// interactive board owns the terminal, so its logs go here. The returned
// closer must be called on exit.
func OpenFile(path string, level log.Level) (*log.Logger, io.Closer, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Discard(), nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	l := log.NewWithOptions(f, log.Options{
		Level:           level,
		Formatter:       log.LogfmtFormatter,
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	return l, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
