// Package publish exports a board as Markdown, optionally rendered for the terminal.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

const minRenderWidth = 20

// Render styles md for a terminal with glamour, wrapping at width. style is
// a glamour standard style ("dark", "light", "notty"); empty means "dark".
func Render(md string, width int, style string) (string, error) {
	style = strings.ToLower(strings.TrimSpace(style))
	if style == "" {
		style = styles.DarkStyle
	}
	if _, ok := styles.DefaultStyles[style]; !ok {
		return "", errors.New("unknown markdown style: " + style)
	}
	r, err := glamour.NewTermRenderer(
		// A fixed style; auto detection queries the terminal and can block.
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width, minRenderWidth)),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// WriteFile writes md to path, refusing to replace an existing file unless
// overwrite is set.
func WriteFile(path, md string, overwrite bool) error {
	path = filepath.Clean(strings.TrimSpace(path))
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(md), 0o644)
}
