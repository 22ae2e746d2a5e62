// Package format writes command results for the CLI.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Texter is implemented by results that have a human-readable form.
type Texter interface {
	Text() string
}

// Write writes v in the requested format.
//
// Supported formats:
// - json (default): a strict JSON document
// - text: v.Text() when v implements Texter, otherwise indented JSON
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "text":
		if t, ok := v.(Texter); ok {
			s := t.Text()
			if s != "" && !strings.HasSuffix(s, "\n") {
				s += "\n"
			}
			_, err := io.WriteString(w, s)
			return err
		}
		return WriteJSON(w, v, true)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
