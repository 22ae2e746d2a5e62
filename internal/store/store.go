package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CorruptionError is returned by Load when the data file exists but cannot be
// understood. The file is left untouched.
type CorruptionError struct {
	Path string
	Err  error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("data file %s is corrupted: %v", e.Path, e.Err)
}

func (e *CorruptionError) Unwrap() error { return e.Err }

func IsCorruption(err error) bool {
	var ce *CorruptionError
	return errors.As(err, &ce)
}

// Store reads and writes the board document at Path.
type Store struct {
	Path     string
	Defaults Defaults
}

func New(path string, d Defaults) Store {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultDataFile
	}
	return Store{Path: path, Defaults: d}
}

func (s Store) BackupPath() string { return s.Path + ".bak" }

// Load reads the board. A missing or blank file yields a fresh default board.
// The second result reports whether the document was upgraded or repaired and
// should be written back before anything else happens.
func (s Store) Load() (*Board, bool, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewBoard(s.Defaults), false, nil
		}
		return nil, false, err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return NewBoard(s.Defaults), false, nil
	}
	if err := validateDocument(b); err != nil {
		return nil, false, &CorruptionError{Path: s.Path, Err: err}
	}
	w, err := decodeBoard(b)
	if err != nil {
		return nil, false, &CorruptionError{Path: s.Path, Err: err}
	}
	return upgrade(w, s.Defaults)
}

// Save replaces the data file with b. The previous content is kept as
// BackupPath (best effort).
func (s Store) Save(b *Board) error {
	if b == nil {
		return errors.New("save: nil board")
	}
	data, err := encodeBoard(b)
	if err != nil {
		return fmt.Errorf("encode board: %w", err)
	}
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	base := filepath.Base(s.Path)
	if prev, err := os.ReadFile(s.Path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, base+".bak.*.tmp", s.BackupPath(), prev, 0o644)
	}
	if err := atomicWriteFile(dir, base+".*.tmp", s.Path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.Path, err)
	}
	return nil
}
