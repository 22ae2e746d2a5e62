package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// HistoryEvent is one committed operation.
type HistoryEvent struct {
	ID      string          `json:"id"`
	At      time.Time       `json:"at"`
	Type    string          `json:"type"`
	Project string          `json:"project,omitempty"`
	Entity  string          `json:"entity,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// History is an append-only operation log kept in a SQLite file next to the
// board. It is informational: the board document stays the source of truth.
type History struct {
	Path string
}

// DefaultHistoryPath derives the history file from the data file path:
// "kanby_data.json" -> "kanby_data.history.sqlite".
func DefaultHistoryPath(dataFile string) string {
	dataFile = strings.TrimSpace(dataFile)
	if dataFile == "" {
		dataFile = DefaultDataFile
	}
	return strings.TrimSuffix(dataFile, filepath.Ext(dataFile)) + ".history.sqlite"
}

func (h History) open(ctx context.Context) (*sql.DB, error) {
	if strings.TrimSpace(h.Path) == "" {
		return nil, errors.New("history: no path")
	}
	if err := os.MkdirAll(filepath.Dir(h.Path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", h.Path)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateHistory(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// openReadOnly opens an existing history file without creating, migrating or
// touching it. Append closes its connection after every event, so the WAL is
// already checkpointed and an immutable open sees every row.
func (h History) openReadOnly() (*sql.DB, error) {
	abs, err := filepath.Abs(h.Path)
	if err != nil {
		return nil, err
	}
	u := url.URL{Scheme: "file", OmitHost: true, Path: filepath.ToSlash(abs), RawQuery: "mode=ro&immutable=1"}
	return sql.Open("sqlite", u.String())
}

func migrateHistory(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL,
			project TEXT NOT NULL,
			entity TEXT NOT NULL,
			payload_json TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_created ON events(created_at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// Append records ev, filling in ID and At when unset.
func (h History) Append(ctx context.Context, ev HistoryEvent) error {
	db, err := h.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	payload := string(ev.Payload)
	if payload == "" {
		payload = "null"
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO events(event_id, type, project, entity, payload_json, created_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.Type, ev.Project, ev.Entity, payload, ev.At.UnixMilli(),
	)
	return err
}

// Recent returns up to limit events, newest first. limit <= 0 means all.
// A history file that does not exist yet has no events. Recent never writes.
func (h History) Recent(ctx context.Context, limit int) ([]HistoryEvent, error) {
	if _, err := os.Stat(h.Path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	db, err := h.openReadOnly()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := `SELECT event_id, type, project, entity, payload_json, created_at_unixms
	FROM events
	ORDER BY seq DESC`
	var rows *sql.Rows
	if limit > 0 {
		rows, err = db.QueryContext(ctx, q+` LIMIT ?`, limit)
	} else {
		rows, err = db.QueryContext(ctx, q)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryEvent
	for rows.Next() {
		var (
			ev      HistoryEvent
			payload string
			atMs    int64
		)
		if err := rows.Scan(&ev.ID, &ev.Type, &ev.Project, &ev.Entity, &payload, &atMs); err != nil {
			return nil, err
		}
		ev.At = time.UnixMilli(atMs)
		if payload != "null" {
			ev.Payload = json.RawMessage(payload)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
