package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

var ErrSessionClosed = errors.New("session closed")

const historyTimeout = 2 * time.Second

// Change describes what a committed operation touched. It feeds the history log.
type Change struct {
	Project string
	Entity  string
	Payload any
}

// Session owns the current board for one process. Every mutation goes through
// Commit, which persists before publishing.
type Session struct {
	store   Store
	board   *Board
	dirty   bool
	closed  bool
	history *History
	logger  *log.Logger
}

type SessionOption func(*Session)

func WithLogger(l *log.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHistory appends an event to h after every successful commit.
func WithHistory(h History) SessionOption {
	return func(s *Session) { s.history = &h }
}

// OpenSession loads the board. An upgraded or repaired document is written
// back before OpenSession returns.
func OpenSession(st Store, opts ...SessionOption) (*Session, error) {
	s := &Session{store: st, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(s)
	}
	b, upgraded, err := st.Load()
	if err != nil {
		return nil, err
	}
	s.board = b
	if upgraded {
		s.dirty = true
		s.logger.Info("upgrading data file", "path", st.Path, "version", BoardVersion)
		if err := s.Flush(); err != nil {
			return nil, fmt.Errorf("persist upgraded board: %w", err)
		}
	}
	return s, nil
}

// Board returns the current board. Callers must treat it as read-only and
// mutate through Commit.
func (s *Session) Board() *Board { return s.board }

func (s *Session) Store() Store { return s.store }

func (s *Session) Dirty() bool { return s.dirty }

// Commit applies fn to a copy of the board, saves the copy and only then makes
// it current. If fn or the save fails, the current board is unchanged.
func (s *Session) Commit(op string, fn func(*Board) (Change, error)) error {
	if s.closed {
		return ErrSessionClosed
	}
	next := s.board.Clone()
	ch, err := fn(next)
	if err != nil {
		return err
	}
	if err := s.store.Save(next); err != nil {
		s.logger.Error("save failed", "op", op, "path", s.store.Path, "err", err)
		return err
	}
	s.board = next
	s.dirty = false
	s.logger.Debug("committed", "op", op, "project", ch.Project, "entity", ch.Entity)
	s.record(op, ch)
	return nil
}

func (s *Session) record(op string, ch Change) {
	if s.history == nil {
		return
	}
	ev := HistoryEvent{Type: op, Project: ch.Project, Entity: ch.Entity}
	if ch.Payload != nil {
		b, err := json.Marshal(ch.Payload)
		if err != nil {
			s.logger.Warn("history payload", "op", op, "err", err)
		} else {
			ev.Payload = b
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()
	if err := s.history.Append(ctx, ev); err != nil {
		s.logger.Warn("history append failed", "op", op, "path", s.history.Path, "err", err)
	}
}

// Flush saves the board if it has changes that are not on disk yet.
func (s *Session) Flush() error {
	if !s.dirty {
		return nil
	}
	if err := s.store.Save(s.board); err != nil {
		return err
	}
	s.dirty = false
	s.logger.Debug("flushed", "path", s.store.Path)
	return nil
}

// Close flushes pending changes. Further commits fail with ErrSessionClosed.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	err := s.Flush()
	s.closed = true
	return err
}
