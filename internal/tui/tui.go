// Package tui is the interactive kanban board.
package tui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"kanby/internal/store"
)

type Options struct {
	Logger *log.Logger
	// Color=false renders without colour.
	Color bool
	// ColumnWidth fixes every column's width; 0 splits the terminal evenly.
	ColumnWidth int

	// Input and Output default to the terminal.
	Input  io.Reader
	Output io.Writer
}

// Run shows the board until the user quits or ctx is cancelled. Every change
// is committed through sess as it happens; the caller closes sess afterwards.
func Run(ctx context.Context, sess *store.Session, opts Options) error {
	applyColorProfilePreference(opts.Color)
	m := newAppModel(sess, opts)
	progOpts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}
	_, err := tea.NewProgram(m, progOpts...).Run()
	return exitError(ctx, err)
}

// exitError treats a program stopped by ctx as a clean exit.
func exitError(ctx context.Context, err error) error {
	if err == nil || ctx.Err() == nil {
		return err
	}
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
