package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"kanby/internal/tui"
)

func runTUI(cmd *cobra.Command, app *App) error {
	sess, err := app.openSession()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.logger.Info("board opened", "path", app.cfg.DataFile, "project", sess.Board().CurrentProject().Name)
	runErr := tui.Run(ctx, sess, tui.Options{
		Logger:      app.logger,
		Color:       app.cfg.UI.Color,
		ColumnWidth: app.cfg.UI.ColumnWidth,
	})
	closeErr := sess.Close()
	if closeErr != nil {
		app.logger.Error("final save failed", "path", app.cfg.DataFile, "err", closeErr)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	app.logger.Info("board closed")
	return closeErr
}
