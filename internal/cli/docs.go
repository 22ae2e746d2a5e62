package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"kanby/internal/docs"
	"kanby/internal/publish"
)

func newDocsCmd(app *App) *cobra.Command {
	var (
		raw   bool
		style string
	)
	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show built-in documentation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				topics := docs.Topics()
				return writeOut(cmd, app, resultOut{
					Data:    map[string]any{"topics": topics},
					Message: strings.Join(topics, "\n"),
				})
			}

			topic := args[0]
			body, ok := docs.Get(topic)
			if !ok {
				return fmt.Errorf("unknown docs topic: %q (run `kanby docs` to list topics)", topic)
			}
			if raw {
				_, err := io.WriteString(cmd.OutOrStdout(), body)
				return err
			}
			if strings.EqualFold(strings.TrimSpace(app.Format), "json") {
				return writeOut(cmd, app, resultOut{Data: map[string]any{"topic": topic, "markdown": body}})
			}
			if style == "" && !app.cfg.UI.Color {
				style = "notty"
			}
			out, err := publish.Render(body, terminalWidth(cmd.OutOrStdout()), style)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown")
	cmd.Flags().StringVar(&style, "style", "", "Render style: dark, light or notty (default: dark)")
	return cmd
}
