package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"kanby/internal/store"
)

type historyOut struct {
	Data []store.HistoryEvent `json:"data"`
}

func (h historyOut) Text() string {
	if len(h.Data) == 0 {
		return "No history"
	}
	var b strings.Builder
	for _, ev := range h.Data {
		fmt.Fprintf(&b, "%s  %-15s %s", ev.At.Local().Format(time.DateTime), ev.Type, ev.Project)
		if ev.Entity != "" && ev.Entity != ev.Project {
			fmt.Fprintf(&b, "  %s", ev.Entity)
		}
		if len(ev.Payload) > 0 {
			fmt.Fprintf(&b, "  %s", ev.Payload)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func newHistoryCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent changes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, ok := app.history()
			if !ok {
				return fmt.Errorf("history is disabled (history.enabled = false)")
			}
			events, err := h.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if events == nil {
				events = []store.HistoryEvent{}
			}
			return writeOut(cmd, app, historyOut{Data: events})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of events to show")
	return cmd
}
