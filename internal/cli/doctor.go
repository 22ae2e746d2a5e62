package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// ErrDoctorIssuesFound makes doctor exit non-zero when the data file is unusable.
var ErrDoctorIssuesFound = errors.New("doctor found issues")

type doctorReport struct {
	Path         string `json:"path"`
	Exists       bool   `json:"exists"`
	OK           bool   `json:"ok"`
	NeedsUpgrade bool   `json:"needsUpgrade"`
	Projects     int    `json:"projects"`
	Tasks        int    `json:"tasks"`
	Backup       string `json:"backup,omitempty"`
	History      string `json:"history,omitempty"`
	Error        string `json:"error,omitempty"`
}

type doctorOut struct {
	Data doctorReport `json:"data"`
}

func (d doctorOut) Text() string {
	r := d.Data
	var b strings.Builder
	fmt.Fprintf(&b, "data file: %s\n", r.Path)
	switch {
	case !r.OK:
		fmt.Fprintf(&b, "status:    CORRUPT (left untouched)\nerror:     %s\n", r.Error)
	case !r.Exists:
		b.WriteString("status:    missing (a default board is created on first change)\n")
	case r.NeedsUpgrade:
		b.WriteString("status:    ok, will be upgraded on next open\n")
	default:
		b.WriteString("status:    ok\n")
	}
	if r.OK {
		fmt.Fprintf(&b, "projects:  %d\ntasks:     %d\n", r.Projects, r.Tasks)
	}
	if r.Backup != "" {
		fmt.Fprintf(&b, "backup:    %s\n", r.Backup)
	}
	if r.History != "" {
		fmt.Fprintf(&b, "history:   %s\n", r.History)
	}
	return b.String()
}

func newDoctorCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the data file without modifying it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := app.store()
			r := doctorReport{Path: st.Path}
			if _, err := os.Stat(st.Path); err == nil {
				r.Exists = true
			}
			if _, err := os.Stat(st.BackupPath()); err == nil {
				r.Backup = st.BackupPath()
			}
			if h, ok := app.history(); ok {
				r.History = h.Path
				if _, err := h.Recent(cmd.Context(), 1); err != nil {
					r.History += " (unreadable: " + err.Error() + ")"
				}
			}

			b, upgraded, err := st.Load()
			if err != nil {
				r.Error = err.Error()
			} else {
				r.OK = true
				r.NeedsUpgrade = upgraded && r.Exists
				r.Projects = len(b.Projects)
				r.Tasks = b.TaskCount()
			}
			if werr := writeOut(cmd, app, doctorOut{Data: r}); werr != nil {
				return werr
			}
			if !r.OK {
				return ErrDoctorIssuesFound
			}
			return nil
		},
	}
}
