package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kanby/internal/mutate"
	"kanby/internal/store"
)

type projectSummary struct {
	Name    string          `json:"name"`
	Current bool            `json:"current"`
	Columns []columnSummary `json:"columns"`
}

type columnSummary struct {
	Name  string `json:"name"`
	Tasks int    `json:"tasks"`
}

type projectList struct {
	Data []projectSummary `json:"data"`
}

func (l projectList) Text() string {
	var b strings.Builder
	for _, p := range l.Data {
		mark := " "
		if p.Current {
			mark = "*"
		}
		counts := make([]string, 0, len(p.Columns))
		for _, c := range p.Columns {
			counts = append(counts, fmt.Sprintf("%s %d", c.Name, c.Tasks))
		}
		fmt.Fprintf(&b, "%s %s  (%s)\n", mark, p.Name, strings.Join(counts, ", "))
	}
	return b.String()
}

// resultOut is the envelope for a single mutation.
type resultOut struct {
	Data    any    `json:"data"`
	Message string `json:"-"`
}

func (r resultOut) Text() string { return r.Message }

func summarizeProjects(b *store.Board) projectList {
	cur := b.CurrentProject().Name
	out := projectList{Data: make([]projectSummary, 0, len(b.Projects))}
	for _, p := range b.Projects {
		ps := projectSummary{Name: p.Name, Current: p.Name == cur}
		for _, c := range p.Columns {
			ps.Columns = append(ps.Columns, columnSummary{Name: c.Name, Tasks: len(c.Tasks)})
		}
		out.Data = append(out.Data, ps)
	}
	return out
}

// commitResult runs a mutate operation through sess.
func commitResult(sess *store.Session, op string, fn func(*store.Board) (mutate.Result, error)) (mutate.Result, error) {
	var res mutate.Result
	err := sess.Commit(op, func(b *store.Board) (store.Change, error) {
		r, err := fn(b)
		if err != nil {
			return store.Change{}, err
		}
		res = r
		return r.Change(), nil
	})
	return res, err
}

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Project commands",
	}
	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsCreateCmd(app))
	cmd.AddCommand(newProjectsRenameCmd(app))
	cmd.AddCommand(newProjectsDeleteCmd(app))
	cmd.AddCommand(newProjectsUseCmd(app))
	return cmd
}

func newProjectsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(func(sess *store.Session) error {
				return writeOut(cmd, app, summarizeProjects(sess.Board()))
			})
		},
	}
}

func newProjectsCreateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project and make it current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(func(sess *store.Session) error {
				res, err := commitResult(sess, "project.create", func(b *store.Board) (mutate.Result, error) {
					return mutate.CreateProject(b, args[0])
				})
				if err != nil {
					return err
				}
				return writeOut(cmd, app, resultOut{
					Data:    map[string]any{"name": res.Project},
					Message: "Created project: " + res.Project,
				})
			})
		},
	}
}

func newProjectsRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(func(sess *store.Session) error {
				res, err := commitResult(sess, "project.rename", func(b *store.Board) (mutate.Result, error) {
					return mutate.RenameProject(b, args[0], args[1])
				})
				if err != nil {
					return err
				}
				msg := fmt.Sprintf("Renamed project: %s → %s", args[0], res.Project)
				if !res.Changed {
					msg = "Project name unchanged."
				}
				return writeOut(cmd, app, resultOut{
					Data:    map[string]any{"from": args[0], "to": res.Project, "changed": res.Changed},
					Message: msg,
				})
			})
		},
	}
}

func newProjectsDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a project and all of its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete %q without --yes", args[0])
			}
			return app.withSession(func(sess *store.Session) error {
				res, err := commitResult(sess, "project.delete", func(b *store.Board) (mutate.Result, error) {
					return mutate.DeleteProject(b, args[0])
				})
				if err != nil {
					return err
				}
				return writeOut(cmd, app, resultOut{
					Data:    map[string]any{"name": res.Project, "current": sess.Board().CurrentProject().Name},
					Message: "Deleted project: " + res.Project,
				})
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the deletion")
	return cmd
}

func newProjectsUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Make a project current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(func(sess *store.Session) error {
				res, err := commitResult(sess, "project.switch", func(b *store.Board) (mutate.Result, error) {
					return mutate.SwitchProject(b, args[0])
				})
				if err != nil {
					return err
				}
				return writeOut(cmd, app, resultOut{
					Data:    map[string]any{"current": res.Project},
					Message: "Switched to project: " + res.Project,
				})
			})
		},
	}
}
