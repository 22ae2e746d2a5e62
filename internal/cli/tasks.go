package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"kanby/internal/model"
	"kanby/internal/mutate"
	"kanby/internal/store"
)

type taskOut struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Priority string `json:"priority"`
	Project  string `json:"project,omitempty"`
	Column   string `json:"column,omitempty"`
	Position int    `json:"position,omitempty"`
}

type columnOut struct {
	Name  string    `json:"name"`
	Tasks []taskOut `json:"tasks"`
}

type taskList struct {
	Project string      `json:"project"`
	Columns []columnOut `json:"columns"`
}

type taskListOut struct {
	Data taskList `json:"data"`
}

func (l taskListOut) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", l.Data.Project)
	for _, c := range l.Data.Columns {
		fmt.Fprintf(&b, "\n%s (%d)\n", c.Name, len(c.Tasks))
		if len(c.Tasks) == 0 {
			b.WriteString("  [No tasks]\n")
			continue
		}
		for _, t := range c.Tasks {
			fmt.Fprintf(&b, "  %s [%s] %s\n", t.ID, model.Priority(t.Priority).Abbrev(), t.Title)
		}
	}
	return b.String()
}

func toTaskOut(b *store.Board, loc store.TaskLocation) taskOut {
	p := &b.Projects[loc.Project]
	t := p.Columns[loc.Column].Tasks[loc.Index]
	return taskOut{
		ID:       t.ID,
		Title:    t.Title,
		Priority: string(t.Priority),
		Project:  p.Name,
		Column:   p.Columns[loc.Column].Name,
		Position: loc.Index + 1,
	}
}

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Task commands",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksEditCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	cmd.AddCommand(newTasksMoveCmd(app))
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tasks of a project, column by column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(func(sess *store.Session) error {
				b := sess.Board()
				p := b.CurrentProject()
				if project != "" {
					var ok bool
					if p, ok = b.FindProject(project); !ok {
						return mutate.NotFoundError{Kind: "project", ID: project}
					}
				}
				out := taskList{Project: p.Name, Columns: make([]columnOut, 0, len(p.Columns))}
				for _, c := range p.Columns {
					co := columnOut{Name: c.Name, Tasks: make([]taskOut, 0, len(c.Tasks))}
					for _, t := range c.Tasks {
						co.Tasks = append(co.Tasks, taskOut{ID: t.ID, Title: t.Title, Priority: string(t.Priority)})
					}
					out.Columns = append(out.Columns, co)
				}
				return writeOut(cmd, app, taskListOut{Data: out})
			})
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "Project (default: current)")
	return cmd
}

func newTasksAddCmd(app *App) *cobra.Command {
	var project, column, priority string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task to the end of a column",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prio, err := parseOptionalPriority(priority)
			if err != nil {
				return err
			}
			title := strings.Join(args, " ")
			return app.withSession(func(sess *store.Session) error {
				var res mutate.TaskResult
				err := sess.Commit("task.add", func(b *store.Board) (store.Change, error) {
					r, err := mutate.AddTask(b, project, column, title, prio)
					res = r
					return r.Change(), err
				})
				if err != nil {
					return err
				}
				return writeOut(cmd, app, resultOut{
					Data:    toTaskOut(sess.Board(), res.Location),
					Message: fmt.Sprintf("Added task: %s (%s)", res.Task.Title, res.Task.ID),
				})
			})
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "Project (default: current)")
	cmd.Flags().StringVar(&column, "column", "", "Column (default: first)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Priority: low, mid or high (default: mid)")
	return cmd
}

func newTasksEditCmd(app *App) *cobra.Command {
	var title, priority string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task's title or priority",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prio, err := parseOptionalPriority(priority)
			if err != nil {
				return err
			}
			id := args[0]
			return app.withSession(func(sess *store.Session) error {
				var res mutate.TaskResult
				err := sess.Commit("task.edit", func(b *store.Board) (store.Change, error) {
					newTitle := title
					if !cmd.Flags().Changed("title") {
						loc, ok := b.FindTask(id)
						if !ok {
							return store.Change{}, mutate.NotFoundError{Kind: "task", ID: id}
						}
						newTitle = b.Task(loc).Title
					}
					r, err := mutate.EditTask(b, id, newTitle, prio)
					res = r
					return r.Change(), err
				})
				if err != nil {
					return err
				}
				msg := "Task updated"
				if !res.Changed {
					msg = "Task unchanged"
				}
				return writeOut(cmd, app, resultOut{Data: toTaskOut(sess.Board(), res.Location), Message: msg})
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "New priority: low, mid or high")
	return cmd
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(func(sess *store.Session) error {
				var res mutate.TaskResult
				err := sess.Commit("task.delete", func(b *store.Board) (store.Change, error) {
					r, err := mutate.DeleteTask(b, args[0])
					res = r
					return r.Change(), err
				})
				if err != nil {
					return err
				}
				return writeOut(cmd, app, resultOut{
					Data:    taskOut{ID: res.Task.ID, Title: res.Task.Title, Priority: string(res.Task.Priority)},
					Message: "Task deleted",
				})
			})
		},
	}
}

func newTasksMoveCmd(app *App) *cobra.Command {
	var column string
	var position int
	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move a task to another column or position",
		Long: strings.TrimSpace(`
Move a task within its project. --column defaults to the task's current
column; --position is 1-based and defaults to the end of the column.
Positions past either end are clamped.`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return app.withSession(func(sess *store.Session) error {
				var res mutate.MoveResult
				var project string
				err := sess.Commit("task.move", func(b *store.Board) (store.Change, error) {
					loc, ok := b.FindTask(id)
					if !ok {
						return store.Change{}, mutate.NotFoundError{Kind: "task", ID: id}
					}
					p := &b.Projects[loc.Project]
					project = p.Name
					target := mutate.Location{Column: loc.Column, Index: math.MaxInt32}
					if column != "" {
						ci, err := mutate.ResolveColumn(p, column)
						if err != nil {
							return store.Change{}, err
						}
						target.Column = ci
					}
					if position > 0 {
						target.Index = position - 1
					}
					r, err := mutate.MoveTask(b, project, id, target)
					if err != nil {
						return store.Change{}, err
					}
					res = r
					return store.Change{
						Project: project,
						Entity:  id,
						Payload: map[string]any{
							"from": []int{r.From.Column, r.From.Index},
							"to":   []int{r.To.Column, r.To.Index},
						},
					}, nil
				})
				if err != nil {
					return err
				}
				b := sess.Board()
				pi := b.ProjectIndex(project)
				msg := "Task moved successfully!"
				if !res.Moved {
					msg = "Task position unchanged"
				}
				return writeOut(cmd, app, resultOut{
					Data:    toTaskOut(b, store.TaskLocation{Project: pi, Column: res.To.Column, Index: res.To.Index}),
					Message: msg,
				})
			})
		},
	}
	cmd.Flags().StringVar(&column, "column", "", "Target column (default: current column)")
	cmd.Flags().IntVar(&position, "position", 0, "Target position, 1-based (default: end)")
	return cmd
}

func parseOptionalPriority(s string) (model.Priority, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return mutate.ParsePriority(s)
}
