package mutate

import (
	"strings"

	"kanby/internal/model"
	"kanby/internal/store"
)

type TaskResult struct {
	Result
	Task     model.Task
	Location store.TaskLocation
}

// ParsePriority accepts L/M/H and any case-insensitive prefix of Low/Mid/High.
func ParsePriority(s string) (model.Priority, error) {
	p, ok := model.ParsePriority(s)
	if !ok {
		return "", ValidationError{Field: "priority", Reason: "expected Low, Mid or High, got " + quote(s)}
	}
	return p, nil
}

func quote(s string) string { return "\"" + s + "\"" }

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ValidationError{Field: "title", Reason: "must not be empty"}
	}
	return title, nil
}

func resolvePriority(p model.Priority, fallback model.Priority) (model.Priority, error) {
	if p == "" {
		return fallback, nil
	}
	if p.Valid() {
		return p, nil
	}
	return ParsePriority(string(p))
}

// resolveProject returns the named project, or the current one when name is empty.
func resolveProject(b *store.Board, name string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		if p := b.CurrentProject(); p != nil {
			return p, nil
		}
		return nil, NotFoundError{Kind: "project", ID: "(current)"}
	}
	p, ok := b.FindProject(name)
	if !ok {
		return nil, NotFoundError{Kind: "project", ID: name}
	}
	return p, nil
}

// ResolveColumn returns the index of the named column, matching exactly first
// and then case-insensitively. Empty name means the first column.
func ResolveColumn(p *model.Project, name string) (int, error) {
	if len(p.Columns) == 0 {
		return -1, NotFoundError{Kind: "column", ID: name}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, nil
	}
	ci := p.ColumnIndex(name)
	if ci < 0 {
		for i, c := range p.Columns {
			if strings.EqualFold(c.Name, name) {
				return i, nil
			}
		}
		return -1, NotFoundError{Kind: "column", ID: name}
	}
	return ci, nil
}

// AddTask appends a new task to the end of a column. Empty project means the
// current project; empty column means the first column.
func AddTask(b *store.Board, project, column, title string, priority model.Priority) (TaskResult, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return TaskResult{}, err
	}
	priority, err = resolvePriority(priority, model.DefaultPriority)
	if err != nil {
		return TaskResult{}, err
	}
	p, err := resolveProject(b, project)
	if err != nil {
		return TaskResult{}, err
	}
	ci, err := ResolveColumn(p, column)
	if err != nil {
		return TaskResult{}, err
	}
	id, err := store.NewTaskID(b)
	if err != nil {
		return TaskResult{}, err
	}
	t := model.Task{ID: id, Title: title, Priority: priority}
	p.Columns[ci].Tasks = append(p.Columns[ci].Tasks, t)
	return TaskResult{
		Result: Result{
			Project: p.Name,
			Entity:  id,
			Changed: true,
			EventPayload: map[string]any{
				"column":   p.Columns[ci].Name,
				"title":    t.Title,
				"priority": string(t.Priority),
			},
		},
		Task:     t,
		Location: store.TaskLocation{Project: b.ProjectIndex(p.Name), Column: ci, Index: len(p.Columns[ci].Tasks) - 1},
	}, nil
}

// EditTask replaces a task's title and priority in place. An empty priority
// keeps the current one.
func EditTask(b *store.Board, id, title string, priority model.Priority) (TaskResult, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return TaskResult{}, err
	}
	loc, ok := b.FindTask(id)
	if !ok {
		return TaskResult{}, NotFoundError{Kind: "task", ID: id}
	}
	t := b.Task(loc)
	priority, err = resolvePriority(priority, t.Priority)
	if err != nil {
		return TaskResult{}, err
	}
	res := TaskResult{
		Result:   Result{Project: b.Projects[loc.Project].Name, Entity: t.ID},
		Location: loc,
	}
	if t.Title == title && t.Priority == priority {
		res.Task = *t
		return res, nil
	}
	t.Title = title
	t.Priority = priority
	res.Changed = true
	res.Task = *t
	res.EventPayload = map[string]any{"title": t.Title, "priority": string(t.Priority)}
	return res, nil
}

func DeleteTask(b *store.Board, id string) (TaskResult, error) {
	loc, ok := b.FindTask(id)
	if !ok {
		return TaskResult{}, NotFoundError{Kind: "task", ID: id}
	}
	p := &b.Projects[loc.Project]
	col := &p.Columns[loc.Column]
	t := col.Tasks[loc.Index]
	col.Tasks = append(col.Tasks[:loc.Index], col.Tasks[loc.Index+1:]...)
	return TaskResult{
		Result: Result{
			Project:      p.Name,
			Entity:       t.ID,
			Changed:      true,
			EventPayload: map[string]any{"column": col.Name, "title": t.Title},
		},
		Task:     t,
		Location: loc,
	}, nil
}
