package store

import (
	"kanby/internal/model"
)

// upgrade brings a decoded document to BoardVersion and repairs anything the
// rest of the program relies on (unique ids, valid priorities, at least one
// project, a resolvable last project). It reports whether the board changed
// so the caller can persist the result once. Running it again over its own
// output changes nothing.
func upgrade(w wireBoard, d Defaults) (*Board, bool, error) {
	b := w.board
	b.defaults = d.normalized()
	changed := false

	if len(w.legacyColumns) > 0 {
		importLegacyColumns(b, w.legacyColumns)
		changed = true
	}
	if !w.hasMeta || b.Meta.Version < BoardVersion {
		changed = true
	}

	if len(b.Projects) == 0 {
		b.Projects = append(b.Projects, model.NewProject(b.defaults.Project, b.defaults.Columns))
		changed = true
	}
	for i := range b.Projects {
		if len(b.Projects[i].Columns) == 0 {
			b.Projects[i] = model.NewProject(b.Projects[i].Name, b.defaults.Columns)
			changed = true
		}
	}

	idsChanged, err := repairTaskIDs(b)
	if err != nil {
		return nil, false, err
	}
	if idsChanged {
		changed = true
	}
	if repairPriorities(b) {
		changed = true
	}

	if b.ProjectIndex(b.Meta.LastProject) < 0 {
		b.Meta.LastProject = b.Projects[0].Name
		changed = true
	}
	if b.Meta.Version < BoardVersion {
		b.Meta.Version = BoardVersion
	}
	return b, changed, nil
}

// importLegacyColumns moves the flat "column -> tasks" layout into the default
// project, which gets every default column. Tasks under a default column name
// land in that column; tasks under any other key go to the first column.
func importLegacyColumns(b *Board, cols []model.Column) {
	pi := b.ProjectIndex(b.defaults.Project)
	if pi < 0 {
		p := model.NewProject(b.defaults.Project, b.defaults.Columns)
		b.Projects = append([]model.Project{p}, b.Projects...)
		pi = 0
	}
	p := &b.Projects[pi]
	for _, name := range b.defaults.Columns {
		if p.ColumnIndex(name) < 0 {
			p.Columns = append(p.Columns, model.Column{Name: name, Tasks: []model.Task{}})
		}
	}
	for _, c := range cols {
		ci := p.ColumnIndex(c.Name)
		if ci < 0 {
			ci = 0
		}
		p.Columns[ci].Tasks = append(p.Columns[ci].Tasks, c.Tasks...)
	}
}

// repairTaskIDs gives every task without an id, or sharing one with an
// earlier task, a fresh id.
func repairTaskIDs(b *Board) (bool, error) {
	seen := map[string]bool{}
	changed := false
	for pi := range b.Projects {
		for ci := range b.Projects[pi].Columns {
			tasks := b.Projects[pi].Columns[ci].Tasks
			for ti := range tasks {
				id := tasks[ti].ID
				if id != "" && !seen[id] {
					seen[id] = true
					continue
				}
				fresh, err := freshID(b, seen)
				if err != nil {
					return false, err
				}
				tasks[ti].ID = fresh
				seen[fresh] = true
				changed = true
			}
		}
	}
	return changed, nil
}

func freshID(b *Board, seen map[string]bool) (string, error) {
	for {
		id, err := NewTaskID(b)
		if err != nil {
			return "", err
		}
		if !seen[id] {
			return id, nil
		}
	}
}

func repairPriorities(b *Board) bool {
	changed := false
	for pi := range b.Projects {
		for ci := range b.Projects[pi].Columns {
			tasks := b.Projects[pi].Columns[ci].Tasks
			for ti := range tasks {
				if tasks[ti].Priority.Valid() {
					continue
				}
				p, ok := model.ParsePriority(string(tasks[ti].Priority))
				if !ok {
					p = model.DefaultPriority
				}
				tasks[ti].Priority = p
				changed = true
			}
		}
	}
	return changed
}
