package store

import (
	"strings"

	"kanby/internal/model"
)

const (
	DefaultProjectName = "Default Project"
	DefaultDataFile    = "kanby_data.json"

	// BoardVersion is the current document version written to _meta.version.
	// Documents without a version (or older) go through the upgrade step on load.
	BoardVersion = 2
)

// DefaultColumns are used for new projects when no columns are configured.
var DefaultColumns = []string{"To Do", "In Progress", "Done"}

// Defaults controls how new projects (and first-run boards) are shaped.
type Defaults struct {
	Project string
	Columns []string
}

func (d Defaults) normalized() Defaults {
	out := Defaults{Project: strings.TrimSpace(d.Project)}
	if out.Project == "" {
		out.Project = DefaultProjectName
	}
	for _, c := range d.Columns {
		if c = strings.TrimSpace(c); c != "" {
			out.Columns = append(out.Columns, c)
		}
	}
	if len(out.Columns) == 0 {
		out.Columns = append([]string(nil), DefaultColumns...)
	}
	return out
}

type Meta struct {
	LastProject string `json:"last_project"`
	Version     int    `json:"version,omitempty"`
}

// Board is the full persisted state: every project in display order plus Meta.
type Board struct {
	Projects []model.Project
	Meta     Meta

	// Columns used when a project is created. Not persisted.
	defaults Defaults
}

// TaskLocation addresses a task inside a board.
type TaskLocation struct {
	Project int
	Column  int
	Index   int
}

func NewBoard(d Defaults) *Board {
	d = d.normalized()
	return &Board{
		Projects: []model.Project{model.NewProject(d.Project, d.Columns)},
		Meta:     Meta{LastProject: d.Project, Version: BoardVersion},
		defaults: d,
	}
}

// DefaultColumnNames returns the column names new projects are created with.
func (b *Board) DefaultColumnNames() []string {
	return append([]string(nil), b.defaults.normalized().Columns...)
}

func (b *Board) SetDefaults(d Defaults) {
	b.defaults = d.normalized()
}

func (b *Board) ProjectIndex(name string) int {
	for i := range b.Projects {
		if b.Projects[i].Name == name {
			return i
		}
	}
	return -1
}

func (b *Board) FindProject(name string) (*model.Project, bool) {
	i := b.ProjectIndex(name)
	if i < 0 {
		return nil, false
	}
	return &b.Projects[i], true
}

func (b *Board) ProjectNames() []string {
	out := make([]string, 0, len(b.Projects))
	for _, p := range b.Projects {
		out = append(out, p.Name)
	}
	return out
}

// CurrentProject returns the last-active project, falling back to the first one.
func (b *Board) CurrentProject() *model.Project {
	if p, ok := b.FindProject(b.Meta.LastProject); ok {
		return p
	}
	if len(b.Projects) == 0 {
		return nil
	}
	return &b.Projects[0]
}

func (b *Board) FindTask(id string) (TaskLocation, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return TaskLocation{}, false
	}
	for pi := range b.Projects {
		for ci := range b.Projects[pi].Columns {
			for ti, t := range b.Projects[pi].Columns[ci].Tasks {
				if t.ID == id {
					return TaskLocation{Project: pi, Column: ci, Index: ti}, true
				}
			}
		}
	}
	return TaskLocation{}, false
}

// Task returns a pointer to the task at loc, or nil when loc is out of range.
func (b *Board) Task(loc TaskLocation) *model.Task {
	if loc.Project < 0 || loc.Project >= len(b.Projects) {
		return nil
	}
	p := &b.Projects[loc.Project]
	if loc.Column < 0 || loc.Column >= len(p.Columns) {
		return nil
	}
	c := &p.Columns[loc.Column]
	if loc.Index < 0 || loc.Index >= len(c.Tasks) {
		return nil
	}
	return &c.Tasks[loc.Index]
}

func (b *Board) HasTaskID(id string) bool {
	_, ok := b.FindTask(id)
	return ok
}

func (b *Board) TaskCount() int {
	n := 0
	for i := range b.Projects {
		n += b.Projects[i].TaskCount()
	}
	return n
}

// Clone returns a deep copy. Mutations are applied to clones so a failed save
// never leaves the published board ahead of the file on disk.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	out := &Board{
		Projects: make([]model.Project, len(b.Projects)),
		Meta:     b.Meta,
		defaults: b.defaults,
	}
	for i, p := range b.Projects {
		out.Projects[i] = p.Clone()
	}
	return out
}
