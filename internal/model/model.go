package model

import "strings"

type Priority string

const (
	PriorityLow  Priority = "Low"
	PriorityMid  Priority = "Mid"
	PriorityHigh Priority = "High"
)

const DefaultPriority = PriorityMid

// Priorities lists every priority, lowest first.
var Priorities = []Priority{PriorityLow, PriorityMid, PriorityHigh}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMid, PriorityHigh:
		return true
	default:
		return false
	}
}

// Abbrev returns the single-letter form shown on the board ("L", "M", "H").
func (p Priority) Abbrev() string {
	if !p.Valid() {
		return strings.ToUpper(string(DefaultPriority)[:1])
	}
	return strings.ToUpper(string(p)[:1])
}

// ParsePriority accepts any case-insensitive prefix of a priority name
// ("h", "Hi", "high"). Empty input is not a priority.
func ParsePriority(s string) (Priority, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}
	for _, p := range Priorities {
		if strings.HasPrefix(strings.ToLower(string(p)), s) {
			return p, true
		}
	}
	return "", false
}

type Task struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Priority Priority `json:"priority"`
}

type Column struct {
	Name  string
	Tasks []Task
}

type Project struct {
	Name    string
	Columns []Column
}

// NewProject returns a project with one empty column per name, in order.
func NewProject(name string, columns []string) Project {
	p := Project{Name: name, Columns: make([]Column, 0, len(columns))}
	for _, c := range columns {
		p.Columns = append(p.Columns, Column{Name: c, Tasks: []Task{}})
	}
	return p
}

func (p *Project) ColumnIndex(name string) int {
	for i := range p.Columns {
		if p.Columns[i].Name == name {
			return i
		}
	}
	return -1
}

func (p *Project) TaskCount() int {
	n := 0
	for _, c := range p.Columns {
		n += len(c.Tasks)
	}
	return n
}

func (p Project) Clone() Project {
	out := Project{Name: p.Name, Columns: make([]Column, len(p.Columns))}
	for i, c := range p.Columns {
		tasks := make([]Task, len(c.Tasks))
		copy(tasks, c.Tasks)
		out.Columns[i] = Column{Name: c.Name, Tasks: tasks}
	}
	return out
}
