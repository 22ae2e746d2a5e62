package mutate

import (
	"errors"
	"slices"

	"kanby/internal/model"
	"kanby/internal/store"
)

var ErrNotMoving = errors.New("no move in progress")

type MoveState int

const (
	MoveIdle MoveState = iota
	MoveSelecting
	MoveMoving
)

func (s MoveState) String() string {
	switch s {
	case MoveSelecting:
		return "selecting"
	case MoveMoving:
		return "moving"
	default:
		return "idle"
	}
}

type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Location addresses a slot inside one project.
type Location struct {
	Column int
	Index  int
}

type MoveResult struct {
	TaskID string
	From   Location
	To     Location
	// Moved is false when the task ended up where it started.
	Moved bool
}

// Mover is the task relocation state machine used by the interactive board.
//
//	Idle --Select--> Selecting --EnterMove--> Moving --Confirm/Cancel--> Idle
//
// While Moving only the target changes; the board is touched once, on Confirm.
type Mover struct {
	state   MoveState
	project string
	taskID  string
	sel     Location
	origin  Location
	target  Location
}

func (m *Mover) State() MoveState { return m.state }

func (m *Mover) Moving() bool { return m.state == MoveMoving }

func (m *Mover) TaskID() string { return m.taskID }

func (m *Mover) Origin() Location { return m.origin }

func (m *Mover) Target() Location { return m.target }

// Select focuses the task at loc in project.
func (m *Mover) Select(b *store.Board, project string, loc Location) error {
	if m.state == MoveMoving {
		return ValidationError{Reason: "a move is in progress"}
	}
	p, ok := b.FindProject(project)
	if !ok {
		return NotFoundError{Kind: "project", ID: project}
	}
	t := taskAt(p, loc)
	if t == nil {
		return NotFoundError{Kind: "task", ID: "at selection"}
	}
	m.state = MoveSelecting
	m.project = p.Name
	m.taskID = t.ID
	m.sel = loc
	return nil
}

// Deselect drops the focused task. It has no effect while moving.
func (m *Mover) Deselect() {
	if m.state == MoveMoving {
		return
	}
	*m = Mover{}
}

func (m *Mover) EnterMove() error {
	switch m.state {
	case MoveMoving:
		return nil
	case MoveSelecting:
		m.state = MoveMoving
		m.origin = m.sel
		m.target = m.sel
		return nil
	default:
		return ValidationError{Reason: "no task selected"}
	}
}

// Adjust moves the target one step. Columns clamp at the edges (no wrap) and
// the position is re-clamped to the target column's range.
func (m *Mover) Adjust(b *store.Board, d Direction) error {
	if m.state != MoveMoving {
		return ErrNotMoving
	}
	p, ok := b.FindProject(m.project)
	if !ok {
		return NotFoundError{Kind: "project", ID: m.project}
	}
	t := m.target
	switch d {
	case Left:
		t.Column--
	case Right:
		t.Column++
	case Up:
		t.Index--
	case Down:
		t.Index++
	}
	t.Column = clamp(t.Column, 0, len(p.Columns)-1)
	t.Index = clamp(t.Index, 0, m.maxIndex(p, t.Column))
	m.target = t
	return nil
}

// maxIndex is the largest insertion index in col once the moving task has
// been taken out of its origin column.
func (m *Mover) maxIndex(p *model.Project, col int) int {
	if col < 0 || col >= len(p.Columns) {
		return 0
	}
	n := len(p.Columns[col].Tasks)
	if col == m.origin.Column && n > 0 {
		n--
	}
	return n
}

// Cancel abandons the move without touching the board.
func (m *Mover) Cancel() {
	*m = Mover{}
}

// Confirm applies the relocation through c and returns to Idle. A relocation
// to the starting slot still commits.
func (m *Mover) Confirm(c Committer) (MoveResult, error) {
	if m.state != MoveMoving {
		return MoveResult{}, ErrNotMoving
	}
	project, taskID, target := m.project, m.taskID, m.target
	*m = Mover{}

	var res MoveResult
	err := c.Commit("task.move", func(b *store.Board) (store.Change, error) {
		r, err := MoveTask(b, project, taskID, target)
		if err != nil {
			return store.Change{}, err
		}
		res = r
		return store.Change{
			Project: project,
			Entity:  taskID,
			Payload: map[string]any{
				"from": []int{r.From.Column, r.From.Index},
				"to":   []int{r.To.Column, r.To.Index},
			},
		}, nil
	})
	if err != nil {
		return MoveResult{}, err
	}
	return res, nil
}

// Preview returns the project's columns as they would look after Confirm.
// The board is not modified. Outside a move it returns the columns unchanged.
func (m *Mover) Preview(b *store.Board) []model.Column {
	p, ok := b.FindProject(m.project)
	if !ok {
		if cur := b.CurrentProject(); cur != nil {
			return cur.Clone().Columns
		}
		return nil
	}
	cp := p.Clone()
	if m.state != MoveMoving {
		return cp.Columns
	}
	from, ok := findInProject(&cp, m.taskID)
	if !ok {
		return cp.Columns
	}
	_, _ = RelocateTask(&cp, from, m.target)
	return cp.Columns
}

// MoveTask relocates the task with id within project to target, clamping
// target to the valid range.
func MoveTask(b *store.Board, project, id string, target Location) (MoveResult, error) {
	p, ok := b.FindProject(project)
	if !ok {
		return MoveResult{}, NotFoundError{Kind: "project", ID: project}
	}
	from, ok := findInProject(p, id)
	if !ok {
		return MoveResult{}, NotFoundError{Kind: "task", ID: id}
	}
	to, err := RelocateTask(p, from, target)
	if err != nil {
		return MoveResult{}, err
	}
	return MoveResult{TaskID: id, From: from, To: to, Moved: from != to}, nil
}

// RelocateTask removes the task at from and inserts it at to. Every other task
// keeps its relative order. to.Index is clamped to the destination's range
// after removal; the final location is returned.
func RelocateTask(p *model.Project, from, to Location) (Location, error) {
	if taskAt(p, from) == nil {
		return Location{}, NotFoundError{Kind: "task", ID: "at origin"}
	}
	if to.Column < 0 || to.Column >= len(p.Columns) {
		return Location{}, NotFoundError{Kind: "column", ID: "at target"}
	}
	src := &p.Columns[from.Column]
	t := src.Tasks[from.Index]
	src.Tasks = slices.Delete(src.Tasks, from.Index, from.Index+1)

	dst := &p.Columns[to.Column]
	to.Index = clamp(to.Index, 0, len(dst.Tasks))
	dst.Tasks = slices.Insert(dst.Tasks, to.Index, t)
	return to, nil
}

func findInProject(p *model.Project, id string) (Location, bool) {
	for ci, c := range p.Columns {
		for ti, t := range c.Tasks {
			if t.ID == id {
				return Location{Column: ci, Index: ti}, true
			}
		}
	}
	return Location{}, false
}

func taskAt(p *model.Project, loc Location) *model.Task {
	if loc.Column < 0 || loc.Column >= len(p.Columns) {
		return nil
	}
	c := &p.Columns[loc.Column]
	if loc.Index < 0 || loc.Index >= len(c.Tasks) {
		return nil
	}
	return &c.Tasks[loc.Index]
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}
