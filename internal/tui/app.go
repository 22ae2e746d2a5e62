package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"kanby/internal/logging"
	"kanby/internal/model"
	"kanby/internal/mutate"
	"kanby/internal/store"
	"kanby/internal/viewport"
)

type mode int

const (
	modeBoard mode = iota
	modeMove
	modePrompt
	modeProjects
)

type promptKind int

const (
	promptNone promptKind = iota
	promptAddTitle
	promptAddPriority
	promptEditTitle
	promptEditPriority
	promptDeleteTask
	promptNewProject
	promptRenameProject
	promptDeleteProject
)

// confirm prompts take a single y/N keypress instead of a text line.
func (k promptKind) confirm() bool {
	return k == promptDeleteTask || k == promptDeleteProject
}

type prompt struct {
	kind        promptKind
	label       string
	placeholder string
	input       textinput.Model

	// Carried between the two steps of the add and edit flows.
	title   string
	taskID  string
	project string

	// Mode to return to once the prompt is done.
	back mode
}

const (
	minibufferAutoClearAfter = 2 * time.Second
	tickInterval             = 500 * time.Millisecond
	titleCharLimit           = 200
)

type tickMsg struct{}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

type appModel struct {
	sess *store.Session
	log  *log.Logger
	keys keyMap
	help help.Model

	width  int
	height int
	// fixedColumnWidth is ui.column_width; 0 splits the terminal evenly.
	fixedColumnWidth int

	mode mode

	// Focus. rows holds the cursor of every column of the shown project so
	// switching columns returns to where the user was.
	project string
	col     int
	rows    []int
	anchors []viewport.Anchor
	windows []viewport.Window

	mover   mutate.Mover
	prompt  prompt
	projSel int

	minibufferText  string
	minibufferError bool
	minibufferSetAt time.Time
}

func newAppModel(sess *store.Session, opts Options) appModel {
	lg := opts.Logger
	if lg == nil {
		lg = logging.Discard()
	}
	h := help.New()
	h.ShortSeparator = " | "
	m := appModel{
		sess:             sess,
		log:              lg,
		keys:             defaultKeyMap(),
		help:             h,
		width:            80,
		height:           24,
		fixedColumnWidth: opts.ColumnWidth,
	}
	m.resetFocus()
	m.relayout()
	return m
}

func (m appModel) Init() tea.Cmd {
	return tick()
}

func (m *appModel) board() *store.Board { return m.sess.Board() }

func (m *appModel) currentProject() *model.Project { return m.board().CurrentProject() }

// resetFocus points the cursors at the top of the current project's columns.
func (m *appModel) resetFocus() {
	p := m.currentProject()
	m.project = p.Name
	m.col = 0
	m.rows = make([]int, len(p.Columns))
	m.anchors = make([]viewport.Anchor, len(p.Columns))
	m.windows = make([]viewport.Window, len(p.Columns))
}

// syncFocus re-clamps the cursors after the board changed underneath them.
func (m *appModel) syncFocus() {
	p := m.currentProject()
	if p.Name != m.project || len(p.Columns) != len(m.rows) {
		m.resetFocus()
	}
	m.col = clampIndex(m.col, len(p.Columns))
	for i := range m.rows {
		m.rows[i] = clampIndex(m.rows[i], len(p.Columns[i].Tasks))
	}
	if m.mover.Moving() {
		return
	}
	if t := m.selectedTask(); t != nil {
		_ = m.mover.Select(m.board(), p.Name, mutate.Location{Column: m.col, Index: m.rows[m.col]})
	} else {
		m.mover.Deselect()
	}
}

// selectedTask is the task under the cursor, or nil for an empty column.
func (m *appModel) selectedTask() *model.Task {
	p := m.currentProject()
	if m.col < 0 || m.col >= len(p.Columns) {
		return nil
	}
	if m.col >= len(m.rows) {
		return nil
	}
	tasks := p.Columns[m.col].Tasks
	row := m.rows[m.col]
	if row < 0 || row >= len(tasks) {
		return nil
	}
	return &tasks[row]
}

// displayColumns is what the board shows: the move preview while moving.
func (m *appModel) displayColumns() []model.Column {
	if m.mover.Moving() {
		return m.mover.Preview(m.board())
	}
	return m.currentProject().Columns
}

// focus returns the highlighted slot, which follows the move target while moving.
func (m *appModel) focus() (col, row int) {
	if m.mover.Moving() {
		t := m.mover.Target()
		return t.Column, t.Index
	}
	if m.col >= len(m.rows) {
		return m.col, 0
	}
	return m.col, m.rows[m.col]
}

// relayout recomputes every column's visible window. It runs after each
// message so View stays a pure function of the model.
func (m *appModel) relayout() {
	cols := m.displayColumns()
	if len(m.windows) != len(cols) {
		m.windows = make([]viewport.Window, len(cols))
		m.anchors = make([]viewport.Anchor, len(cols))
	}
	fc, fr := m.focus()
	rows := taskRows(m.height)
	for i, c := range cols {
		sel := viewport.NoSelection
		if len(c.Tasks) > 0 {
			if i == fc {
				sel = fr
			} else if i < len(m.rows) {
				sel = m.rows[i]
			}
		}
		m.windows[i], m.anchors[i] = viewport.Compute(len(c.Tasks), rows, sel, m.anchors[i])
	}
}

func (m *appModel) showMinibuffer(text string) {
	m.minibufferText = text
	m.minibufferError = false
	m.minibufferSetAt = time.Now()
}

func (m *appModel) showError(text string) {
	m.showMinibuffer(text)
	m.minibufferError = true
}

func (m *appModel) clearMinibufferIfStale(now time.Time) {
	if m.minibufferText != "" && now.Sub(m.minibufferSetAt) >= minibufferAutoClearAfter {
		m.minibufferText = ""
		m.minibufferError = false
	}
}

func clampIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	return max(0, min(i, n-1))
}
