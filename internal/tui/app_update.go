package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"kanby/internal/model"
	"kanby/internal/mutate"
	"kanby/internal/store"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		m.clearMinibufferIfStale(time.Now())
		return m, tick()

	case tea.KeyMsg:
		// ctrl+c always leaves, even mid-prompt or mid-move.
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeMove:
			m.updateMove(msg)
		case modePrompt:
			cmd = m.updatePrompt(msg)
		case modeProjects:
			cmd = m.updateProjects(msg)
		default:
			cmd = m.updateBoard(msg)
		}
	}
	m.relayout()
	return m, cmd
}

func (m *appModel) updateBoard(msg tea.KeyMsg) tea.Cmd {
	p := m.currentProject()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Left):
		m.col = clampIndex(m.col-1, len(p.Columns))
	case key.Matches(msg, m.keys.Right):
		m.col = clampIndex(m.col+1, len(p.Columns))
	case key.Matches(msg, m.keys.Up):
		m.rows[m.col] = clampIndex(m.rows[m.col]-1, len(p.Columns[m.col].Tasks))
	case key.Matches(msg, m.keys.Down):
		m.rows[m.col] = clampIndex(m.rows[m.col]+1, len(p.Columns[m.col].Tasks))

	case key.Matches(msg, m.keys.Add):
		return m.openPrompt(prompt{kind: promptAddTitle, label: "Task title: ", project: p.Name, back: modeBoard}, "")
	case key.Matches(msg, m.keys.Edit):
		t := m.selectedTask()
		if t == nil {
			m.showError("No task to edit")
			return nil
		}
		return m.openPrompt(prompt{kind: promptEditTitle, label: "New title: ", taskID: t.ID, back: modeBoard}, t.Title)
	case key.Matches(msg, m.keys.Delete):
		t := m.selectedTask()
		if t == nil {
			m.showError("No task to delete")
			return nil
		}
		return m.openPrompt(prompt{
			kind:   promptDeleteTask,
			label:  fmt.Sprintf("Delete '%s'? (y/N): ", t.Title),
			taskID: t.ID,
			back:   modeBoard,
		}, "")
	case key.Matches(msg, m.keys.Move):
		m.syncFocus()
		if err := m.mover.EnterMove(); err != nil {
			m.showError("No task to move")
			return nil
		}
		m.mode = modeMove
	case key.Matches(msg, m.keys.Projects):
		m.mode = modeProjects
		m.projSel = max(m.board().ProjectIndex(p.Name), 0)
	}
	m.syncFocus()
	return nil
}

func (m *appModel) updateMove(msg tea.KeyMsg) {
	var d mutate.Direction
	switch {
	case key.Matches(msg, m.keys.Left):
		d = mutate.Left
	case key.Matches(msg, m.keys.Right):
		d = mutate.Right
	case key.Matches(msg, m.keys.Up):
		d = mutate.Up
	case key.Matches(msg, m.keys.Down):
		d = mutate.Down
	case key.Matches(msg, m.keys.Confirm):
		m.confirmMove()
		return
	case key.Matches(msg, m.keys.Cancel):
		m.mover.Cancel()
		m.mode = modeBoard
		m.syncFocus()
		m.showMinibuffer("Move cancelled")
		return
	default:
		return
	}
	if err := m.mover.Adjust(m.board(), d); err != nil {
		m.log.Warn("move adjust failed", "err", err)
	}
}

func (m *appModel) confirmMove() {
	res, err := m.mover.Confirm(m.sess)
	m.mode = modeBoard
	if err != nil {
		m.syncFocus()
		m.showError(errorText(err))
		return
	}
	m.col = res.To.Column
	m.syncFocus()
	m.rows[m.col] = clampIndex(res.To.Index, len(m.currentProject().Columns[m.col].Tasks))
	m.syncFocus()
	if res.Moved {
		m.showMinibuffer("Task moved successfully!")
	} else {
		m.showMinibuffer("Task position unchanged")
	}
}

func (m *appModel) openPrompt(p prompt, value string) tea.Cmd {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = p.placeholder
	ti.CharLimit = titleCharLimit
	ti.Width = max(m.width-len(p.label)-2, 10)
	ti.SetValue(value)
	ti.CursorEnd()
	p.input = ti
	m.prompt = p
	m.mode = modePrompt
	if p.kind.confirm() {
		return nil
	}
	return m.prompt.input.Focus()
}

func (m *appModel) closePrompt() {
	m.mode = m.prompt.back
	m.prompt = prompt{}
	m.syncFocus()
}

func (m *appModel) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	if m.prompt.kind.confirm() {
		yes := msg.String() == "y" || msg.String() == "Y"
		kind := m.prompt.kind
		pr := m.prompt
		m.closePrompt()
		if !yes {
			m.showMinibuffer("Deletion cancelled")
			return nil
		}
		if kind == promptDeleteTask {
			m.deleteTask(pr.taskID)
		} else {
			m.deleteProject(pr.project)
		}
		return nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.closePrompt()
		return nil
	case tea.KeyEnter:
		return m.submitPrompt(strings.TrimSpace(m.prompt.input.Value()))
	}
	var cmd tea.Cmd
	m.prompt.input, cmd = m.prompt.input.Update(msg)
	return cmd
}

func (m *appModel) submitPrompt(value string) tea.Cmd {
	pr := m.prompt
	switch pr.kind {
	case promptAddTitle:
		if value == "" {
			m.closePrompt()
			return nil
		}
		next := prompt{
			kind:        promptAddPriority,
			label:       "Priority (L/M/H): ",
			placeholder: model.DefaultPriority.Abbrev(),
			title:       value,
			project:     pr.project,
			back:        pr.back,
		}
		return m.openPrompt(next, "")

	case promptAddPriority:
		// Blank takes the default; anything unrecognised falls back to it too.
		prio, ok := model.ParsePriority(value)
		if !ok {
			prio = model.DefaultPriority
		}
		m.closePrompt()
		m.addTask(pr.project, pr.title, prio)

	case promptEditTitle:
		if value == "" {
			m.closePrompt()
			return nil
		}
		cur := model.DefaultPriority
		if loc, ok := m.board().FindTask(pr.taskID); ok {
			cur = m.board().Task(loc).Priority
		}
		next := prompt{
			kind:   promptEditPriority,
			label:  fmt.Sprintf("Priority (L/M/H) [%s]: ", cur),
			title:  value,
			taskID: pr.taskID,
			back:   pr.back,
		}
		return m.openPrompt(next, "")

	case promptEditPriority:
		// Blank or unrecognised keeps the current priority.
		prio, _ := model.ParsePriority(value)
		m.closePrompt()
		m.editTask(pr.taskID, pr.title, prio)

	case promptNewProject:
		m.closePrompt()
		if value != "" {
			m.createProject(value)
		}

	case promptRenameProject:
		m.closePrompt()
		if value != "" {
			m.renameProject(pr.project, value)
		}

	default:
		m.closePrompt()
	}
	return nil
}

// commit runs a mutation through the session. Failures leave the board as it
// was and are reported in the minibuffer.
func (m *appModel) commit(op string, fn func(*store.Board) (mutate.Result, error)) bool {
	err := m.sess.Commit(op, func(b *store.Board) (store.Change, error) {
		r, err := fn(b)
		if err != nil {
			return store.Change{}, err
		}
		return r.Change(), nil
	})
	if err != nil {
		m.showError(errorText(err))
		return false
	}
	return true
}

func (m *appModel) addTask(project, title string, prio model.Priority) {
	var res mutate.TaskResult
	column := m.currentProject().Columns[m.col].Name
	ok := m.commit("task.add", func(b *store.Board) (mutate.Result, error) {
		r, err := mutate.AddTask(b, project, column, title, prio)
		res = r
		return r.Result, err
	})
	if !ok {
		return
	}
	m.syncFocus()
	m.col = res.Location.Column
	m.rows[m.col] = res.Location.Index
	m.syncFocus()
	m.showMinibuffer("Added task: " + res.Task.Title)
}

func (m *appModel) editTask(id, title string, prio model.Priority) {
	ok := m.commit("task.edit", func(b *store.Board) (mutate.Result, error) {
		r, err := mutate.EditTask(b, id, title, prio)
		return r.Result, err
	})
	if ok {
		m.showMinibuffer("Task updated")
	}
}

func (m *appModel) deleteTask(id string) {
	ok := m.commit("task.delete", func(b *store.Board) (mutate.Result, error) {
		r, err := mutate.DeleteTask(b, id)
		return r.Result, err
	})
	if ok {
		m.syncFocus()
		m.showMinibuffer("Task deleted")
	}
}

func errorText(err error) string {
	var dup mutate.DuplicateNameError
	var last mutate.LastProjectError
	switch {
	case errors.As(err, &dup):
		return "Project already exists!"
	case errors.As(err, &last):
		return "Cannot delete the last project!"
	case errors.Is(err, store.ErrSessionClosed):
		return "Board is closed"
	}
	return err.Error()
}
