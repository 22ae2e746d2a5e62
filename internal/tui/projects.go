package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"kanby/internal/mutate"
	"kanby/internal/store"
)

// updateProjects handles keys in the project manager modal.
func (m *appModel) updateProjects(msg tea.KeyMsg) tea.Cmd {
	b := m.board()
	names := b.ProjectNames()
	m.projSel = clampIndex(m.projSel, len(names))

	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		m.mode = modeBoard
	case key.Matches(msg, m.keys.Up):
		m.projSel = clampIndex(m.projSel-1, len(names))
	case key.Matches(msg, m.keys.Down):
		m.projSel = clampIndex(m.projSel+1, len(names))
	case key.Matches(msg, m.keys.Confirm):
		m.switchProject(names[m.projSel])
	case key.Matches(msg, m.keys.New):
		return m.openPrompt(prompt{kind: promptNewProject, label: "New project name: ", back: modeProjects}, "")
	case key.Matches(msg, m.keys.Rename):
		old := names[m.projSel]
		return m.openPrompt(prompt{
			kind:    promptRenameProject,
			label:   fmt.Sprintf("Rename '%s' to: ", old),
			project: old,
			back:    modeProjects,
		}, old)
	case key.Matches(msg, m.keys.Delete):
		if len(names) <= 1 {
			m.showError("Cannot delete the last project!")
			return nil
		}
		name := names[m.projSel]
		return m.openPrompt(prompt{
			kind:    promptDeleteProject,
			label:   fmt.Sprintf("Delete '%s'? (y/N): ", name),
			project: name,
			back:    modeProjects,
		}, "")
	}
	return nil
}

func (m *appModel) switchProject(name string) {
	ok := m.commit("project.switch", func(b *store.Board) (mutate.Result, error) {
		return mutate.SwitchProject(b, name)
	})
	if !ok {
		return
	}
	m.mode = modeBoard
	m.syncFocus()
	m.showMinibuffer("Switched to project: " + name)
}

func (m *appModel) createProject(name string) {
	var res mutate.Result
	ok := m.commit("project.create", func(b *store.Board) (mutate.Result, error) {
		r, err := mutate.CreateProject(b, name)
		res = r
		return r, err
	})
	if !ok {
		return
	}
	m.projSel = max(m.board().ProjectIndex(res.Project), 0)
	m.syncFocus()
	m.showMinibuffer("Created project: " + res.Project)
}

func (m *appModel) renameProject(oldName, newName string) {
	var res mutate.Result
	err := m.sess.Commit("project.rename", func(b *store.Board) (store.Change, error) {
		r, err := mutate.RenameProject(b, oldName, newName)
		res = r
		return r.Change(), err
	})
	var dup mutate.DuplicateNameError
	switch {
	case errors.As(err, &dup):
		m.showError("Project name already exists!")
		return
	case err != nil:
		m.showError(errorText(err))
		return
	case !res.Changed:
		m.showMinibuffer("Project name unchanged.")
		return
	}
	m.projSel = max(m.board().ProjectIndex(res.Project), 0)
	// The shown project keeps its focus across a rename.
	if m.project == oldName {
		m.project = res.Project
	}
	m.syncFocus()
	m.showMinibuffer(fmt.Sprintf("Renamed project: %s → %s", oldName, res.Project))
}

func (m *appModel) deleteProject(name string) {
	ok := m.commit("project.delete", func(b *store.Board) (mutate.Result, error) {
		return mutate.DeleteProject(b, name)
	})
	if !ok {
		return
	}
	m.projSel = clampIndex(m.projSel, len(m.board().Projects))
	m.syncFocus()
	m.showMinibuffer("Deleted project: " + name)
}
