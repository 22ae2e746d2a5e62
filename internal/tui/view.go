package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"kanby/internal/model"
	"kanby/internal/viewport"
)

const emptyColumnText = "[No tasks]"

var (
	headerStyle       = lipgloss.NewStyle().Bold(true).Foreground(colorHeader)
	headerActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(colorHeaderActive)
	selectedStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorSelectedFg).Background(colorSelectedBg)
	movingStyle       = lipgloss.NewStyle().Bold(true).Foreground(colorMoveFg).Background(colorMoveBg)
	moveModeStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorMoveBg)
	projectStyle      = lipgloss.NewStyle().Bold(true)
)

func (m appModel) View() string {
	bodyH := max(m.height-footerLines+1, 0)
	var body string
	if m.mode == modeProjects || (m.mode == modePrompt && m.prompt.back == modeProjects) {
		body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, m.renderProjectsModal())
	} else {
		body = m.renderColumns(bodyH)
	}
	return strings.Join([]string{
		normalizePane(body, m.width, bodyH),
		normalizePane(m.renderStatusLine(), m.width, 1),
		normalizePane(m.renderHelp(), m.width, 1),
		normalizePane(projectStyle.Render("Project: "+m.currentProject().Name), m.width, 1),
	}, "\n")
}

func (m appModel) renderColumns(height int) string {
	cols := m.displayColumns()
	if len(cols) == 0 {
		return ""
	}
	w := columnWidth(m.width, len(cols), m.fixedColumnWidth)
	fc, fr := m.focus()

	parts := make([]string, 0, 2*len(cols)-1)
	for i, c := range cols {
		if i > 0 {
			parts = append(parts, strings.Repeat(" ", columnGap))
		}
		var win viewport.Window
		if i < len(m.windows) {
			win = m.windows[i]
		}
		sel := -1
		if i == fc {
			sel = fr
		}
		parts = append(parts, normalizePane(m.renderColumn(c, win, w, i == fc, sel), w, height))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m appModel) renderColumn(c model.Column, win viewport.Window, width int, active bool, sel int) string {
	hs := headerStyle
	if active {
		hs = headerActiveStyle
	}
	lines := []string{
		hs.Render(centerText(viewport.Header(c.Name, win, width), width)),
		"",
	}
	if len(c.Tasks) == 0 {
		lines = append(lines, styleMuted().Render(" "+emptyColumnText))
		return strings.Join(lines, "\n")
	}
	for i := win.Start; i < win.End() && i < len(c.Tasks); i++ {
		lines = append(lines, m.renderTask(c.Tasks[i], width, i == sel))
	}
	return strings.Join(lines, "\n")
}

// renderTask draws "[P] title" cut to width.
func (m appModel) renderTask(t model.Task, width int, selected bool) string {
	tag := "[" + t.Priority.Abbrev() + "] "
	title := fitText(t.Title, width-len(tag))
	if selected {
		st := selectedStyle
		if m.mover.Moving() {
			st = movingStyle
		}
		return st.Render(normalizePane(tag+title, width, 1))
	}
	return lipgloss.NewStyle().Foreground(priorityColor(t.Priority)).Render(tag) + title
}

func (m appModel) renderStatusLine() string {
	switch {
	case m.mode == modePrompt:
		return m.renderPromptLine()
	case m.mode == modeMove:
		return moveModeStyle.Render("MOVE MODE: ← → (columns) ↑ ↓ (reorder) | Enter: confirm | Esc: cancel")
	case m.minibufferText != "":
		c := colorInfo
		if m.minibufferError {
			c = colorError
		}
		return lipgloss.NewStyle().Foreground(c).Render(m.minibufferText)
	}
	return ""
}

func (m appModel) renderHelp() string {
	switch m.mode {
	case modeMove:
		return m.help.View(moveKeyMap{m.keys})
	case modeProjects:
		return m.help.View(projectsKeyMap{m.keys})
	}
	return m.help.View(m.keys)
}
