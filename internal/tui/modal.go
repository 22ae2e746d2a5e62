package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	modalMinWidth = 30
	modalMaxWidth = 60
)

var (
	modalTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorHeader)
	modalSelectedStyle = lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg)
)

func modalBodyWidth(width int) int {
	return max(min(width-8, modalMaxWidth), modalMinWidth)
}

// renderModalBox frames content with a rounded border and a title line.
func renderModalBox(width int, title, content string) string {
	bodyW := modalBodyWidth(width)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorModalBorder).
		Padding(0, 1).
		Width(bodyW + 2)
	return box.Render(modalTitleStyle.Render(title) + "\n\n" + content)
}

func (m appModel) renderProjectsModal() string {
	bodyW := modalBodyWidth(m.width)
	b := m.board()
	cur := b.CurrentProject().Name

	lines := []string{styleMuted().Render("Projects:")}
	for i, name := range b.ProjectNames() {
		label := name
		if name == cur {
			label += " (current)"
		}
		label = fitText(label, bodyW-2)
		if i == m.projSel {
			lines = append(lines, modalSelectedStyle.Render(normalizePane("> "+label, bodyW, 1)))
			continue
		}
		lines = append(lines, "  "+label)
	}
	return renderModalBox(m.width, "Project Manager", strings.Join(lines, "\n"))
}
