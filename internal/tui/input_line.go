package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

var promptLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(colorInfo)

// renderPromptLine draws the active prompt as one line: label then input.
func (m appModel) renderPromptLine() string {
	label := promptLabelStyle.Render(m.prompt.label)
	if m.prompt.kind.confirm() {
		return label
	}
	return label + renderInputLine(m.width-xansi.StringWidth(m.prompt.label), m.prompt.input.View())
}

// renderInputLine keeps a text input on a single line of at most width cells.
func renderInputLine(width int, inputView string) string {
	width = max(width, 10)
	inputView = strings.ReplaceAll(inputView, "\n", " ")
	inputView = strings.ReplaceAll(inputView, "\r", " ")

	line := lipgloss.PlaceHorizontal(
		width,
		lipgloss.Left,
		inputView,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > width {
		// Terminate styling so nothing bleeds past the cut.
		line = xansi.Cut(line, 0, width) + "\x1b[0m"
	}
	return line
}
