package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"kanby/internal/model"
)

// The board must stay readable on light and dark terminals, so colours are
// adaptive and "faint" is only used on dark backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted lipgloss.TerminalColor = ac("240", "243")

	// Column headers: the focused column is green, the rest blue.
	colorHeaderActive lipgloss.TerminalColor = ac("28", "42")
	colorHeader       lipgloss.TerminalColor = ac("27", "75")

	// Selected task: dark text on yellow.
	colorSelectedBg lipgloss.TerminalColor = ac("220", "220")
	colorSelectedFg lipgloss.TerminalColor = ac("232", "232")

	colorPriorityLow  lipgloss.TerminalColor = ac("28", "42")
	colorPriorityMid  lipgloss.TerminalColor = ac("136", "220")
	colorPriorityHigh lipgloss.TerminalColor = ac("160", "203")

	colorMoveBg lipgloss.TerminalColor = ac("90", "127")
	colorMoveFg lipgloss.TerminalColor = ac("255", "255")

	colorModalBorder lipgloss.TerminalColor = ac("27", "62")
	colorInputBg     lipgloss.TerminalColor = ac("254", "234")

	colorInfo  lipgloss.TerminalColor = ac("28", "42")
	colorError lipgloss.TerminalColor = ac("160", "203")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func priorityColor(p model.Priority) lipgloss.TerminalColor {
	switch p {
	case model.PriorityLow:
		return colorPriorityLow
	case model.PriorityHigh:
		return colorPriorityHigh
	default:
		return colorPriorityMid
	}
}

// applyColorProfilePreference sets Lip Gloss's colour profile for the board.
// color=false (config ui.color, --no-color) and NO_COLOR both force plain
// output; otherwise the terminal's own capabilities are used.
func applyColorProfilePreference(color bool) {
	if !color || strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	// Some terminals under-report; trust an explicit 256color TERM.
	if strings.Contains(strings.ToLower(os.Getenv("TERM")), "256color") && profile > termenv.ANSI256 {
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}
