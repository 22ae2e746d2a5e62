package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

const (
	columnGap = 2
	// Lines reserved below the columns: blank, status/minibuffer, instructions, project.
	footerLines = 4
	// Header line plus the blank line under it.
	headerLines = 2
	minColumnW  = 8
)

// normalizePane forces s to exactly width cells and height lines (ANSI-aware)
// so lipgloss.JoinHorizontal lines columns up.
func normalizePane(s string, width, height int) string {
	width = max(width, 0)
	height = max(height, 0)

	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	for i, ln := range lines {
		w := xansi.StringWidth(ln)
		if w > width {
			ln = xansi.Truncate(ln, width, "")
			w = xansi.StringWidth(ln)
		}
		if w < width {
			ln += strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}
	return strings.Join(lines, "\n")
}

// columnWidth splits the terminal evenly between n columns unless fixed is set.
func columnWidth(total, n, fixed int) int {
	if n <= 0 {
		return 0
	}
	if fixed > 0 {
		return fixed
	}
	w := (total - columnGap*(n-1)) / n
	return max(w, minColumnW)
}

// taskRows is how many task lines fit under the column headers.
func taskRows(height int) int {
	return max(height-headerLines-footerLines, 0)
}

// fitText cuts s to width cells, ending in "..." when something was removed.
func fitText(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return xansi.Truncate(s, width, "")
	}
	return xansi.Truncate(s, width, "...")
}

// centerText pads s on both sides to width cells.
func centerText(s string, width int) string {
	w := xansi.StringWidth(s)
	if w >= width {
		return s
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}
