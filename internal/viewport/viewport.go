// Package viewport computes which slice of a column's tasks fits on screen.
package viewport

import (
	"fmt"

	"github.com/charmbracelet/x/ansi"
)

// Window is the visible range [Start, Start+Shown) of a list of Total items.
type Window struct {
	Start int
	Shown int
	Total int
}

func (w Window) End() int { return w.Start + w.Shown }

// Scrolled reports whether some items are outside the window.
func (w Window) Scrolled() bool { return w.Shown < w.Total }

func (w Window) Contains(i int) bool { return i >= w.Start && i < w.End() }

// Anchor carries the previous window into the next computation so single
// steps slide the window instead of re-centring it. The zero value means
// "no previous window".
type Anchor struct {
	Start    int
	Selected int
	Valid    bool
}

// NoSelection is passed as selected when the column has no focused task.
const NoSelection = -1

// Compute returns the window for a list of n items on rows lines.
//
// When the selection moved by at most one position since prev, the window
// slides by the minimum amount that keeps it visible. Otherwise (a jump, or
// no previous window) the window is kept if the selection is already inside
// it and re-centred on the selection if not.
func Compute(n, rows, selected int, prev Anchor) (Window, Anchor) {
	n = max(n, 0)
	shown := min(n, max(rows, 0))
	w := Window{Shown: shown, Total: n}
	if shown == 0 {
		return w, Anchor{}
	}
	maxStart := n - shown

	if selected == NoSelection || selected < 0 {
		if prev.Valid {
			w.Start = clamp(prev.Start, 0, maxStart)
		}
		return w, Anchor{Start: w.Start, Selected: NoSelection, Valid: true}
	}
	sel := min(selected, n-1)

	prevStart := clamp(prev.Start, 0, maxStart)
	var start int
	switch {
	case prev.Valid && prev.Selected != NoSelection && abs(sel-prev.Selected) <= 1:
		start = prevStart
		if sel < start {
			start = sel
		} else if sel >= start+shown {
			start = sel - shown + 1
		}
	case prev.Valid && sel >= prevStart && sel < prevStart+shown:
		start = prevStart
	default:
		start = sel - shown/2
	}
	w.Start = clamp(start, 0, maxStart)
	return w, Anchor{Start: w.Start, Selected: sel, Valid: true}
}

// Label is the column header text: "name (N)" when everything fits,
// otherwise "name (first-last/N)" with 1-based inclusive bounds.
func Label(name string, w Window) string {
	if !w.Scrolled() {
		return fmt.Sprintf("%s (%d)", name, w.Total)
	}
	return fmt.Sprintf("%s (%d-%d/%d)", name, w.Start+1, w.End(), w.Total)
}

// Header is Label cut to width cells, ending in "..." when it does not fit.
func Header(name string, w Window, width int) string {
	s := Label(name, w)
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "...")
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
