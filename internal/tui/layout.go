package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// padPane forces s to exactly width x height cells (ANSI-aware), so
// lipgloss.JoinHorizontal produces a stable split regardless of what each pane
// rendered.
func padPane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}

	for i, ln := range lines {
		w := xansi.StringWidth(ln)
		switch {
		case w > width:
			if width <= 1 {
				ln = xansi.Cut(ln, 0, width)
			} else {
				ln = xansi.Cut(ln, 0, width-1) + "…"
			}
		case w < width:
			ln += strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}

	return strings.Join(lines, "\n")
}

func clipLine(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= width {
		return s
	}
	return xansi.Cut(s, 0, width)
}
