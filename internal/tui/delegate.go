package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// foldDelegate renders outline rows one line high: indent, twisty, title,
// trailing ellipsis when content is hidden. The focused row gets a full-width
// background highlight instead of a selector bar so the left edge stays
// stable.
type foldDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	twisty   lipgloss.Style
	ellipsis lipgloss.Style
}

func newFoldDelegate() foldDelegate {
	return foldDelegate{
		normal:   lipgloss.NewStyle().Foreground(colorHeadingFg),
		selected: lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true),
		twisty:   lipgloss.NewStyle().Foreground(colorTwistyFg),
		ellipsis: lipgloss.NewStyle().Foreground(colorEllipsisFg),
	}
}

func (d foldDelegate) Height() int                             { return 1 }
func (d foldDelegate) Spacing() int                            { return 0 }
func (d foldDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d foldDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(outlineRowItem)
	if !ok {
		return
	}
	width := m.Width()
	if width < 4 {
		return
	}

	row := it.row
	indent := strings.Repeat("  ", row.depth)
	twisty := " "
	if row.hasChildren {
		if row.expanded {
			twisty = glyphTwistyExpanded()
		} else {
			twisty = glyphTwistyCollapsed()
		}
	}
	suffix := ""
	if row.elided {
		suffix = glyphEllipsis()
	}

	if index == m.Index() {
		// One styled segment so the background covers the padding too.
		line := indent + twisty + " " + row.title
		if suffix != "" {
			line += " " + suffix
		}
		fmt.Fprint(w, padStyled(d.selected, line, width))
		return
	}

	out := indent + d.twisty.Render(twisty) + " " + d.normal.Render(row.title)
	if suffix != "" {
		out += " " + d.ellipsis.Render(suffix)
	}
	fmt.Fprint(w, clipLine(out, width))
}

func padStyled(style lipgloss.Style, line string, width int) string {
	if w := xansi.StringWidth(line); w < width {
		line += strings.Repeat(" ", width-w)
	}
	return clipLine(style.Render(line), width)
}

// sidebarDelegate renders search hits: the top-level group label, an arrow,
// the matching heading title.
type sidebarDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	group    lipgloss.Style
}

func newSidebarDelegate() sidebarDelegate {
	return sidebarDelegate{
		normal:   lipgloss.NewStyle().Foreground(colorBodyFg),
		selected: lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true),
		group:    lipgloss.NewStyle().Foreground(colorTwistyFg),
	}
}

func (d sidebarDelegate) Height() int                             { return 1 }
func (d sidebarDelegate) Spacing() int                            { return 0 }
func (d sidebarDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d sidebarDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(sidebarEntryItem)
	if !ok {
		return
	}
	width := m.Width()
	if width < 4 {
		return
	}

	if index == m.Index() {
		line := it.entry.Title
		if it.group != "" {
			line = it.group + " " + glyphArrow() + " " + line
		}
		fmt.Fprint(w, padStyled(d.selected, line, width))
		return
	}

	out := d.normal.Render(it.entry.Title)
	if it.group != "" {
		out = d.group.Render(it.group+" "+glyphArrow()) + " " + out
	}
	fmt.Fprint(w, clipLine(out, width))
}
