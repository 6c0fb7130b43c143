package tui

import (
	"fmt"
	"strings"

	"treefold-cli/internal/sidebar"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type sidebarEntryItem struct {
	group string
	entry sidebar.Entry
}

func (i sidebarEntryItem) FilterValue() string { return i.entry.Title }

func sidebarItems(l *sidebar.List) []list.Item {
	var items []list.Item
	for _, g := range l.Groups {
		for _, e := range g.Entries {
			items = append(items, sidebarEntryItem{group: g.Label, entry: e})
		}
	}
	return items
}

// updateSearch handles keys while the minibuffer owns input.
func (m appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		m.runSearch(m.search.Value())
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// runSearch rebuilds the sidebar from the query, scoped to the current view's
// restriction so a narrowed view only searches what it shows.
func (m *appModel) runSearch(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		m.sidebarList = nil
		m.side.SetItems(nil)
		return
	}

	scope := m.display.Current().Restriction
	l, err := m.sidebarCtrl.BuildList(m.doc, scope, sidebar.Predicate(query), sidebar.GroupTop, sidebar.SortDocument)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.sidebarList = l
	m.side.SetItems(sidebarItems(l))
	if len(l.Entries()) > 0 {
		m.side.Select(0)
	}
	m.showSidebar = true
	m.pane = paneSidebar
	m.resizePanes()
	m.status = fmt.Sprintf("%d matches for %q", len(l.Entries()), query)
}

// renderSearchLine draws the minibuffer as one footer-width line. The input
// must stay a single visual line; stray newlines from cursor styling would
// break the footer layout.
func renderSearchLine(width int, inputView string) string {
	if width < 10 {
		width = 10
	}
	inputView = strings.ReplaceAll(inputView, "\n", " ")
	inputView = strings.ReplaceAll(inputView, "\r", " ")

	line := lipgloss.PlaceHorizontal(width, lipgloss.Left, " /"+inputView+" ",
		lipgloss.WithWhitespaceBackground(colorStatusBarBg),
	)
	if xansi.StringWidth(line) > width {
		// Terminate ANSI styling so the cut never bleeds into the next line.
		line = xansi.Cut(line, 0, width) + "\x1b[0m"
	}
	return line
}
