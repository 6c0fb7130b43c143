package tui

import (
	"context"
	"testing"

	"treefold-cli/internal/outline"
	"treefold-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

const appDoc = `# Projects

Intro.

## Write report

Body text.

### Outline the intro

## Review queue

# Personal
`

func newTestModel(t *testing.T) appModel {
	t.Helper()
	doc, err := outline.Parse("/notes/test.md", []byte(appDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m := newAppModel(Options{
		Doc:   doc,
		Store: store.Store{Dir: t.TempDir()},
	})
	out, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return out.(appModel)
}

func press(t *testing.T, m appModel, key string) appModel {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		msg = tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	out, _ := m.Update(msg)
	next, ok := out.(appModel)
	if !ok {
		t.Fatalf("Update returned %T, want appModel", out)
	}
	return next
}

func rowCount(m appModel) int { return len(m.rows.Items()) }

func TestLocalCycleThreeStates(t *testing.T) {
	m := newTestModel(t)

	// State 1: only top-level headings.
	if got := rowCount(m); got != 2 {
		t.Fatalf("initial rows = %d, want 2", got)
	}
	if m.selectedNode() != 0 {
		t.Fatalf("selected = %d, want 0 (Projects)", m.selectedNode())
	}

	// State 2: children of Projects.
	m = press(t, m, "tab")
	if got := rowCount(m); got != 4 {
		t.Fatalf("after tab rows = %d, want 4", got)
	}

	// State 3: the whole subtree.
	m = press(t, m, "tab")
	if got := rowCount(m); got != 5 {
		t.Fatalf("after tab tab rows = %d, want 5", got)
	}

	// Back to state 1.
	m = press(t, m, "tab")
	if got := rowCount(m); got != 2 {
		t.Fatalf("after tab tab tab rows = %d, want 2", got)
	}
}

func TestLocalCycleRestartsAfterOtherKey(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, "tab")
	m = press(t, m, "down")
	m = press(t, m, "up")
	// The down/up broke the repeat run, so this press is a fresh cycle on a
	// heading with no hidden children, which collapses instead of revealing.
	m = press(t, m, "tab")
	if got := rowCount(m); got != 2 {
		t.Fatalf("rows = %d, want 2 (cycle restarted, not deepened)", got)
	}
}

func TestGlobalCycleDeepensThenCollapses(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, "shift+tab")
	if got := rowCount(m); got != 4 {
		t.Fatalf("after one global cycle rows = %d, want 4", got)
	}
	m = press(t, m, "shift+tab")
	if got := rowCount(m); got != 5 {
		t.Fatalf("after two global cycles rows = %d, want 5", got)
	}
	m = press(t, m, "shift+tab")
	if got := rowCount(m); got != 2 {
		t.Fatalf("after three global cycles rows = %d, want 2", got)
	}
}

func TestJumpAndBack(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "tab") // expand Projects
	m.rows.Select(1)       // Write report

	m = press(t, m, "enter")
	cur := m.display.Current()
	if !cur.IsClone() {
		t.Fatal("expected a clone view after jump")
	}
	if cur.Restriction == nil {
		t.Fatal("expected the jumped view to be narrowed")
	}
	if got := rowCount(m); got != 2 {
		t.Fatalf("narrowed rows = %d, want 2 (heading + child)", got)
	}
	if len(m.back) != 1 {
		t.Fatalf("back stack = %d, want 1", len(m.back))
	}

	m = press(t, m, "q")
	if m.display.Current().IsClone() {
		t.Fatal("expected q to return to the source view")
	}
	if got := rowCount(m); got != 4 {
		t.Fatalf("rows after back = %d, want 4", got)
	}
	if m.selectedNode() != 1 {
		t.Fatalf("selected after back = %d, want 1 (the jump anchor)", m.selectedNode())
	}
}

func TestJumpDepthNoneShowsEntryText(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, ".")
	if got := rowCount(m); got != 1 {
		t.Fatalf("rows = %d, want 1 (entry only)", got)
	}
	it, ok := m.rows.Items()[0].(outlineRowItem)
	if !ok {
		t.Fatalf("unexpected item type %T", m.rows.Items()[0])
	}
	if !it.row.bodyShown {
		t.Fatal("expected the entry body to be visible at depth none")
	}
}

func TestSearchOpensSidebarAndReveals(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, "/")
	if !m.searching {
		t.Fatal("expected / to focus the search input")
	}
	for _, r := range "report" {
		m = press(t, m, string(r))
	}
	m = press(t, m, "enter")

	if m.searching {
		t.Fatal("expected enter to leave search mode")
	}
	if m.sidebarList == nil {
		t.Fatal("expected a sidebar list after searching")
	}
	if m.pane != paneSidebar {
		t.Fatalf("pane = %s, want sidebar", m.pane.name())
	}
	if got := len(m.side.Items()); got != 1 {
		t.Fatalf("sidebar items = %d, want 1", got)
	}

	m = press(t, m, "enter")
	if m.pane != paneOutline {
		t.Fatalf("pane = %s, want outline after jump", m.pane.name())
	}
	if m.display.Current().IsClone() {
		t.Fatal("an in-scope hit should be revealed in place, not narrowed")
	}
	if m.selectedNode() != 1 {
		t.Fatalf("selected = %d, want 1 (Write report)", m.selectedNode())
	}
}

func TestSidebarEscReturnsToOutline(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "/")
	for _, r := range "write" {
		m = press(t, m, string(r))
	}
	m = press(t, m, "enter")
	if m.pane != paneSidebar {
		t.Fatalf("pane = %s, want sidebar", m.pane.name())
	}

	m = press(t, m, "esc")
	if m.pane != paneOutline {
		t.Fatalf("pane = %s, want outline", m.pane.name())
	}
	if len(m.back) != 0 {
		t.Fatal("esc in the sidebar must not pop the view stack")
	}
}

func TestPersistRoundTrip(t *testing.T) {
	m := newTestModel(t)
	m.sess = &store.Session{Version: 1}

	m = press(t, m, "tab")
	m.persist()

	sess, err := m.st.LoadSession(context.Background())
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	ds, ok := sess.Doc("/notes/test.md")
	if !ok {
		t.Fatal("expected a saved doc state")
	}
	if ds.Cursor != 0 {
		t.Fatalf("cursor = %d, want 0", ds.Cursor)
	}
	if len(ds.Overlay) == 0 {
		t.Fatal("expected the fold overlay to be saved")
	}
	if sess.LastFile != "/notes/test.md" {
		t.Fatalf("lastFile = %q", sess.LastFile)
	}

	ts, err := m.st.LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState: %v", err)
	}
	if ts.Pane != "outline" {
		t.Fatalf("pane = %q, want outline", ts.Pane)
	}
}

func TestReloadKeepsFoldsAndSelection(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "tab")
	m.rows.Select(1)

	// Same content re-parsed, as after an external editor save.
	doc, err := outline.Parse("/notes/test.md", []byte(appDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	prevSource := m.source

	m.applyReload(doc)
	if m.source == prevSource {
		t.Fatal("expected a fresh source view")
	}
	if got := rowCount(m); got != 4 {
		t.Fatalf("rows after reload = %d, want 4 (overlay carried over)", got)
	}
	if m.selectedNode() != 1 {
		t.Fatalf("selected after reload = %d, want 1", m.selectedNode())
	}
}
