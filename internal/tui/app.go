package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"treefold-cli/internal/clone"
	"treefold-cli/internal/nav"
	"treefold-cli/internal/outline"
	"treefold-cli/internal/sidebar"
	"treefold-cli/internal/store"
	"treefold-cli/internal/watch"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type pane int

const (
	paneOutline pane = iota
	paneSidebar
)

func (p pane) name() string {
	if p == paneSidebar {
		return "sidebar"
	}
	return "outline"
}

type watchChangedMsg struct{}

type watchErrMsg struct{ err error }

// viewHolder is the display surface the dispatcher can redirect. It is a
// separate pointer type because the bubbletea model itself is a value.
type viewHolder struct{ v *clone.View }

func (h *viewHolder) Current() *clone.View { return h.v }
func (h *viewHolder) Show(v *clone.View)   { h.v = v }

type previewCache struct {
	id    outline.NodeID
	width int
	out   string
}

const (
	chromeLines = 3 // header, status bar, footer
	paneGapW    = 2
	minSplitW   = 80
)

type appModel struct {
	path string
	doc  *outline.Document

	cfg  *store.GlobalConfig
	st   store.Store
	sess *store.Session

	registry *clone.Registry
	disp     *nav.Dispatcher
	source   *clone.View
	display  *viewHolder
	// back holds the jump history, newest last; q walks it backwards.
	back []*clone.View

	rows list.Model
	side list.Model

	width          int
	height         int
	seenWindowSize bool

	pane        pane
	showPreview bool
	showSidebar bool

	searching   bool
	search      textinput.Model
	sidebarCtrl *sidebar.Controller
	sidebarList *sidebar.List

	watcher *watch.Watcher

	status string

	preview *previewCache
}

func newAppModel(opts Options) appModel {
	applyColorProfilePreference()
	applyThemePreference()
	var tcfg *store.TUIConfig
	if opts.Config != nil {
		tcfg = opts.Config.TUI
	}
	applyGlyphPreference(tcfg)
	applyAppearanceConfig(tcfg)
	if tcfg != nil && tcfg.PreviewStyle != "" {
		setPreviewStyle(tcfg.PreviewStyle)
	}

	reg := clone.NewRegistry()
	m := appModel{
		path:        opts.Doc.ID,
		doc:         opts.Doc,
		cfg:         opts.Config,
		st:          opts.Store,
		sess:        opts.Session,
		registry:    reg,
		disp:        nav.NewDispatcher(reg),
		source:      clone.NewSourceView(opts.Doc),
		display:     &viewHolder{},
		sidebarCtrl: sidebar.NewController(nil, nil),
		pane:        paneOutline,
		preview:     &previewCache{id: outline.NoNode},
	}
	m.display.Show(m.source)
	m.disp.AttachSurface(m.display)

	m.rows = newPaneList()
	m.rows.SetDelegate(newFoldDelegate())
	m.side = newPaneList()
	m.side.SetDelegate(newSidebarDelegate())

	m.search = textinput.New()
	m.search.Placeholder = "Search headings"
	m.search.CharLimit = 120
	m.search.Width = 40

	// Pick up what the last run left behind: the fold overlay and cursor
	// from the session, pane toggles from the TUI state file.
	cursor := outline.NoNode
	if m.sess != nil {
		if ds, ok := m.sess.Doc(m.path); ok {
			m.source.ApplyOverlay(ds.Overlay)
			cursor = outline.NodeID(ds.Cursor)
		}
	}
	m.refreshRows()
	if cursor != outline.NoNode {
		m.selectRow(cursor)
	}
	if ts, err := m.st.LoadTUIState(); err == nil && ts != nil {
		m.showPreview = ts.ShowPreview
		m.showSidebar = ts.ShowSidebar
		m.search.SetValue(ts.LastQuery)
		if ts.Pane == "sidebar" && m.showSidebar {
			m.pane = paneSidebar
		}
	}
	return m
}

func newPaneList() list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	// "/" opens the search minibuffer, not the list's built-in filter.
	l.SetFilteringEnabled(false)
	// The bubbles list quits on ESC by default; here ESC means back.
	l.KeyMap.Quit.SetKeys("ctrl+c")
	// Emacs-style movement aliases.
	up := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	l.KeyMap.CursorUp.SetKeys(append(up, "ctrl+p")...)
	down := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	l.KeyMap.CursorDown.SetKeys(append(down, "ctrl+n")...)
	return l
}

func (m appModel) Init() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return tea.Batch(waitForChange(m.watcher), waitForWatchError(m.watcher))
}

func waitForChange(w *watch.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return watchChangedMsg{}
	}
}

func waitForWatchError(w *watch.Watcher) tea.Cmd {
	return func() tea.Msg {
		return watchErrMsg{err: <-w.Errors()}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.seenWindowSize = true
		m.resizePanes()
		return m, nil

	case watchChangedMsg:
		if err := m.reloadFromDisk(); err != nil {
			m.status = "reload failed: " + err.Error()
		} else {
			m.status = "file changed on disk, reloaded"
		}
		return m, waitForChange(m.watcher)

	case watchErrMsg:
		if errors.Is(msg.err, watch.ErrFileRemoved) {
			m.status = "file removed on disk"
		} else if msg.err != nil {
			m.status = "watch: " + msg.err.Error()
		}
		return m, waitForWatchError(m.watcher)

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}

		key := msg.String()
		// Everything except the two cycle commands breaks a repeat run.
		if key != "tab" && key != "shift+tab" {
			m.disp.ResetCycle()
		}

		switch key {
		case "ctrl+c":
			return m, tea.Quit
		case "q", "esc":
			if m.pane == paneSidebar {
				m.pane = paneOutline
				return m, nil
			}
			if m.popView() {
				return m, nil
			}
			return m, tea.Quit
		case "tab":
			m.cycleLocal()
			return m, nil
		case "shift+tab":
			m.cycleGlobal()
			return m, nil
		case "enter":
			if m.pane == paneSidebar {
				m.jumpToSidebarEntry()
				return m, nil
			}
			m.jumpSelected(m.defaultDepth())
			return m, nil
		case "o":
			m.jumpSelected(outline.DepthEntries)
			return m, nil
		case "b":
			m.jumpSelected(outline.DepthBranches)
			return m, nil
		case ".":
			m.jumpSelected(outline.DepthNone)
			return m, nil
		case "/":
			m.searching = true
			m.search.Focus()
			return m, textinput.Blink
		case "s":
			m.toggleSidebar()
			return m, nil
		case "p":
			m.showPreview = !m.showPreview
			m.resizePanes()
			return m, nil
		case "r":
			if err := m.reloadFromDisk(); err != nil {
				m.status = "reload failed: " + err.Error()
			} else {
				m.status = "reloaded"
			}
			return m, nil
		}
	}

	// Cursor blink and other component messages go to the focused widget;
	// remaining keys drive the focused pane's cursor.
	var cmd tea.Cmd
	if m.searching {
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	if m.pane == paneSidebar {
		m.side, cmd = m.side.Update(msg)
	} else {
		m.rows, cmd = m.rows.Update(msg)
	}
	return m, cmd
}

func (m appModel) View() string {
	if !m.seenWindowSize {
		return "Loading…"
	}

	bodyH := m.bodyHeight()
	panes := []string{padPane(m.rows.View(), m.outlinePaneWidth(), bodyH)}
	if pw := m.previewPaneWidth(); pw > 0 {
		panes = append(panes, padPane("", paneGapW, bodyH))
		panes = append(panes, padPane(m.renderPreview(pw), pw, bodyH))
	}
	if sw := m.sidebarPaneWidth(); sw > 0 {
		panes = append(panes, padPane("", paneGapW, bodyH))
		panes = append(panes, padPane(m.side.View(), sw, bodyH))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, panes...)

	bottom := m.renderFooter()
	if m.searching {
		bottom = renderSearchLine(m.width, m.search.View())
	}

	return strings.Join([]string{m.renderHeader(), body, m.renderStatusBar(), bottom}, "\n")
}

func (m appModel) renderHeader() string {
	cur := m.display.Current()
	crumb := filepath.Base(m.path)
	if cur.IsClone() {
		crumb += " " + glyphArrow() + " " + cur.Title()
	}
	head := lipgloss.NewStyle().Bold(true).Foreground(colorHeadingFg).Render(crumb)
	if cur.Restriction != nil {
		head += " " + lipgloss.NewStyle().Foreground(colorRestriction).Render("[narrowed]")
	}
	return clipLine(head, m.width)
}

func (m appModel) renderStatusBar() string {
	txt := m.status
	if txt == "" {
		txt = fmt.Sprintf("%d of %d headings", len(m.rows.Items()), len(m.doc.Nodes))
		if m.watcher != nil && m.watcher.IsPolling() {
			txt += "  (polling)"
		}
	}
	bar := lipgloss.NewStyle().
		Background(colorStatusBarBg).
		Foreground(colorStatusBarFg).
		Render(" " + txt + " ")
	return clipLine(bar, m.width)
}

func (m appModel) renderFooter() string {
	help := "tab: cycle  shift+tab: cycle all  enter: jump  o/b/.: jump depth  /: search  s: sidebar  p: preview  r: reload  q: back/quit"
	return clipLine(styleMuted().Render(help), m.width)
}

func (m appModel) renderPreview(width int) string {
	node := m.selectedNode()
	if node == outline.NoNode {
		return styleMuted().Render("No heading selected.")
	}
	pc := m.preview
	if pc.id != node || pc.width != width || pc.out == "" {
		body := strings.TrimSpace(m.doc.Body(node))
		out := styleMuted().Render("(no body text)")
		if body != "" {
			out = renderMarkdown(body, width)
		}
		pc.id, pc.width, pc.out = node, width, out
	}
	return pc.out
}

func (m appModel) bodyHeight() int {
	h := m.height - chromeLines
	if h < 4 {
		h = 4
	}
	return h
}

func (m appModel) sidebarPaneWidth() int {
	if !m.showSidebar || m.width < minSplitW {
		return 0
	}
	w := 0
	if m.cfg != nil && m.cfg.TUI != nil {
		w = m.cfg.TUI.SidebarWidth
	}
	if w <= 0 {
		w = m.width / 4
	}
	if w < 20 {
		w = 20
	}
	if w > m.width/2 {
		w = m.width / 2
	}
	return w
}

func (m appModel) previewPaneWidth() int {
	if !m.showPreview || m.width < minSplitW {
		return 0
	}
	rest := m.width - m.sidebarSlotWidth()
	return rest / 2
}

func (m appModel) sidebarSlotWidth() int {
	w := m.sidebarPaneWidth()
	if w == 0 {
		return 0
	}
	return w + paneGapW
}

func (m appModel) outlinePaneWidth() int {
	w := m.width - m.sidebarSlotWidth()
	if pw := m.previewPaneWidth(); pw > 0 {
		w -= pw + paneGapW
	}
	if w < 30 {
		w = 30
	}
	return w
}

func (m *appModel) resizePanes() {
	if m.width == 0 {
		return
	}
	m.rows.SetSize(m.outlinePaneWidth(), m.bodyHeight())
	m.side.SetSize(m.sidebarPaneWidth(), m.bodyHeight())
}

func (m appModel) selectedNode() outline.NodeID {
	if it, ok := m.rows.SelectedItem().(outlineRowItem); ok {
		return it.row.id
	}
	return outline.NoNode
}

func (m appModel) defaultDepth() outline.Depth {
	if m.cfg != nil {
		if d := outline.Depth(m.cfg.DefaultDepth); d.Valid() {
			return d
		}
	}
	return outline.DepthChildren
}

func (m *appModel) refreshRows() {
	cur := m.selectedNode()
	flat := flattenView(m.display.Current())
	items := make([]list.Item, 0, len(flat))
	for _, r := range flat {
		items = append(items, outlineRowItem{row: r})
	}
	m.rows.SetItems(items)
	if cur != outline.NoNode {
		m.selectRow(cur)
	}
}

func (m *appModel) selectRow(id outline.NodeID) {
	for i, it := range m.rows.Items() {
		if r, ok := it.(outlineRowItem); ok && r.row.id == id {
			m.rows.Select(i)
			return
		}
	}
}

func (m *appModel) cycleLocal() {
	node := m.selectedNode()
	if node == outline.NoNode {
		return
	}
	if err := m.disp.CycleLocal(m.display.Current(), node); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
	m.refreshRows()
}

func (m *appModel) cycleGlobal() {
	if err := m.disp.CycleGlobal(m.display.Current()); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
	m.refreshRows()
}

func (m *appModel) jumpSelected(depth outline.Depth) {
	m.jumpTo(m.selectedNode(), depth)
}

func (m *appModel) jumpTo(node outline.NodeID, depth outline.Depth) {
	if node == outline.NoNode {
		return
	}
	cur := m.display.Current()
	view, err := m.disp.Jump(cur, node, depth)
	if err != nil {
		m.status = err.Error()
		return
	}
	if view != cur {
		m.back = append(m.back, cur)
		m.display.Show(view)
	}
	m.status = ""
	m.refreshRows()
	m.selectRow(node)
}

// popView steps back to the view shown before the last jump. Clones stay
// registered, so jumping to the same heading again reuses their fold state.
func (m *appModel) popView() bool {
	if len(m.back) == 0 {
		return false
	}
	anchor := outline.NoNode
	if cur := m.display.Current(); cur != nil && cur.IsClone() {
		anchor = cur.Anchor()
	}
	prev := m.back[len(m.back)-1]
	m.back = m.back[:len(m.back)-1]
	m.display.Show(prev)
	m.refreshRows()
	if anchor != outline.NoNode {
		m.selectRow(anchor)
	}
	return true
}

func (m *appModel) toggleSidebar() {
	m.showSidebar = !m.showSidebar
	if m.showSidebar {
		if m.sidebarList == nil && strings.TrimSpace(m.search.Value()) != "" {
			m.runSearch(m.search.Value())
		} else {
			m.pane = paneSidebar
		}
	} else {
		m.pane = paneOutline
	}
	m.resizePanes()
}

// jumpToSidebarEntry brings the selected search hit into view: hits inside
// the current restriction are revealed in place, anything else gets its own
// view.
func (m *appModel) jumpToSidebarEntry() {
	it, ok := m.side.SelectedItem().(sidebarEntryItem)
	if !ok {
		return
	}
	m.pane = paneOutline
	cur := m.display.Current()
	if cur.InRestriction(it.entry.Node) {
		cur.RevealPath(it.entry.Node)
		m.refreshRows()
		m.selectRow(it.entry.Node)
		return
	}
	m.jumpTo(it.entry.Node, m.defaultDepth())
}

func (m *appModel) reloadFromDisk() error {
	doc, err := outline.ParseFile(m.path)
	if err != nil {
		return err
	}
	m.applyReload(doc)
	return nil
}

// applyReload rebuilds the view stack on top of a re-parsed document. The
// source view's fold overlay carries over; a clone on display is followed by
// anchor title, since node ids may have shifted.
func (m *appModel) applyReload(doc *outline.Document) {
	overlay := m.source.Overlay()
	anchorTitle := ""
	if cur := m.display.Current(); cur != nil && cur.IsClone() {
		anchorTitle = cur.Title()
	}
	selected := m.selectedNode()

	m.doc = doc
	m.registry = clone.NewRegistry()
	m.disp = nav.NewDispatcher(m.registry)
	m.source = clone.NewSourceView(doc)
	m.source.ApplyOverlay(overlay)
	m.display = &viewHolder{}
	m.display.Show(m.source)
	m.disp.AttachSurface(m.display)
	m.back = nil

	if anchorTitle != "" {
		if node := findNodeByTitle(doc, anchorTitle); node != outline.NoNode {
			if v, err := m.disp.Jump(m.source, node, m.defaultDepth()); err == nil && v != m.source {
				m.back = append(m.back, m.source)
				m.display.Show(v)
			}
		}
	}

	if m.sidebarList != nil {
		m.sidebarList.Doc = doc
		m.sidebarList.Scope = m.display.Current().Restriction
		if err := m.sidebarCtrl.Refresh(m.sidebarList); err == nil {
			m.side.SetItems(sidebarItems(m.sidebarList))
		}
	}

	m.preview.id = outline.NoNode
	m.preview.out = ""
	m.refreshRows()
	if selected != outline.NoNode {
		m.selectRow(selected)
	}
}

func findNodeByTitle(doc *outline.Document, title string) outline.NodeID {
	for _, n := range doc.Nodes {
		if n.Title == title {
			return n.ID
		}
	}
	return outline.NoNode
}
