// Package tui is the interactive folding surface: one outline pane driven by
// the clone/nav core, an optional markdown preview, and an optional search
// sidebar. All mutation of views happens on the bubbletea update loop, which
// keeps the single-threaded contract of the core without extra locking.
package tui

import (
	"context"
	"log/slog"
	"time"

	"treefold-cli/internal/outline"
	"treefold-cli/internal/store"
	"treefold-cli/internal/watch"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Doc     *outline.Document
	Store   store.Store
	Config  *store.GlobalConfig
	Session *store.Session

	// DisableWatch skips the file watcher (tests, read-only filesystems).
	DisableWatch bool
}

func Run(opts Options) error {
	m := newAppModel(opts)

	if !opts.DisableWatch {
		w, err := watch.New(m.path)
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			slog.Warn("file watching disabled", "path", m.path, "error", err)
		} else {
			m.watcher = w
			defer w.Stop()
		}
	}

	out, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if fm, ok := out.(appModel); ok {
		fm.persist()
	}
	return err
}

// persist saves the session and TUI state on the way out. Both are
// best-effort: losing them costs the user a cursor position, never data.
func (m appModel) persist() {
	if m.sess != nil {
		m.sess.SetDoc(store.DocState{
			Path:    m.path,
			Cursor:  int(m.selectedNode()),
			Overlay: m.source.Overlay(),
		})
		if m.cfg != nil && m.cfg.RecentLimit > 0 {
			m.sess.Trim(m.cfg.RecentLimit)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := m.st.SaveSession(ctx, m.sess); err != nil {
			slog.Warn("session save failed", "error", err)
		}
	}

	st := &store.TUIState{
		Version:     1,
		Pane:        m.pane.name(),
		ShowPreview: m.showPreview,
		ShowSidebar: m.showSidebar,
		LastQuery:   m.search.Value(),
	}
	if err := m.st.SaveTUIState(st); err != nil {
		slog.Warn("tui state save failed", "error", err)
	}
}
