package tui

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	mdMu sync.Mutex
	// Renderers are cached by style and wrap width. Building one with auto
	// styling can query the terminal and block under bubbletea, so the style
	// is always resolved explicitly first.
	mdRenderers = map[string]*glamour.TermRenderer{}

	previewStyle = "auto"
)

func setPreviewStyle(s string) {
	mdMu.Lock()
	previewStyle = strings.ToLower(strings.TrimSpace(s))
	mdMu.Unlock()
}

func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	style := resolveMarkdownStyle()
	key := style + ":" + strconv.Itoa(width)

	mdMu.Lock()
	r := mdRenderers[key]
	mdMu.Unlock()

	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdMu.Lock()
		// Re-check in case a concurrent goroutine filled it.
		if existing := mdRenderers[key]; existing != nil {
			r = existing
		} else {
			mdRenderers[key] = rr
			r = rr
		}
		mdMu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// resolveMarkdownStyle maps the configured preview style to a concrete glamour
// style name. "auto" is resolved from the environment rather than terminal
// queries; the final fallback follows Lip Gloss's background detection so the
// preview palette matches the rest of the TUI.
func resolveMarkdownStyle() string {
	mdMu.Lock()
	style := previewStyle
	mdMu.Unlock()

	if style != "" && style != "auto" {
		return style
	}

	switch strings.ToLower(strings.TrimSpace(os.Getenv("TREEFOLD_TUI_THEME"))) {
	case "light":
		return "light"
	case "dark":
		return "dark"
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			// Common xterm palette: 0-6 dark, 7-15 light.
			if bg >= 7 {
				return "light"
			}
			return "dark"
		}
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
