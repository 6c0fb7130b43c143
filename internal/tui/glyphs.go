package tui

import (
	"os"
	"strings"
	"sync"

	"treefold-cli/internal/store"
)

// A terminal app can't pick the user's font, only its glyphs. Twisties and
// ellipses render badly in some fonts, so both a Unicode and an ASCII set are
// offered, selected by config or TREEFOLD_TUI_GLYPHS.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

// applyGlyphPreference resolves the glyph set. The environment wins over the
// config value; unknown values keep the current set.
func applyGlyphPreference(tc *store.TUIConfig) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("TREEFOLD_TUI_GLYPHS")))
	if v == "" && tc != nil {
		v = strings.ToLower(strings.TrimSpace(tc.Glyphs))
	}
	switch v {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	default:
		// Unknown value: ignore.
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

func glyphTwistyCollapsed() string {
	if glyphs() == glyphSetASCII {
		return ">"
	}
	return "▸"
}

func glyphTwistyExpanded() string {
	if glyphs() == glyphSetASCII {
		return "v"
	}
	return "▾"
}

func glyphEllipsis() string {
	if glyphs() == glyphSetASCII {
		return "..."
	}
	return "…"
}

func glyphArrow() string {
	if glyphs() == glyphSetASCII {
		return "->"
	}
	return "→"
}
