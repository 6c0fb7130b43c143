package tui

import (
	"testing"

	"treefold-cli/internal/store"
)

func TestGlyphsFromEnv(t *testing.T) {
	t.Setenv("TREEFOLD_TUI_GLYPHS", "")
	setGlyphs(glyphSetUnicode)
	applyGlyphPreference(nil)
	if got := glyphs(); got != glyphSetUnicode {
		t.Fatalf("expected unicode glyphs by default; got %v", got)
	}

	t.Setenv("TREEFOLD_TUI_GLYPHS", "ascii")
	applyGlyphPreference(nil)
	if got := glyphs(); got != glyphSetASCII {
		t.Fatalf("expected ascii glyphs; got %v", got)
	}

	t.Setenv("TREEFOLD_TUI_GLYPHS", "unicode")
	applyGlyphPreference(nil)
	if got := glyphs(); got != glyphSetUnicode {
		t.Fatalf("expected unicode glyphs; got %v", got)
	}

	// Unknown values should be ignored (keep current).
	setGlyphs(glyphSetASCII)
	t.Setenv("TREEFOLD_TUI_GLYPHS", "bogus")
	applyGlyphPreference(nil)
	if got := glyphs(); got != glyphSetASCII {
		t.Fatalf("expected unknown to be ignored; got %v", got)
	}
}

func TestGlyphsEnvWinsOverConfig(t *testing.T) {
	t.Setenv("TREEFOLD_TUI_GLYPHS", "")
	applyGlyphPreference(&store.TUIConfig{Glyphs: "ascii"})
	if got := glyphs(); got != glyphSetASCII {
		t.Fatalf("expected config ascii; got %v", got)
	}

	t.Setenv("TREEFOLD_TUI_GLYPHS", "unicode")
	applyGlyphPreference(&store.TUIConfig{Glyphs: "ascii"})
	if got := glyphs(); got != glyphSetUnicode {
		t.Fatalf("expected env to win over config; got %v", got)
	}

	t.Setenv("TREEFOLD_TUI_GLYPHS", "")
	applyGlyphPreference(nil)
}
