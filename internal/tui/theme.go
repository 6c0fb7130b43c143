package tui

import (
	"os"
	"strconv"
	"strings"

	"treefold-cli/internal/store"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The TUI must stay readable on both light and dark terminal backgrounds.
// Every color is a lipgloss.AdaptiveColor, and faint styling is reserved for
// dark backgrounds, where it reads as intended (on light terminals faint text
// often disappears).

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorHeadingFg   lipgloss.TerminalColor = ac("235", "252")
	colorBodyFg      lipgloss.TerminalColor = ac("238", "250")
	colorTwistyFg    lipgloss.TerminalColor = ac("240", "245")
	colorEllipsisFg  lipgloss.TerminalColor = ac("241", "245")
	colorSelectedBg  lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg  lipgloss.TerminalColor = ac("235", "255")
	colorRestriction lipgloss.TerminalColor = ac("27", "62") // blue
	colorStatusBarBg lipgloss.TerminalColor = ac("252", "236")
	colorStatusBarFg lipgloss.TerminalColor = ac("238", "250")
	colorMuted       lipgloss.TerminalColor = ac("240", "243")
)

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

// applyColorProfilePreference pins Lip Gloss's color profile for the TUI.
//
// termenv.EnvColorProfile honors CLICOLOR, which makes sense for piped CLI
// output but can silently strip a TUI of color. Here only NO_COLOR wins;
// otherwise the terminal's capabilities decide, nudged by TERM/COLORTERM when
// probing under-reports.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()

	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") {
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}

	lipgloss.SetColorProfile(profile)
}

// applyThemePreference pins background detection. Terminals that don't report
// their background make AdaptiveColor pick the wrong variant, so the user can
// override it.
//
// Priority:
//  1. TREEFOLD_TUI_THEME=light|dark|auto
//  2. TREEFOLD_TUI_DARKBG=true|false
//  3. COLORFGBG heuristic ("fg;bg", last segment is the background)
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TREEFOLD_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}

	if v := strings.TrimSpace(os.Getenv("TREEFOLD_TUI_DARKBG")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			lipgloss.SetHasDarkBackground(b)
			return
		}
	}

	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}

// applyAppearanceConfig overlays the configured profile on the default
// palette: "mono" drops to the ASCII profile, "custom" pulls colors from the
// user's custom profile.
func applyAppearanceConfig(tc *store.TUIConfig) {
	if tc == nil {
		return
	}
	if strings.EqualFold(strings.TrimSpace(tc.Profile), "mono") {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	if !strings.EqualFold(strings.TrimSpace(tc.Profile), "custom") || tc.CustomProfile == nil {
		return
	}

	p := tc.CustomProfile
	set := func(dst *lipgloss.TerminalColor, c *store.AdaptiveColor) {
		if c == nil || (c.Light == "" && c.Dark == "") {
			return
		}
		light, dark := c.Light, c.Dark
		if light == "" {
			light = dark
		}
		if dark == "" {
			dark = light
		}
		*dst = ac(light, dark)
	}
	set(&colorSelectedBg, p.SelectedBg)
	set(&colorSelectedFg, p.SelectedFg)
	set(&colorHeadingFg, p.HeadingFg)
	set(&colorBodyFg, p.BodyFg)
	set(&colorTwistyFg, p.TwistyFg)
	set(&colorEllipsisFg, p.EllipsisFg)
	set(&colorRestriction, p.RestrictionFg)
	set(&colorStatusBarBg, p.StatusBarBg)
	set(&colorStatusBarFg, p.StatusBarFg)
}
