package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

type GlobalConfig struct {
	// Editor overrides $EDITOR when handing a file off to an external editor.
	Editor string `json:"editor,omitempty"`

	// DefaultDepth is the expansion depth used when jumping to a heading
	// without an explicit depth: none|children|branches|entries.
	DefaultDepth string `json:"defaultDepth,omitempty"`

	// RecentLimit caps the recent-files list kept in the session database.
	// Zero means keep everything.
	RecentLimit int `json:"recentLimit,omitempty"`

	// TUI holds optional user preferences for the interactive TUI.
	TUI *TUIConfig `json:"tui,omitempty"`
}

type TUIConfig struct {
	// Profile is the appearance profile id (e.g. "default", "mono").
	Profile string `json:"profile,omitempty"`
	// Glyphs selects the glyph set (e.g. "unicode", "ascii").
	Glyphs string `json:"glyphs,omitempty"`
	// PreviewStyle is the markdown style used for the preview pane
	// (e.g. "auto", "dark", "light", "notty").
	PreviewStyle string `json:"previewStyle,omitempty"`
	// SidebarWidth is the sidebar pane width in cells (0 = automatic).
	SidebarWidth int `json:"sidebarWidth,omitempty"`

	// CustomProfile optionally defines a user-configured profile ("custom").
	CustomProfile *TUICustomProfile `json:"customProfile,omitempty"`
}

type TUICustomProfile struct {
	SelectedBg *AdaptiveColor `json:"selectedBg,omitempty"`
	SelectedFg *AdaptiveColor `json:"selectedFg,omitempty"`

	HeadingFg  *AdaptiveColor `json:"headingFg,omitempty"`
	BodyFg     *AdaptiveColor `json:"bodyFg,omitempty"`
	TwistyFg   *AdaptiveColor `json:"twistyFg,omitempty"`
	EllipsisFg *AdaptiveColor `json:"ellipsisFg,omitempty"`

	RestrictionFg *AdaptiveColor `json:"restrictionFg,omitempty"`
	StatusBarBg   *AdaptiveColor `json:"statusBarBg,omitempty"`
	StatusBarFg   *AdaptiveColor `json:"statusBarFg,omitempty"`
}

type AdaptiveColor struct {
	Light string `json:"light,omitempty"`
	Dark  string `json:"dark,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.treefold).
	if v := strings.TrimSpace(os.Getenv("TREEFOLD_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".treefold"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *GlobalConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Best-effort safety net: keep a copy of the previous config to make recovery from
	// accidental overwrites easier. Ignore errors to avoid blocking normal usage.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		// Use a unique temp file name + atomic rename to avoid cross-process corruption.
		_ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o644)
	}

	// Use a unique temp file name to avoid cross-process clobbering/corruption when
	// multiple treefold processes write config concurrently (CLI + TUI + server).
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}
