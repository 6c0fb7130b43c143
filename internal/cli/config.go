package cli

import (
	"strconv"

	"treefold-cli/internal/outline"
	"treefold-cli/internal/store"

	"github.com/spf13/cobra"
)

type configListing struct {
	Path   string              `json:"path"`
	Config *store.GlobalConfig `json:"config"`
}

func (c configListing) TableHeader() []string { return []string{"KEY", "VALUE"} }

func (c configListing) TableRows() [][]string {
	cfg := c.Config
	tui := cfg.TUI
	if tui == nil {
		tui = &store.TUIConfig{}
	}
	return [][]string{
		{"editor", cfg.Editor},
		{"defaultDepth", cfg.DefaultDepth},
		{"recentLimit", strconv.Itoa(cfg.RecentLimit)},
		{"tui.profile", tui.Profile},
		{"tui.glyphs", tui.Glyphs},
		{"tui.previewStyle", tui.PreviewStyle},
		{"tui.sidebarWidth", strconv.Itoa(tui.SidebarWidth)},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change global settings",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigPathCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			path, err := store.ConfigPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, configListing{Path: path, Config: cfg})
		},
	}
}

func newConfigPathCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := store.ConfigPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			cmd.Println(path)
			return nil
		},
	}
}

func newConfigSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting and save",
		Long: "Settable keys: editor, defaultDepth, recentLimit, tui.profile, " +
			"tui.glyphs, tui.previewStyle, tui.sidebarWidth.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := applyConfigValue(cfg, args[0], args[1]); err != nil {
				return writeErr(cmd, err)
			}
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]string{"key": args[0], "value": args[1]})
		},
	}
}

func applyConfigValue(cfg *store.GlobalConfig, key, value string) error {
	switch key {
	case "editor":
		cfg.Editor = value
	case "defaultDepth":
		if !outline.Depth(value).Valid() {
			return errBadConfigValue{key: key, value: value, reason: "want none|children|branches|entries"}
		}
		cfg.DefaultDepth = value
	case "recentLimit":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return errBadConfigValue{key: key, value: value, reason: "want a non-negative integer"}
		}
		cfg.RecentLimit = n
	case "tui.profile":
		ensureTUI(cfg).Profile = value
	case "tui.glyphs":
		if value != "unicode" && value != "ascii" {
			return errBadConfigValue{key: key, value: value, reason: "want unicode|ascii"}
		}
		ensureTUI(cfg).Glyphs = value
	case "tui.previewStyle":
		ensureTUI(cfg).PreviewStyle = value
	case "tui.sidebarWidth":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return errBadConfigValue{key: key, value: value, reason: "want a positive integer"}
		}
		ensureTUI(cfg).SidebarWidth = n
	default:
		return errUnknownConfigKey{key: key}
	}
	return nil
}

func ensureTUI(cfg *store.GlobalConfig) *store.TUIConfig {
	if cfg.TUI == nil {
		cfg.TUI = &store.TUIConfig{}
	}
	return cfg.TUI
}
