package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"treefold-cli/internal/format"
	"treefold-cli/internal/logging"
	"treefold-cli/internal/outline"
	"treefold-cli/internal/store"
	"treefold-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	PrettyJSON bool
	Format     string
	LogFile    string
	Verbose    bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "treefold",
		Short:        "Org-style folding for markdown outlines (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI on a document
  treefold open notes.md

  # Reopen the last document
  treefold

  # Scriptable commands
  treefold outline notes.md
  treefold search notes.md report --group top

  # Serve the outline API
  treefold serve --root ./docs
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI on the last opened document.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app, "")
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.Configure(app.LogFile, app.Verbose)
	}

	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TREEFOLD_FORMAT", "json"), "Output format (json|table)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log", "", "Write logs to this file (default $TREEFOLD_LOG; empty = off)")
	cmd.PersistentFlags().BoolVar(&app.Verbose, "verbose", false, "Log at debug level")

	cmd.AddCommand(newOpenCmd(app))
	cmd.AddCommand(newOutlineCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newSearchCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(app *App, path string) error {
	cfg, err := store.LoadConfig()
	if err != nil {
		return err
	}
	s, err := store.Default()
	if err != nil {
		return err
	}
	sess, err := s.LoadSession(context.Background())
	if err != nil {
		// Session loss is never fatal; start fresh.
		slog.Warn("session load failed", "error", err)
		sess = &store.Session{Version: 1}
	}

	if path == "" {
		path = sess.LastFile
	}
	if path == "" {
		return errors.New("no document to open; run `treefold open <file>` first")
	}

	doc, err := outline.ParseFile(path)
	if err != nil {
		return err
	}
	return tui.Run(tui.Options{
		Doc:     doc,
		Store:   s,
		Config:  cfg,
		Session: sess,
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// writeOut prints the command payload. JSON keeps the {"data": ...} envelope;
// table delegates to the payload's own tabular form.
func writeOut(cmd *cobra.Command, app *App, v any) error {
	if app.Format == "table" {
		return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
	}
	return format.Write(cmd.OutOrStdout(), map[string]any{"data": v}, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
