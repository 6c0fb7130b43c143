package cli

import (
	"treefold-cli/internal/clone"
	"treefold-cli/internal/export"
	"treefold-cli/internal/nav"
	"treefold-cli/internal/outline"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var (
		depthFlag string
		asFlag    string
		outPath   string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "export <file> [heading]",
		Short: "Write the visible outline to markdown or HTML",
		Long: `Export renders what a view of the document shows: every heading the fold
state exposes, plus the bodies it makes visible. With a heading argument the
export narrows to that subtree, like a jump; --depth controls how far the
target expands. Without --out the result goes to stdout.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.Normalize(asFlag)
			if err != nil {
				return writeErr(cmd, err)
			}
			d := outline.Depth(depthFlag)
			if !d.Valid() {
				return writeErr(cmd, errUnknownDepth{value: depthFlag})
			}

			doc, err := outline.ParseFile(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			src := clone.NewSourceView(doc)
			view := src
			if len(args) == 2 {
				node := findHeading(doc, args[1])
				if node == outline.NoNode {
					return writeErr(cmd, errHeadingNotFound{file: args[0], query: args[1]})
				}
				disp := nav.NewDispatcher(clone.NewRegistry())
				view, err = disp.Jump(src, node, d)
				if err != nil {
					return writeErr(cmd, err)
				}
			} else {
				export.Expand(src, d)
			}

			out, err := export.Render(view, format)
			if err != nil {
				return writeErr(cmd, err)
			}

			if outPath == "" {
				_, err := cmd.OutOrStdout().Write(out)
				return err
			}
			res, err := export.WriteFile(outPath, out, overwrite)
			if err != nil {
				return writeErr(cmd, err)
			}
			res.Format = format
			return writeOut(cmd, app, res)
		},
	}

	cmd.Flags().StringVar(&depthFlag, "depth", "entries", "Expansion depth: none|children|branches|entries")
	cmd.Flags().StringVar(&asFlag, "as", "markdown", "Export format: markdown|html")
	cmd.Flags().StringVar(&outPath, "out", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing output file")

	return cmd
}
