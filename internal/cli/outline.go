package cli

import (
	"context"
	"strings"

	"treefold-cli/internal/outline"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type outlineHeading struct {
	ID          int    `json:"id"`
	Level       int    `json:"level"`
	Title       string `json:"title"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	HasChildren bool   `json:"hasChildren"`
}

type outlineDoc struct {
	File     string           `json:"file"`
	Title    string           `json:"title,omitempty"`
	Tags     []string         `json:"tags,omitempty"`
	Error    string           `json:"error,omitempty"`
	Headings []outlineHeading `json:"headings"`
}

type outlineDocs []outlineDoc

func (d outlineDocs) TableHeader() []string { return []string{"FILE", "LEVEL", "TITLE"} }

func (d outlineDocs) TableRows() [][]string {
	var rows [][]string
	for _, doc := range d {
		if doc.Error != "" {
			rows = append(rows, []string{doc.File, "", "error: " + doc.Error})
			continue
		}
		for _, h := range doc.Headings {
			rows = append(rows, []string{doc.File, strings.Repeat("*", h.Level), h.Title})
		}
	}
	return rows
}

func newOutlineCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "outline <file>...",
		Short: "Print the heading tree of one or more documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := outlineFiles(cmd.Context(), args)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, docs)
		},
	}
}

// outlineFiles parses every file concurrently. A parse failure lands in that
// file's Error field rather than aborting the batch, and results keep
// argument order.
func outlineFiles(ctx context.Context, paths []string) (outlineDocs, error) {
	docs := make(outlineDocs, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			docs[i] = outlineOne(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func outlineOne(path string) outlineDoc {
	d := outlineDoc{File: path, Headings: []outlineHeading{}}
	doc, err := outline.ParseFile(path)
	if err != nil {
		d.Error = err.Error()
		return d
	}
	d.Title = doc.Title
	d.Tags = doc.Tags
	for _, n := range doc.Nodes {
		d.Headings = append(d.Headings, outlineHeading{
			ID:          int(n.ID),
			Level:       n.Level,
			Title:       n.Title,
			Start:       n.Start,
			End:         n.End,
			HasChildren: n.HasChildren,
		})
	}
	return d
}
