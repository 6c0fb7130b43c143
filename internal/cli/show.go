package cli

import (
	"strconv"
	"strings"

	"treefold-cli/internal/clone"
	"treefold-cli/internal/nav"
	"treefold-cli/internal/outline"
	"treefold-cli/internal/store"

	"github.com/spf13/cobra"
)

type visibleRow struct {
	ID         int    `json:"id"`
	Level      int    `json:"level"`
	Title      string `json:"title"`
	Visibility string `json:"visibility"`
	Body       bool   `json:"body"`
}

type viewSummary struct {
	File        string       `json:"file"`
	Key         string       `json:"key"`
	Node        int          `json:"node"`
	Title       string       `json:"title"`
	Depth       string       `json:"depth"`
	Restriction *clone.Span  `json:"restriction,omitempty"`
	Visible     []visibleRow `json:"visible"`
}

func (s viewSummary) TableHeader() []string {
	return []string{"ID", "LEVEL", "TITLE", "VISIBILITY", "BODY"}
}

func (s viewSummary) TableRows() [][]string {
	rows := make([][]string, 0, len(s.Visible))
	for _, r := range s.Visible {
		body := ""
		if r.Body {
			body = "yes"
		}
		rows = append(rows, []string{
			strconv.Itoa(r.ID),
			strings.Repeat("*", r.Level),
			r.Title,
			r.Visibility,
			body,
		})
	}
	return rows
}

func newShowCmd(app *App) *cobra.Command {
	var (
		nodeID int
		depth  string
		asText bool
	)

	cmd := &cobra.Command{
		Use:   "show <file> [heading]",
		Short: "Jump to a heading and print what its view shows",
		Long: strings.TrimSpace(`
Show creates the same clone view the TUI's jump command would and prints its
contents: the restriction, plus every heading the view exposes with its
visibility state. Pick the target by title (first match, case-insensitive) or
by node id; with neither, the whole document is shown unrestricted.
`),
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}

			d := resolveDepth(depth, cfg)
			if !d.Valid() {
				return writeErr(cmd, errUnknownDepth{value: string(d)})
			}

			doc, err := outline.ParseFile(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			node := outline.NoNode
			switch {
			case nodeID >= 0:
				node = outline.NodeID(nodeID)
			case len(args) == 2:
				node = findHeading(doc, args[1])
				if node == outline.NoNode {
					return writeErr(cmd, errHeadingNotFound{file: args[0], query: args[1]})
				}
			}

			disp := nav.NewDispatcher(clone.NewRegistry())
			src := clone.NewSourceView(doc)
			view, err := disp.Jump(src, node, d)
			if err != nil {
				return writeErr(cmd, err)
			}

			if asText {
				cmd.Print(string(view.Content()))
				return nil
			}
			return writeOut(cmd, app, summarizeView(args[0], view, node, d))
		},
	}

	cmd.Flags().IntVar(&nodeID, "node", -1, "Target heading by node id instead of title")
	cmd.Flags().StringVar(&depth, "depth", "", "Expansion depth: none|children|branches|entries (default from config)")
	cmd.Flags().BoolVar(&asText, "text", false, "Print the view's raw text instead of a summary")

	return cmd
}

// resolveDepth picks the flag value, then the configured default, then
// children.
func resolveDepth(flag string, cfg *store.GlobalConfig) outline.Depth {
	if flag != "" {
		return outline.Depth(flag)
	}
	if cfg != nil && cfg.DefaultDepth != "" {
		return outline.Depth(cfg.DefaultDepth)
	}
	return outline.DepthChildren
}

// findHeading returns the first node whose title matches query, trying exact
// (case-insensitive) before substring so "Inbox" beats "Inbox archive".
func findHeading(doc *outline.Document, query string) outline.NodeID {
	q := strings.ToLower(strings.TrimSpace(query))
	for _, n := range doc.Nodes {
		if strings.ToLower(n.Title) == q {
			return n.ID
		}
	}
	for _, n := range doc.Nodes {
		if strings.Contains(strings.ToLower(n.Title), q) {
			return n.ID
		}
	}
	return outline.NoNode
}

func summarizeView(file string, v *clone.View, node outline.NodeID, depth outline.Depth) viewSummary {
	sum := viewSummary{
		File:        file,
		Key:         v.Key(),
		Node:        int(node),
		Title:       v.Title(),
		Depth:       string(depth),
		Restriction: v.Restriction,
		Visible:     []visibleRow{},
	}
	doc := v.Document()
	for _, n := range doc.Nodes {
		if !v.Shown(n.ID) {
			continue
		}
		sum.Visible = append(sum.Visible, visibleRow{
			ID:         int(n.ID),
			Level:      n.Level,
			Title:      n.Title,
			Visibility: string(v.Visibility(n.ID)),
			Body:       v.BodyVisible(n.ID),
		})
	}
	return sum
}
