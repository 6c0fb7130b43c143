package cli

import (
	"strconv"
	"strings"

	"treefold-cli/internal/outline"
	"treefold-cli/internal/sidebar"

	"github.com/spf13/cobra"
)

type searchResult struct {
	File   string          `json:"file"`
	Query  string          `json:"query"`
	Groups []sidebar.Group `json:"groups"`
}

func (r searchResult) TableHeader() []string { return []string{"GROUP", "NODE", "LEVEL", "TITLE"} }

func (r searchResult) TableRows() [][]string {
	var rows [][]string
	for _, g := range r.Groups {
		for _, e := range g.Entries {
			rows = append(rows, []string{
				g.Label,
				strconv.Itoa(int(e.Node)),
				strings.Repeat("*", e.Level),
				e.Title,
			})
		}
	}
	return rows
}

func newSearchCmd(app *App) *cobra.Command {
	var (
		group string
		sort  string
	)

	cmd := &cobra.Command{
		Use:   "search <file> <query>...",
		Short: "Find headings by title match",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, ok := parseGroupSpec(group)
			if !ok {
				return writeErr(cmd, errBadConfigValue{key: "--group", value: group, reason: "want none|level|top"})
			}
			key, ok := parseSortKey(sort)
			if !ok {
				return writeErr(cmd, errBadConfigValue{key: "--sort", value: sort, reason: "want document|title|level"})
			}

			doc, err := outline.ParseFile(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			query := strings.Join(args[1:], " ")

			ctrl := sidebar.NewController(nil, nil)
			list, err := ctrl.BuildList(doc, nil, sidebar.Predicate(query), spec, key)
			if err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, searchResult{
				File:   args[0],
				Query:  query,
				Groups: list.Groups,
			})
		},
	}

	cmd.Flags().StringVar(&group, "group", "none", "Group results: none|level|top")
	cmd.Flags().StringVar(&sort, "sort", "document", "Order within groups: document|title|level")

	return cmd
}

func parseGroupSpec(s string) (sidebar.GroupSpec, bool) {
	switch s {
	case "", "none":
		return sidebar.GroupNone, true
	case "level":
		return sidebar.GroupLevel, true
	case "top":
		return sidebar.GroupTop, true
	}
	return "", false
}

func parseSortKey(s string) (sidebar.SortKey, bool) {
	switch s {
	case "", "document":
		return sidebar.SortDocument, true
	case "title":
		return sidebar.SortTitle, true
	case "level":
		return sidebar.SortLevel, true
	}
	return "", false
}
