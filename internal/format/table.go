package format

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// Tabler lets a payload describe its own tabular rendering. Payloads that
// don't implement it are JSON-only.
type Tabler interface {
	TableHeader() []string
	TableRows() [][]string
}

func WriteTable(w io.Writer, v any) error {
	t, ok := v.(Tabler)
	if !ok {
		return fmt.Errorf("no table form for %T (use --format json)", v)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(t.TableHeader())
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	for _, row := range t.TableRows() {
		table.Append(row)
	}
	table.Render()
	return nil
}
