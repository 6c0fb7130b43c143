package outline

import (
	"strconv"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// buildSource renders a heading-level sequence as markdown, one optional body
// line per heading.
func buildSource(levels []int, bodies []bool) string {
	var b strings.Builder
	for i, lv := range levels {
		b.WriteString(strings.Repeat("#", lv))
		b.WriteString(" N")
		b.WriteString(strconv.Itoa(i))
		b.WriteString("\n")
		if bodies[i] {
			b.WriteString("line ")
			b.WriteString(strconv.Itoa(i))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func TestEntryBounds_TilingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 16).Draw(t, "n")
		levels := make([]int, n)
		bodies := make([]bool, n)
		for i := range levels {
			levels[i] = rapid.IntRange(1, 5).Draw(t, "level"+strconv.Itoa(i))
			bodies[i] = rapid.Bool().Draw(t, "body"+strconv.Itoa(i))
		}

		doc, err := Parse("/tmp/prop.md", []byte(buildSource(levels, bodies)))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if len(doc.Nodes) != n {
			t.Fatalf("expected %d nodes; got %d", n, len(doc.Nodes))
		}

		for _, node := range doc.Nodes {
			start, end, err := doc.EntryBounds(node.ID, true)
			if err != nil {
				t.Fatalf("subtree bounds: %v", err)
			}
			ownStart, ownEnd, err := doc.EntryBounds(node.ID, false)
			if err != nil {
				t.Fatalf("own bounds: %v", err)
			}
			if ownStart != start || ownEnd > end {
				t.Fatalf("node %d: own range (%d,%d) escapes subtree (%d,%d)",
					node.ID, ownStart, ownEnd, start, end)
			}

			// Own body plus the children's subtrees must tile the
			// subtree range exactly, in order, with no gaps.
			cursor := ownEnd
			for _, c := range doc.Children(node.ID) {
				cs, ce, err := doc.EntryBounds(c, true)
				if err != nil {
					t.Fatalf("child bounds: %v", err)
				}
				if cs != cursor {
					t.Fatalf("node %d: gap or overlap before child %d (cursor %d, child start %d)",
						node.ID, c, cursor, cs)
				}
				cursor = ce
			}
			if cursor != end {
				t.Fatalf("node %d: children end at %d, subtree ends at %d", node.ID, cursor, end)
			}
		}

		for i := 1; i < len(doc.Nodes); i++ {
			if doc.Nodes[i].Start <= doc.Nodes[i-1].Start {
				t.Fatalf("node starts not strictly increasing at %d", i)
			}
		}
	})
}
