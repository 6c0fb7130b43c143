package outline

import (
	"errors"
	"strings"
	"testing"
)

const sampleDoc = `# Alpha
intro text
## Beta
beta body
### Gamma
gamma body
## Delta
delta body
# Omega
omega body
`

func parseSample(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse("/tmp/sample.md", []byte(sampleDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func nodeByTitle(t *testing.T, doc *Document, title string) Node {
	t.Helper()
	for _, n := range doc.Nodes {
		if n.Title == title {
			return n
		}
	}
	t.Fatalf("no node titled %q", title)
	return Node{}
}

func TestParse_HeadingTree(t *testing.T) {
	doc := parseSample(t)

	if len(doc.Nodes) != 5 {
		t.Fatalf("expected 5 nodes; got %d", len(doc.Nodes))
	}
	wantLevels := []int{1, 2, 3, 2, 1}
	wantTitles := []string{"Alpha", "Beta", "Gamma", "Delta", "Omega"}
	for i, n := range doc.Nodes {
		if n.Level != wantLevels[i] || n.Title != wantTitles[i] {
			t.Fatalf("node %d: expected level %d title %q; got level %d title %q",
				i, wantLevels[i], wantTitles[i], n.Level, n.Title)
		}
	}

	alpha := nodeByTitle(t, doc, "Alpha")
	beta := nodeByTitle(t, doc, "Beta")
	gamma := nodeByTitle(t, doc, "Gamma")
	omega := nodeByTitle(t, doc, "Omega")

	if alpha.Parent != NoNode || omega.Parent != NoNode {
		t.Fatalf("top-level parents: got alpha=%d omega=%d", alpha.Parent, omega.Parent)
	}
	if beta.Parent != alpha.ID || gamma.Parent != beta.ID {
		t.Fatalf("nesting: got beta.parent=%d gamma.parent=%d", beta.Parent, gamma.Parent)
	}
	if !alpha.HasChildren || !beta.HasChildren || gamma.HasChildren || omega.HasChildren {
		t.Fatalf("hasChildren: alpha=%v beta=%v gamma=%v omega=%v",
			alpha.HasChildren, beta.HasChildren, gamma.HasChildren, omega.HasChildren)
	}

	kids := doc.Children(alpha.ID)
	if len(kids) != 2 || doc.Nodes[kids[0]].Title != "Beta" || doc.Nodes[kids[1]].Title != "Delta" {
		t.Fatalf("children of Alpha: got %v", kids)
	}
}

func TestEntryBounds_TilesSubtree(t *testing.T) {
	doc := parseSample(t)
	alpha := nodeByTitle(t, doc, "Alpha")
	omega := nodeByTitle(t, doc, "Omega")

	start, end, err := doc.EntryBounds(alpha.ID, true)
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	if start != 0 || end != omega.Start {
		t.Fatalf("expected Alpha subtree (0,%d); got (%d,%d)", omega.Start, start, end)
	}

	// Own-entry bounds stop at the first child heading.
	beta := nodeByTitle(t, doc, "Beta")
	_, ownEnd, err := doc.EntryBounds(alpha.ID, false)
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	if ownEnd != beta.Start {
		t.Fatalf("expected own entry to end at Beta start %d; got %d", beta.Start, ownEnd)
	}

	// The children's subtree ranges plus the own body tile the subtree.
	covered := ownEnd - start
	for _, c := range doc.Children(alpha.ID) {
		cs, ce, err := doc.EntryBounds(c, true)
		if err != nil {
			t.Fatalf("bounds: %v", err)
		}
		covered += ce - cs
	}
	if covered != end-start {
		t.Fatalf("ranges do not tile: covered %d of %d", covered, end-start)
	}
}

func TestParse_FrontMatter(t *testing.T) {
	src := "---\ntitle: Field Notes\ntags: [field, notes]\n---\n# First\nbody\n"
	doc, err := Parse("/tmp/fm.md", []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Title != "Field Notes" {
		t.Fatalf("expected front matter title; got %q", doc.Title)
	}
	if len(doc.Tags) != 2 || doc.Tags[0] != "field" {
		t.Fatalf("expected tags [field notes]; got %v", doc.Tags)
	}
	if doc.ContentStart != strings.Index(src, "# First") {
		t.Fatalf("contentStart: expected %d; got %d", strings.Index(src, "# First"), doc.ContentStart)
	}
	if len(doc.Nodes) != 1 || doc.Nodes[0].Start != doc.ContentStart {
		t.Fatalf("expected one node starting at contentStart; got %+v", doc.Nodes)
	}
}

func TestParse_TitleFallsBackToHeading(t *testing.T) {
	doc := parseSample(t)
	if doc.Title != "Alpha" {
		t.Fatalf("expected first h1 as title; got %q", doc.Title)
	}

	noH1, err := Parse("/notes/weekly.md", []byte("## Only Subheads\ntext\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if noH1.Title != "weekly" {
		t.Fatalf("expected filename fallback; got %q", noH1.Title)
	}
}

func TestBodyAndHeading(t *testing.T) {
	doc := parseSample(t)
	beta := nodeByTitle(t, doc, "Beta")
	if got := doc.Body(beta.ID); got != "beta body\n" {
		t.Fatalf("expected beta body; got %q", got)
	}
	if got := doc.Heading(beta.ID); got != "## Beta" {
		t.Fatalf("expected raw heading line; got %q", got)
	}

	alpha := nodeByTitle(t, doc, "Alpha")
	if got := doc.Body(alpha.ID); got != "intro text\n" {
		t.Fatalf("expected alpha body to stop at first child; got %q", got)
	}
}

func TestNodeAt(t *testing.T) {
	doc := parseSample(t)
	gamma := nodeByTitle(t, doc, "Gamma")

	inGamma := strings.Index(sampleDoc, "gamma body")
	if got := doc.NodeAt(inGamma); got != gamma.ID {
		t.Fatalf("expected offset %d inside Gamma; got node %d", inGamma, got)
	}

	preamble, err := Parse("/tmp/pre.md", []byte("loose text\n# Head\nbody\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := preamble.NodeAt(0); got != NoNode {
		t.Fatalf("expected NoNode before first heading; got %d", got)
	}
}

func TestHasHiddenChildren(t *testing.T) {
	doc := parseSample(t)
	alpha := nodeByTitle(t, doc, "Alpha")
	beta := nodeByTitle(t, doc, "Beta")
	delta := nodeByTitle(t, doc, "Delta")

	if !doc.HasHiddenChildren(alpha.ID, nil) {
		t.Fatalf("nil visible func should treat all children as hidden")
	}
	allShown := func(NodeID) bool { return true }
	if doc.HasHiddenChildren(alpha.ID, allShown) {
		t.Fatalf("expected no hidden children when everything is visible")
	}
	onlyBeta := func(id NodeID) bool { return id == beta.ID }
	if !doc.HasHiddenChildren(alpha.ID, onlyBeta) {
		t.Fatalf("Delta is hidden; expected hidden children")
	}
	if doc.HasHiddenChildren(delta.ID, nil) {
		t.Fatalf("leaf node cannot have hidden children")
	}
}

func TestEntryBounds_BadNode(t *testing.T) {
	doc := parseSample(t)
	_, _, err := doc.EntryBounds(NodeID(99), true)
	var malformed MalformedDocumentError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedDocumentError; got %v", err)
	}
	if malformed.DocID != doc.ID {
		t.Fatalf("expected doc id %q in error; got %q", doc.ID, malformed.DocID)
	}
}

func TestValidate_RejectsInconsistentRanges(t *testing.T) {
	doc := parseSample(t)
	doc.Nodes[1].End = len(doc.Source) + 10
	if err := doc.Validate(); err == nil {
		t.Fatalf("expected validation failure for range past EOF")
	}
}

func TestParse_SkipsSetextHeadings(t *testing.T) {
	src := "Not A Node\n====\n# Real\nbody\n"
	doc, err := Parse("/tmp/setext.md", []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Nodes) != 1 || doc.Nodes[0].Title != "Real" {
		t.Fatalf("expected only the ATX heading; got %+v", doc.Nodes)
	}
}
