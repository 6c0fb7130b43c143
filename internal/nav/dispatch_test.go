package nav

import (
	"errors"
	"testing"

	"treefold-cli/internal/clone"
	"treefold-cli/internal/outline"
)

const navDoc = `# A
a body
## A1
a1 body
## A2
a2 body
### A2a
a2a body
# B
b body
`

func fixture(t *testing.T) (*outline.Document, *clone.View, *Dispatcher) {
	t.Helper()
	doc, err := outline.Parse("/notes/nav.md", []byte(navDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc, clone.NewSourceView(doc), NewDispatcher(clone.NewRegistry())
}

func nodeID(t *testing.T, doc *outline.Document, title string) outline.NodeID {
	t.Helper()
	for _, n := range doc.Nodes {
		if n.Title == title {
			return n.ID
		}
	}
	t.Fatalf("no node titled %q", title)
	return outline.NoNode
}

type fakeSurface struct{ cur *clone.View }

func (s *fakeSurface) Current() *clone.View { return s.cur }
func (s *fakeSurface) Show(v *clone.View)   { s.cur = v }

func TestJump_ChildrenDepth(t *testing.T) {
	doc, src, d := fixture(t)
	a := nodeID(t, doc, "A")
	a1 := nodeID(t, doc, "A1")
	a2 := nodeID(t, doc, "A2")
	a2a := nodeID(t, doc, "A2a")

	v, err := d.Jump(src, a, outline.DepthChildren)
	if err != nil {
		t.Fatalf("jump: %v", err)
	}
	start, end, _ := doc.EntryBounds(a, true)
	if v.Restriction == nil || v.Restriction.Start != start || v.Restriction.End != end {
		t.Fatalf("expected restriction (%d,%d); got %+v", start, end, v.Restriction)
	}
	if !v.Shown(a1) || !v.Shown(a2) {
		t.Fatalf("expected child headings shown; got A1=%v A2=%v", v.Shown(a1), v.Shown(a2))
	}
	if v.Shown(a2a) {
		t.Fatalf("children depth must not reveal grandchildren")
	}
	if v.BodyVisible(a1) || v.BodyVisible(a) {
		t.Fatalf("children depth must not reveal bodies")
	}
	if d.Registry().Len() != 1 {
		t.Fatalf("expected one registered clone; got %d", d.Registry().Len())
	}
}

func TestJump_EntriesDepth(t *testing.T) {
	doc, src, d := fixture(t)
	a := nodeID(t, doc, "A")
	a1 := nodeID(t, doc, "A1")
	a2a := nodeID(t, doc, "A2a")

	v, err := d.Jump(src, a, outline.DepthEntries)
	if err != nil {
		t.Fatalf("jump: %v", err)
	}
	if !v.Shown(a1) || !v.Shown(a2a) {
		t.Fatalf("expected every heading shown")
	}
	if !v.BodyVisible(a1) || !v.BodyVisible(a2a) {
		t.Fatalf("entries depth must reveal bodies")
	}
}

func TestJump_BranchesDepth(t *testing.T) {
	doc, src, d := fixture(t)
	a := nodeID(t, doc, "A")
	a2a := nodeID(t, doc, "A2a")

	v, err := d.Jump(src, a, outline.DepthBranches)
	if err != nil {
		t.Fatalf("jump: %v", err)
	}
	if !v.Shown(a2a) {
		t.Fatalf("expected deep headings shown")
	}
	if v.BodyVisible(a2a) {
		t.Fatalf("branches depth must keep bodies hidden")
	}
}

func TestJump_NoneDepth(t *testing.T) {
	doc, src, d := fixture(t)
	a := nodeID(t, doc, "A")
	a1 := nodeID(t, doc, "A1")

	v, err := d.Jump(src, a, outline.DepthNone)
	if err != nil {
		t.Fatalf("jump: %v", err)
	}
	start, end, _ := doc.EntryBounds(a, false)
	if v.Restriction == nil || v.Restriction.Start != start || v.Restriction.End != end {
		t.Fatalf("expected own-entry restriction (%d,%d); got %+v", start, end, v.Restriction)
	}
	if !v.BodyVisible(a) {
		t.Fatalf("expected the node's own body visible")
	}
	if v.InRestriction(a1) {
		t.Fatalf("descendants must sit outside a none-depth restriction")
	}
}

func TestJump_NoHeadingTargetsSource(t *testing.T) {
	doc, err := outline.Parse("/notes/pre.md", []byte("preamble text\n# A\nbody\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	src := clone.NewSourceView(doc)
	d := NewDispatcher(clone.NewRegistry())

	v, err := d.JumpAt(src, 0, outline.DepthChildren)
	if err != nil {
		t.Fatalf("jump: %v", err)
	}
	if v != src {
		t.Fatalf("expected the source view itself as target")
	}
	if d.Registry().Len() != 0 {
		t.Fatalf("no clone may be created without a heading")
	}
}

func TestJump_UnknownDepthRejected(t *testing.T) {
	doc, src, d := fixture(t)

	_, err := d.Jump(src, nodeID(t, doc, "A"), outline.Depth("sideways"))
	var bad InvalidDepthError
	if !errors.As(err, &bad) {
		t.Fatalf("expected InvalidDepthError; got %v", err)
	}
	if d.Registry().Len() != 0 {
		t.Fatalf("rejected jump must not register anything")
	}
}

func TestJump_MalformedNodeLeavesRegistryAlone(t *testing.T) {
	doc, src, d := fixture(t)

	if _, err := d.Jump(src, nodeID(t, doc, "B"), outline.DepthChildren); err != nil {
		t.Fatalf("setup jump: %v", err)
	}
	_, err := d.Jump(src, outline.NodeID(77), outline.DepthChildren)
	var malformed outline.MalformedDocumentError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedDocumentError; got %v", err)
	}
	if d.Registry().Len() != 1 {
		t.Fatalf("failed navigation must not disturb registered views")
	}
}

func TestJump_CollisionAborts(t *testing.T) {
	doc, src, d := fixture(t)
	a1 := nodeID(t, doc, "A1")

	d.Registry().Put(fakeResource{key: clone.ViewKey("A1", doc.ID)})
	_, err := d.Jump(src, a1, outline.DepthChildren)
	var collision clone.ResourceCollisionError
	if !errors.As(err, &collision) {
		t.Fatalf("expected ResourceCollisionError; got %v", err)
	}
	if d.Registry().Len() != 1 {
		t.Fatalf("collision must leave the registry unchanged")
	}
}

type fakeResource struct{ key string }

func (f fakeResource) Key() string { return f.key }

func TestJump_ReusesDisplayedCloneSurface(t *testing.T) {
	doc, src, d := fixture(t)

	v1, err := d.Jump(src, nodeID(t, doc, "A1"), outline.DepthChildren)
	if err != nil {
		t.Fatalf("first jump: %v", err)
	}
	srcSurface := &fakeSurface{cur: src}
	cloneSurface := &fakeSurface{cur: v1}
	d.AttachSurface(srcSurface)
	d.AttachSurface(cloneSurface)

	v2, err := d.Jump(src, nodeID(t, doc, "A2"), outline.DepthChildren)
	if err != nil {
		t.Fatalf("second jump: %v", err)
	}
	if cloneSurface.cur != v2 {
		t.Fatalf("expected the clone surface redirected to the new view")
	}
	if srcSurface.cur != src {
		t.Fatalf("the source surface must never be redirected")
	}
}

func TestJump_InterruptsCycleRepeat(t *testing.T) {
	doc, src, d := fixture(t)
	a := nodeID(t, doc, "A")
	a1 := nodeID(t, doc, "A1")

	if err := d.CycleLocal(src, a); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if !src.Shown(a1) {
		t.Fatalf("expected first press to reveal children")
	}
	if _, err := d.Jump(src, nodeID(t, doc, "B"), outline.DepthChildren); err != nil {
		t.Fatalf("jump: %v", err)
	}

	// Jump reset the repeat sequence, so this press restarts the ratchet
	// instead of revealing all branches.
	if err := d.CycleLocal(src, a); err != nil {
		t.Fatalf("cycle after jump: %v", err)
	}
	if src.Shown(a1) {
		t.Fatalf("expected collapse, not a branch reveal")
	}
}

func TestJump_DestroyedViewRejected(t *testing.T) {
	doc, src, d := fixture(t)

	v, err := d.Jump(src, nodeID(t, doc, "A1"), outline.DepthChildren)
	if err != nil {
		t.Fatalf("jump: %v", err)
	}
	d.Registry().DestroyView(v)

	_, err = d.Jump(v, nodeID(t, doc, "A1"), outline.DepthChildren)
	var invalid clone.InvalidViewError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidViewError; got %v", err)
	}
}
