package clone

import (
	"treefold-cli/internal/outline"
)

// Span is a half-open offset range into a document's text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (s Span) Contains(off int) bool {
	return off >= s.Start && off < s.End
}

// Resource is anything that can occupy an identity slot in a Registry. Views
// are the managed kind; anything else under a view's key is a collision.
type Resource interface {
	Key() string
}

// View aliases a Document's content with its own restriction, visibility
// overlay and cursor. Many views may reference one document; a view never
// owns the document's lifetime.
type View struct {
	doc       *outline.Document
	key       string
	anchor    outline.NodeID
	isClone   bool
	destroyed bool

	// Restriction narrows the view to a sub-range; nil exposes the whole
	// document.
	Restriction *Span
	Cursor      int

	overlay map[outline.NodeID]outline.Visibility
}

// NewSourceView wraps a document in its primary, unregistered view: no
// restriction, everything collapsed.
func NewSourceView(doc *outline.Document) *View {
	return &View{
		doc:     doc,
		key:     "source::" + doc.ID,
		anchor:  outline.NoNode,
		overlay: map[outline.NodeID]outline.Visibility{},
	}
}

func newCloneView(doc *outline.Document, key string, anchor outline.NodeID) *View {
	v := &View{
		doc:     doc,
		key:     key,
		anchor:  anchor,
		isClone: true,
		overlay: map[outline.NodeID]outline.Visibility{},
	}
	if anchor != outline.NoNode && int(anchor) < len(doc.Nodes) {
		v.Cursor = doc.Nodes[anchor].Start
	}
	return v
}

func (v *View) Key() string            { return v.key }
func (v *View) Anchor() outline.NodeID { return v.anchor }
func (v *View) IsClone() bool          { return v.isClone }
func (v *View) Destroyed() bool        { return v.destroyed }

// Document returns the backing document, or nil once the view is destroyed.
func (v *View) Document() *outline.Document {
	if v.destroyed {
		return nil
	}
	return v.doc
}

// Title is the view's display name: the anchor heading for clones, the
// document title otherwise.
func (v *View) Title() string {
	if v.destroyed {
		return ""
	}
	if v.isClone && v.anchor != outline.NoNode {
		return v.doc.Nodes[v.anchor].Title
	}
	return v.doc.Title
}

// Content returns the text the view exposes: the restricted sub-range when a
// restriction is set, the whole source otherwise.
func (v *View) Content() []byte {
	if v.destroyed {
		return nil
	}
	if v.Restriction != nil {
		return v.doc.Source[v.Restriction.Start:v.Restriction.End]
	}
	return v.doc.Source
}

func (v *View) destroy() {
	v.destroyed = true
	v.overlay = nil
}

// Visibility returns the node's overlay state; untouched nodes are Collapsed.
func (v *View) Visibility(id outline.NodeID) outline.Visibility {
	if s, ok := v.overlay[id]; ok {
		return s
	}
	return outline.Collapsed
}

func (v *View) SetVisibility(id outline.NodeID, s outline.Visibility) {
	if v.overlay == nil {
		return
	}
	if s == outline.Collapsed {
		delete(v.overlay, id)
		return
	}
	v.overlay[id] = s
}

// InRestriction reports whether the node's heading lies inside the view's
// restriction (always true without one).
func (v *View) InRestriction(id outline.NodeID) bool {
	if v.destroyed {
		return false
	}
	if v.Restriction == nil {
		return true
	}
	if id == outline.NoNode || int(id) >= len(v.doc.Nodes) {
		return false
	}
	return v.Restriction.Contains(v.doc.Nodes[id].Start)
}

// Visible reports whether the node's heading is currently displayed: every
// ancestor must be in a state that shows its children.
func (v *View) Visible(id outline.NodeID) bool {
	if v.destroyed || id == outline.NoNode || int(id) >= len(v.doc.Nodes) {
		return false
	}
	for n := id; ; {
		p := v.doc.Nodes[n].Parent
		if p == outline.NoNode {
			return true
		}
		if v.Visibility(p) == outline.Collapsed {
			return false
		}
		n = p
	}
}

// Shown combines restriction and visibility: the node as the user sees it.
func (v *View) Shown(id outline.NodeID) bool {
	return v.InRestriction(id) && v.Visible(id)
}

// BodyVisible reports whether the node's own body text is displayed.
func (v *View) BodyVisible(id outline.NodeID) bool {
	return v.Shown(id) && v.Visibility(id) == outline.EntriesShown
}

// ResetOverlay collapses everything.
func (v *View) ResetOverlay() {
	if v.destroyed {
		return
	}
	v.overlay = map[outline.NodeID]outline.Visibility{}
}

// CollapseSubtree folds the node and its whole subtree.
func (v *View) CollapseSubtree(id outline.NodeID) {
	v.SetVisibility(id, outline.Collapsed)
	for _, d := range v.doc.Descendants(id) {
		v.SetVisibility(d, outline.Collapsed)
	}
}

// RevealBranches shows every descendant heading of the node, bodies hidden.
func (v *View) RevealBranches(id outline.NodeID) {
	v.SetVisibility(id, outline.BranchesShown)
	for _, d := range v.doc.Descendants(id) {
		v.SetVisibility(d, outline.BranchesShown)
	}
}

// RevealEntries shows every descendant heading and its body text.
func (v *View) RevealEntries(id outline.NodeID) {
	v.SetVisibility(id, outline.EntriesShown)
	for _, d := range v.doc.Descendants(id) {
		v.SetVisibility(d, outline.EntriesShown)
	}
}

// RevealPath upgrades each collapsed ancestor of the node to ChildrenShown so
// the node's heading is reachable; already-expanded ancestors are untouched.
func (v *View) RevealPath(id outline.NodeID) {
	if v.destroyed || id == outline.NoNode || int(id) >= len(v.doc.Nodes) {
		return
	}
	for p := v.doc.Nodes[id].Parent; p != outline.NoNode; p = v.doc.Nodes[p].Parent {
		if v.Visibility(p) == outline.Collapsed {
			v.SetVisibility(p, outline.ChildrenShown)
		}
	}
}

// Overlay returns a copy of the visibility overlay for persistence.
func (v *View) Overlay() map[outline.NodeID]outline.Visibility {
	out := make(map[outline.NodeID]outline.Visibility, len(v.overlay))
	for id, s := range v.overlay {
		out[id] = s
	}
	return out
}

// ApplyOverlay replaces the overlay with the given states, dropping entries
// that no longer name a node or carry an unknown state.
func (v *View) ApplyOverlay(states map[outline.NodeID]outline.Visibility) {
	if v.destroyed {
		return
	}
	v.overlay = map[outline.NodeID]outline.Visibility{}
	for id, s := range states {
		if id < 0 || int(id) >= len(v.doc.Nodes) || !s.Valid() || s == outline.Collapsed {
			continue
		}
		v.overlay[id] = s
	}
}
