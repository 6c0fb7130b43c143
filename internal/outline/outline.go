package outline

// Visibility is the display state of one node within one view. It is a
// property of a (node, view) pair, not of the node: the same heading may be
// folded in the source document and fully expanded in a clone.
type Visibility string

const (
	// Collapsed hides the node's body and every descendant.
	Collapsed Visibility = "collapsed"
	// ChildrenShown shows the node's direct child headings only; the body
	// and all grandchildren stay hidden.
	ChildrenShown Visibility = "children"
	// BranchesShown shows every descendant heading, bodies hidden.
	BranchesShown Visibility = "branches"
	// EntriesShown shows every descendant heading and its body text.
	EntriesShown Visibility = "entries"
)

func (v Visibility) Valid() bool {
	switch v {
	case Collapsed, ChildrenShown, BranchesShown, EntriesShown:
		return true
	}
	return false
}

// Depth selects how far a jump expands its target subtree.
type Depth string

const (
	DepthNone     Depth = "none"
	DepthChildren Depth = "children"
	DepthBranches Depth = "branches"
	DepthEntries  Depth = "entries"
)

func (d Depth) Valid() bool {
	switch d {
	case DepthNone, DepthChildren, DepthBranches, DepthEntries:
		return true
	}
	return false
}

// NodeID indexes into a Document's node sequence.
type NodeID int

// NoNode marks the absence of a node (cursor before the first heading,
// or a top-level node's parent).
const NoNode NodeID = -1

// Node is one heading in the outline. Start is the offset of the heading's
// own line; End is the offset just past the last descendant's text, so sibling
// ranges tile the parent with no gaps. BodyStart is the offset just past the
// heading line.
type Node struct {
	ID          NodeID `json:"id"`
	Level       int    `json:"level"`
	Title       string `json:"title"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	BodyStart   int    `json:"bodyStart"`
	Parent      NodeID `json:"parent"`
	HasChildren bool   `json:"hasChildren"`
}

// Document is the canonical backing store: ordered nodes plus the raw text.
// Exactly one Document exists per source, and it is immutable for the
// duration of any single command.
type Document struct {
	// ID is the document's source identity, an absolute file path for
	// documents loaded from disk.
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Tags  []string `json:"tags,omitempty"`
	Nodes []Node   `json:"nodes"`

	// ContentStart is the first offset past any front matter block.
	ContentStart int `json:"contentStart"`

	Source []byte `json:"-"`
}

// VisibleFunc reports whether a node is currently shown. Views supply one so
// that structural queries can account for per-view visibility without the
// outline model knowing about views.
type VisibleFunc func(NodeID) bool

func (d *Document) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(d.Nodes)
}

// Level returns the nesting level of the node, or an error when the node
// does not exist in this document.
func (d *Document) Level(id NodeID) (int, error) {
	if !d.valid(id) {
		return 0, MalformedDocumentError{DocID: d.ID, Reason: "node out of range"}
	}
	return d.Nodes[id].Level, nil
}

// HasChildren reports whether the node has at least one direct child heading.
func (d *Document) HasChildren(id NodeID) bool {
	if !d.valid(id) {
		return false
	}
	return d.Nodes[id].HasChildren
}

// HasHiddenChildren reports whether the node has a direct child heading that
// visible reports as not shown. This is the requireInvisible variant of
// HasChildren; with a nil visible every child counts as hidden, matching a
// freshly collapsed view.
func (d *Document) HasHiddenChildren(id NodeID, visible VisibleFunc) bool {
	if !d.HasChildren(id) {
		return false
	}
	if visible == nil {
		return true
	}
	for _, c := range d.Children(id) {
		if !visible(c) {
			return true
		}
	}
	return false
}

// EntryBounds returns the half-open source range owned by the node. With
// includeDescendants the end extends past the last descendant; otherwise the
// range covers the heading line and its own body only.
func (d *Document) EntryBounds(id NodeID, includeDescendants bool) (start, end int, err error) {
	if !d.valid(id) {
		return 0, 0, MalformedDocumentError{DocID: d.ID, Reason: "node out of range"}
	}
	n := d.Nodes[id]
	if n.Start > n.End || n.End > len(d.Source) {
		return 0, 0, MalformedDocumentError{DocID: d.ID, Reason: "node range exceeds document"}
	}
	if includeDescendants {
		return n.Start, n.End, nil
	}
	end = n.End
	if c := d.firstDescendant(id); c != NoNode {
		end = d.Nodes[c].Start
	}
	return n.Start, end, nil
}

func (d *Document) firstDescendant(id NodeID) NodeID {
	next := id + 1
	if d.valid(next) && d.Nodes[next].Level > d.Nodes[id].Level {
		return next
	}
	return NoNode
}

// Children returns the direct child nodes of id in document order. A heading
// that skips levels (an h3 directly under an h1) is a direct child of the
// nearest enclosing heading.
func (d *Document) Children(id NodeID) []NodeID {
	if !d.valid(id) {
		return nil
	}
	var out []NodeID
	for i := id + 1; d.valid(i) && d.Nodes[i].Start < d.Nodes[id].End; i++ {
		if d.Nodes[i].Parent == id {
			out = append(out, i)
		}
	}
	return out
}

// Descendants returns every node inside id's subtree, excluding id itself.
func (d *Document) Descendants(id NodeID) []NodeID {
	if !d.valid(id) {
		return nil
	}
	var out []NodeID
	for i := id + 1; d.valid(i) && d.Nodes[i].Start < d.Nodes[id].End; i++ {
		out = append(out, i)
	}
	return out
}

// TopLevel returns the nodes at the minimum level present in the document.
func (d *Document) TopLevel() []NodeID {
	min := 0
	for _, n := range d.Nodes {
		if min == 0 || n.Level < min {
			min = n.Level
		}
	}
	var out []NodeID
	for _, n := range d.Nodes {
		if n.Level == min {
			out = append(out, n.ID)
		}
	}
	return out
}

// NodeAt returns the innermost node whose range contains the offset, or
// NoNode when the offset precedes the first heading.
func (d *Document) NodeAt(offset int) NodeID {
	found := NoNode
	for _, n := range d.Nodes {
		if n.Start > offset {
			break
		}
		if offset < n.End {
			found = n.ID
		}
	}
	return found
}

// Body returns the node's own text between the heading line and the first
// child (or the range end when the node is a leaf).
func (d *Document) Body(id NodeID) string {
	if !d.valid(id) {
		return ""
	}
	_, end, err := d.EntryBounds(id, false)
	if err != nil {
		return ""
	}
	n := d.Nodes[id]
	if n.BodyStart >= end {
		return ""
	}
	return string(d.Source[n.BodyStart:end])
}

// Heading returns the node's raw heading line, markers included.
func (d *Document) Heading(id NodeID) string {
	if !d.valid(id) {
		return ""
	}
	n := d.Nodes[id]
	end := n.BodyStart
	for end > n.Start && (d.Source[end-1] == '\n' || d.Source[end-1] == '\r') {
		end--
	}
	return string(d.Source[n.Start:end])
}

// Validate checks the structural invariants: levels at least 1, starts
// strictly increasing, every node's range inside the document and inside its
// parent's range.
func (d *Document) Validate() error {
	for i, n := range d.Nodes {
		if n.Level < 1 {
			return MalformedDocumentError{DocID: d.ID, Reason: "node level below 1"}
		}
		if n.Start >= n.End || n.End > len(d.Source) {
			return MalformedDocumentError{DocID: d.ID, Reason: "node range exceeds document"}
		}
		if i > 0 && n.Start < d.Nodes[i-1].Start {
			return MalformedDocumentError{DocID: d.ID, Reason: "nodes out of order"}
		}
		if n.Parent != NoNode {
			if !d.valid(n.Parent) {
				return MalformedDocumentError{DocID: d.ID, Reason: "dangling parent"}
			}
			p := d.Nodes[n.Parent]
			if n.Start < p.Start || n.End > p.End {
				return MalformedDocumentError{DocID: d.ID, Reason: "child range escapes parent"}
			}
		}
	}
	return nil
}
