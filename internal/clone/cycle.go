package clone

import (
	"treefold-cli/internal/outline"
)

const (
	cmdCycleLocal  = "cycle-local"
	cmdCycleGlobal = "cycle-global"
)

// CycleContext tracks the previous cycle invocation so a second consecutive
// press on the same heading can behave differently from the first. Thread one
// through the dispatcher; any unrelated command must call Reset.
type CycleContext struct {
	lastCommand string
	lastViewKey string
	lastNode    outline.NodeID
}

// Reset clears the repeat state. Call it whenever a non-cycle command runs.
func (c *CycleContext) Reset() {
	if c == nil {
		return
	}
	*c = CycleContext{lastNode: outline.NoNode}
}

func (c *CycleContext) isRepeat(command, viewKey string, node outline.NodeID) bool {
	if c == nil {
		return false
	}
	return c.lastCommand == command && c.lastViewKey == viewKey && c.lastNode == node
}

func (c *CycleContext) note(command, viewKey string, node outline.NodeID) {
	if c == nil {
		return
	}
	c.lastCommand = command
	c.lastViewKey = viewKey
	c.lastNode = node
}

// CycleLocal advances the fold state of one heading. The first press on a
// heading with hidden children reveals one level; an immediately repeated
// press reveals every descendant heading; the next press collapses the whole
// subtree. Any intervening command restarts the ratchet.
func CycleLocal(v *View, node outline.NodeID, ctx *CycleContext) error {
	if v == nil || v.Document() == nil {
		return InvalidViewError{Key: viewKeyOf(v)}
	}
	if node == outline.NoNode || int(node) >= len(v.doc.Nodes) {
		// A miss still interrupts the ratchet: the next press on a
		// heading is not consecutive with the one before the miss.
		ctx.note(cmdCycleLocal, v.key, outline.NoNode)
		return EmptyScopeError{Op: cmdCycleLocal}
	}

	repeat := ctx.isRepeat(cmdCycleLocal, v.key, node)
	ctx.note(cmdCycleLocal, v.key, node)

	switch {
	case v.doc.HasHiddenChildren(node, v.scopedVisible):
		v.SetVisibility(node, outline.ChildrenShown)
	case repeat && (v.hasHiddenDescendant(node) || v.Visibility(node) == outline.ChildrenShown):
		v.RevealBranches(node)
	default:
		v.CollapseSubtree(node)
	}
	return nil
}

// scopedVisible treats headings outside the restriction as not hidden: they
// are out of the view's scope rather than folded.
func (v *View) scopedVisible(id outline.NodeID) bool {
	if !v.InRestriction(id) {
		return true
	}
	return v.Visible(id)
}

// hasHiddenDescendant reports whether any heading in the node's subtree is
// not currently shown, restriction included.
func (v *View) hasHiddenDescendant(id outline.NodeID) bool {
	for _, d := range v.doc.Descendants(id) {
		if v.InRestriction(d) && !v.Visible(d) {
			return true
		}
	}
	return false
}

// CycleGlobal deepens visibility across the whole view one level at a time:
// each press expands the shallowest headings that still hide children, never
// re-hiding anything, until no heading anywhere hides a child; the press
// after that collapses every top-level subtree.
func CycleGlobal(v *View, ctx *CycleContext) error {
	if v == nil || v.Document() == nil {
		return InvalidViewError{Key: viewKeyOf(v)}
	}
	ctx.note(cmdCycleGlobal, v.key, outline.NoNode)

	level := v.foldLevel()
	if level > 0 {
		for _, n := range v.doc.Nodes {
			if n.Level != level || !v.InRestriction(n.ID) {
				continue
			}
			if v.Visibility(n.ID) == outline.Collapsed {
				v.SetVisibility(n.ID, outline.ChildrenShown)
			}
		}
		return nil
	}

	for _, top := range v.topInScope() {
		v.CollapseSubtree(top)
	}
	return nil
}

// foldLevel returns the minimum heading level that still has invisible
// content, or 0 when every child heading in scope is visible. A heading has
// invisible content when at least one direct child heading is hidden; entry
// bodies do not count.
func (v *View) foldLevel() int {
	min := 0
	for _, n := range v.doc.Nodes {
		if !v.Shown(n.ID) {
			continue
		}
		if !v.doc.HasHiddenChildren(n.ID, v.scopedVisible) {
			continue
		}
		if min == 0 || n.Level < min {
			min = n.Level
		}
	}
	return min
}

// topInScope returns the shallowest headings inside the restriction; for an
// unrestricted view these are the document's top-level nodes.
func (v *View) topInScope() []outline.NodeID {
	min := 0
	for _, n := range v.doc.Nodes {
		if !v.InRestriction(n.ID) {
			continue
		}
		if min == 0 || n.Level < min {
			min = n.Level
		}
	}
	var out []outline.NodeID
	for _, n := range v.doc.Nodes {
		if n.Level == min && v.InRestriction(n.ID) {
			out = append(out, n.ID)
		}
	}
	return out
}

func viewKeyOf(v *View) string {
	if v == nil {
		return ""
	}
	return v.key
}
