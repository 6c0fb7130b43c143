package nav

import (
	"treefold-cli/internal/clone"
	"treefold-cli/internal/outline"
)

// Surface is a place the display layer can present a view. The dispatcher
// never opens or closes surfaces; it only redirects an existing one when that
// avoids stacking up extra jump targets.
type Surface interface {
	Current() *clone.View
	Show(v *clone.View)
}

// Dispatcher resolves navigation commands against the clone registry and
// carries the repeat context for the visibility cycles. Construct one per
// application; it owns no document state.
type Dispatcher struct {
	registry *clone.Registry
	ctx      *clone.CycleContext
	surfaces []Surface
}

func NewDispatcher(reg *clone.Registry) *Dispatcher {
	ctx := &clone.CycleContext{}
	ctx.Reset()
	return &Dispatcher{registry: reg, ctx: ctx}
}

func (d *Dispatcher) Registry() *clone.Registry { return d.registry }

// AttachSurface registers a display surface for opportunistic reuse.
func (d *Dispatcher) AttachSurface(s Surface) {
	d.surfaces = append(d.surfaces, s)
}

// CycleLocal runs the per-heading visibility cycle with the dispatcher's
// repeat context.
func (d *Dispatcher) CycleLocal(v *clone.View, node outline.NodeID) error {
	return clone.CycleLocal(v, node, d.ctx)
}

// CycleGlobal runs the whole-view visibility cycle.
func (d *Dispatcher) CycleGlobal(v *clone.View) error {
	return clone.CycleGlobal(v, d.ctx)
}

// ResetCycle marks that an unrelated command ran, restarting any repeat
// sequence. Call it for every command that is not one of the cycles.
func (d *Dispatcher) ResetCycle() {
	d.ctx.Reset()
}

// Jump navigates to a heading in its own clone view at the requested depth.
// With no heading (cursor before the first one) the source view itself is the
// target and no clone is created. The returned view is the caller's to
// present; when another surface already shows a clone of the same document,
// that surface is redirected to the new view instead of leaving a stale one
// up.
func (d *Dispatcher) Jump(src *clone.View, node outline.NodeID, depth outline.Depth) (*clone.View, error) {
	d.ctx.Reset()

	if src == nil || src.Document() == nil {
		return nil, clone.InvalidViewError{Key: keyOf(src)}
	}
	if !depth.Valid() {
		return nil, InvalidDepthError{Depth: string(depth)}
	}
	if node == outline.NoNode {
		return src, nil
	}

	doc := src.Document()
	// Resolve the restriction before touching the registry so a malformed
	// node leaves existing views fully intact.
	start, end, err := doc.EntryBounds(node, depth != outline.DepthNone)
	if err != nil {
		return nil, err
	}

	view, err := d.registry.GetOrCreateView(doc, node)
	if err != nil {
		return nil, err
	}
	view.Restriction = &clone.Span{Start: start, End: end}

	switch depth {
	case outline.DepthNone:
		// Only the node's own body; descendants sit outside the
		// restriction.
		view.SetVisibility(node, outline.EntriesShown)
	case outline.DepthChildren:
		view.SetVisibility(node, outline.ChildrenShown)
	case outline.DepthBranches:
		view.RevealBranches(node)
	case outline.DepthEntries:
		view.RevealEntries(node)
	}

	d.redirect(src, view)
	return view, nil
}

// JumpAt is Jump with the heading resolved from a text offset, the way a
// cursor-driven caller sees the document.
func (d *Dispatcher) JumpAt(src *clone.View, offset int, depth outline.Depth) (*clone.View, error) {
	if src == nil || src.Document() == nil {
		return nil, clone.InvalidViewError{Key: keyOf(src)}
	}
	return d.Jump(src, src.Document().NodeAt(offset), depth)
}

// redirect points at most one surface currently showing another clone of the
// same document at the new view.
func (d *Dispatcher) redirect(src, target *clone.View) {
	doc := target.Document()
	if doc == nil {
		return
	}
	for _, s := range d.surfaces {
		cur := s.Current()
		if cur == nil || cur == src || cur == target || !cur.IsClone() {
			continue
		}
		curDoc := cur.Document()
		if curDoc != nil && curDoc.ID == doc.ID {
			s.Show(target)
			return
		}
	}
}

func keyOf(v *clone.View) string {
	if v == nil {
		return ""
	}
	return v.Key()
}
