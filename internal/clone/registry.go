package clone

import (
	"treefold-cli/internal/outline"
)

// ViewKey derives the registry identity for a clone anchored at a heading:
// the anchor's title plus the document's source identity. Two clones of the
// same heading in the same document share a slot.
func ViewKey(anchorTitle, docID string) string {
	return anchorTitle + "::" + docID
}

// Registry is the process-wide mapping from identity key to live resource.
// Construct one at application start and inject it; it is not a package
// global. All mutation happens inside GetOrCreateView and DestroyView, each
// of which runs to completion within a single command.
type Registry struct {
	entries map[string]Resource
}

func NewRegistry() *Registry {
	return &Registry{entries: map[string]Resource{}}
}

// Put registers a foreign resource under its own key. Used by embedding
// applications that track non-view resources sharing the naming scheme.
func (r *Registry) Put(res Resource) {
	r.entries[res.Key()] = res
}

// Lookup returns the resource under key, if any.
func (r *Registry) Lookup(key string) (Resource, bool) {
	res, ok := r.entries[key]
	return res, ok
}

// Len reports the number of live entries.
func (r *Registry) Len() int { return len(r.entries) }

// GetOrCreateView returns a fresh clone view of doc anchored at the given
// node. A previous clone under the same key is destroyed first so stale
// restriction or fold state never leaks into the new navigation; a foreign
// resource under the key aborts with ResourceCollisionError and no state
// change.
//
// The new view starts fully collapsed with the anchor's path pre-expanded;
// the caller applies its requested depth on top.
func (r *Registry) GetOrCreateView(doc *outline.Document, anchor outline.NodeID) (*View, error) {
	if doc == nil {
		return nil, InvalidViewError{}
	}
	if anchor == outline.NoNode || int(anchor) >= len(doc.Nodes) {
		return nil, outline.MalformedDocumentError{DocID: doc.ID, Reason: "anchor node out of range"}
	}
	key := ViewKey(doc.Nodes[anchor].Title, doc.ID)

	if existing, ok := r.entries[key]; ok {
		held, isView := existing.(*View)
		if !isView || !held.isClone || held.doc.ID != doc.ID {
			return nil, ResourceCollisionError{Key: key}
		}
		held.destroy()
		delete(r.entries, key)
	}

	v := newCloneView(doc, key, anchor)
	v.RevealPath(anchor)
	r.entries[key] = v
	return v, nil
}

// DestroyView releases the view and frees its slot. Destroying an already
// destroyed view is a no-op.
func (r *Registry) DestroyView(v *View) {
	if v == nil || v.destroyed {
		return
	}
	if held, ok := r.entries[v.key]; ok && held == v {
		delete(r.entries, v.key)
	}
	v.destroy()
}

// Views returns the live clone views in the registry, in no particular order.
func (r *Registry) Views() []*View {
	var out []*View
	for _, res := range r.entries {
		if v, ok := res.(*View); ok {
			out = append(out, v)
		}
	}
	return out
}
