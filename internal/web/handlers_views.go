package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"sort"

	"treefold-cli/internal/clone"
	"treefold-cli/internal/outline"
)

type viewPayload struct {
	Key         string           `json:"key"`
	DocID       string           `json:"docId"`
	Title       string           `json:"title"`
	Anchor      outline.NodeID   `json:"anchor"`
	Restriction *clone.Span      `json:"restriction,omitempty"`
	Cursor      int              `json:"cursor"`
	Visible     []outline.NodeID `json:"visible"`
	Bodies      []outline.NodeID `json:"bodies"`
}

func buildViewPayload(v *clone.View) viewPayload {
	out := viewPayload{
		Key:         v.Key(),
		Title:       v.Title(),
		Anchor:      v.Anchor(),
		Restriction: v.Restriction,
		Cursor:      v.Cursor,
		Visible:     []outline.NodeID{},
		Bodies:      []outline.NodeID{},
	}
	doc := v.Document()
	if doc == nil {
		return out
	}
	out.DocID = doc.ID
	for _, n := range doc.Nodes {
		if v.Shown(n.ID) {
			out.Visible = append(out.Visible, n.ID)
		}
		if v.BodyVisible(n.ID) {
			out.Bodies = append(out.Bodies, n.ID)
		}
	}
	return out
}

// handleListViews lists the registered clone views.
func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	views := s.nav.Registry().Views()
	payloads := make([]viewPayload, 0, len(views))
	for _, v := range views {
		payloads = append(payloads, buildViewPayload(v))
	}
	s.mu.Unlock()

	sort.Slice(payloads, func(i, j int) bool { return payloads[i].Key < payloads[j].Key })

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"views": payloads})
}

type createViewRequest struct {
	File  string `json:"file"`
	Node  int    `json:"node"`
	Depth string `json:"depth,omitempty"`
}

// handleCreateView jumps to a heading, creating (or recreating) its clone view.
func (s *Server) handleCreateView(w http.ResponseWriter, r *http.Request) {
	var req createViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	abs, ok := s.resolvePath(req.File)
	if !ok {
		jsonError(w, "file must name a document under the served root", http.StatusBadRequest)
		return
	}

	depth := outline.Depth(req.Depth)
	if req.Depth == "" {
		depth = outline.DepthChildren
	}

	s.mu.Lock()
	_, src, err := s.loadDoc(abs)
	var view *clone.View
	if err == nil {
		view, err = s.nav.Jump(src, outline.NodeID(req.Node), depth)
	}
	var payload viewPayload
	if err == nil {
		payload = buildViewPayload(view)
	}
	s.mu.Unlock()

	if err != nil {
		var collision clone.ResourceCollisionError
		switch {
		case errors.Is(err, os.ErrNotExist):
			jsonError(w, "no such document: "+abs, http.StatusNotFound)
		case errors.As(err, &collision):
			jsonError(w, err.Error(), http.StatusConflict)
		default:
			jsonError(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(payload)
}

// handleDestroyView destroys the clone view named by the key query parameter.
func (s *Server) handleDestroyView(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		jsonError(w, "key query parameter is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	res, ok := s.nav.Registry().Lookup(key)
	if ok {
		if v, isView := res.(*clone.View); isView {
			s.nav.Registry().DestroyView(v)
		} else {
			ok = false
		}
	}
	s.mu.Unlock()

	if !ok {
		jsonError(w, "no such view: "+key, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
