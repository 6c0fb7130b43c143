package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"treefold-cli/internal/outline"
	"treefold-cli/internal/sidebar"
)

type headingPayload struct {
	ID          outline.NodeID `json:"id"`
	Level       int            `json:"level"`
	Title       string         `json:"title"`
	Start       int            `json:"start"`
	End         int            `json:"end"`
	Parent      outline.NodeID `json:"parent"`
	HasChildren bool           `json:"hasChildren"`
}

type outlinePayload struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Tags     []string         `json:"tags,omitempty"`
	Headings []headingPayload `json:"headings"`
}

// handleOutline returns the heading tree of one document.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	abs, ok := s.resolvePath(r.URL.Query().Get("file"))
	if !ok {
		jsonError(w, "file query parameter must name a document under the served root", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	doc, _, err := s.loadDoc(abs)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			jsonError(w, "no such document: "+abs, http.StatusNotFound)
			return
		}
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	out := outlinePayload{ID: doc.ID, Title: doc.Title, Tags: doc.Tags}
	for _, n := range doc.Nodes {
		out.Headings = append(out.Headings, headingPayload{
			ID:          n.ID,
			Level:       n.Level,
			Title:       n.Title,
			Start:       n.Start,
			End:         n.End,
			Parent:      n.Parent,
			HasChildren: n.HasChildren,
		})
	}
	if out.Headings == nil {
		out.Headings = []headingPayload{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

type searchPayload struct {
	File   string          `json:"file"`
	Query  string          `json:"query"`
	Groups []sidebar.Group `json:"groups"`
}

// handleSearch runs a sidebar query over one document.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	abs, ok := s.resolvePath(r.URL.Query().Get("file"))
	if !ok {
		jsonError(w, "file query parameter must name a document under the served root", http.StatusBadRequest)
		return
	}

	var spec sidebar.GroupSpec
	switch r.URL.Query().Get("group") {
	case "", "none":
		spec = sidebar.GroupNone
	case "level":
		spec = sidebar.GroupLevel
	case "top":
		spec = sidebar.GroupTop
	default:
		jsonError(w, "group must be one of none, level, top", http.StatusBadRequest)
		return
	}

	var sortKey sidebar.SortKey
	switch r.URL.Query().Get("sort") {
	case "":
		sortKey = sidebar.SortDocument
	case "title":
		sortKey = sidebar.SortTitle
	case "level":
		sortKey = sidebar.SortLevel
	default:
		jsonError(w, "sort must be one of title, level", http.StatusBadRequest)
		return
	}

	query := r.URL.Query().Get("q")

	s.mu.Lock()
	doc, _, err := s.loadDoc(abs)
	var list *sidebar.List
	if err == nil {
		list, err = s.side.BuildList(doc, nil, sidebar.Predicate(query), spec, sortKey)
	}
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			jsonError(w, "no such document: "+abs, http.StatusNotFound)
			return
		}
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	out := searchPayload{File: doc.ID, Query: query, Groups: list.Groups}
	if out.Groups == nil {
		out.Groups = []sidebar.Group{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
