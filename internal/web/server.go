// Package web exposes outlines, clone views and sidebar search over HTTP so
// a browser (or curl) can inspect what the TUI is looking at.
//
// The outline core is single-threaded by design; the server serializes every
// request that touches documents, the registry or the dispatcher behind one
// mutex rather than making the core lock-aware.
package web

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"treefold-cli/internal/clone"
	"treefold-cli/internal/nav"
	"treefold-cli/internal/outline"
	"treefold-cli/internal/sidebar"
)

// Server is the HTTP API server for treefold.
type Server struct {
	router chi.Router
	log    *slog.Logger

	// root confines file access; requests may only name documents under it.
	root string

	mu      sync.Mutex
	docs    map[string]*outline.Document
	sources map[string]*clone.View
	nav     *nav.Dispatcher
	side    *sidebar.Controller
}

// NewServer creates and configures the HTTP server rooted at dir.
func NewServer(root string, log *slog.Logger) (*Server, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	s := &Server{
		log:     log,
		root:    abs,
		docs:    map[string]*outline.Document{},
		sources: map[string]*clone.View{},
		nav:     nav.NewDispatcher(clone.NewRegistry()),
		side:    sidebar.NewController(nil, nil),
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)

	r.Get("/api/outline", s.handleOutline)
	r.Get("/api/views", s.handleListViews)
	r.Post("/api/views", s.handleCreateView)
	r.Delete("/api/views", s.handleDestroyView)
	r.Get("/api/search", s.handleSearch)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

const indexPage = `<!doctype html>
<html>
<head><title>treefold</title></head>
<body>
<h1>treefold</h1>
<p>Outline API:</p>
<ul>
<li><code>GET /api/outline?file=REL</code> — heading tree of a document</li>
<li><code>GET /api/views</code> — registered clone views</li>
<li><code>POST /api/views</code> — <code>{"file": REL, "node": N, "depth": "none|children|branches|entries"}</code></li>
<li><code>DELETE /api/views?key=KEY</code> — destroy a clone view</li>
<li><code>GET /api/search?file=REL&amp;q=TEXT&amp;group=none|level|top</code> — sidebar search</li>
</ul>
</body>
</html>
`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexPage))
}

// resolvePath maps a request's file parameter to an absolute path under root.
// Absolute inputs are accepted as long as they stay inside root.
func (s *Server) resolvePath(file string) (string, bool) {
	file = strings.TrimSpace(file)
	if file == "" {
		return "", false
	}
	abs := file
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(s.root, abs)
	}
	abs = filepath.Clean(abs)
	if abs != s.root && !strings.HasPrefix(abs, s.root+string(filepath.Separator)) {
		return "", false
	}
	return abs, true
}

// loadDoc parses (or re-serves) the document at abs and its source view.
// Callers must hold s.mu.
func (s *Server) loadDoc(abs string) (*outline.Document, *clone.View, error) {
	if doc, ok := s.docs[abs]; ok {
		return doc, s.sources[doc.ID], nil
	}
	doc, err := outline.ParseFile(abs)
	if err != nil {
		return nil, nil, err
	}
	src := clone.NewSourceView(doc)
	s.docs[abs] = doc
	s.sources[doc.ID] = src
	return doc, src, nil
}
