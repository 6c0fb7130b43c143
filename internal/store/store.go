// Package store persists the small amount of cross-run state treefold keeps:
// the global config file, the per-document session database, and the TUI
// layout state. Documents themselves are never written; everything here is a
// convenience layer that the rest of the program treats as best-effort.
package store

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"treefold-cli/internal/outline"
)

const sessionDBFileName = "state.db"

// Session is the cross-run state kept in the config-dir SQLite database:
// which files were opened recently and, per file, where the cursor was and
// which headings were unfolded.
type Session struct {
	Version int `json:"version"`

	// LastFile is the document most recently marked via SetDoc.
	LastFile string `json:"lastFile,omitempty"`

	Docs []DocState `json:"docs"`
}

// DocState is the persisted per-document snapshot. Overlay records the source
// view's fold states so reopening a file restores its shape. It is only a
// snapshot: it is re-applied on open and silently dropped where the document
// has changed underneath it.
type DocState struct {
	Path     string                                `json:"path"`
	Cursor   int                                   `json:"cursor"`
	Overlay  map[outline.NodeID]outline.Visibility `json:"overlay,omitempty"`
	OpenedAt time.Time                             `json:"openedAt"`
}

type Store struct {
	Dir string
}

// Default returns the store rooted at the config dir (~/.treefold unless
// TREEFOLD_CONFIG_DIR overrides it).
func Default() (Store, error) {
	dir, err := ConfigDir()
	if err != nil {
		return Store{}, err
	}
	return Store{Dir: dir}, nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) sessionDBPath() string {
	return filepath.Join(s.Dir, sessionDBFileName)
}

// Doc returns the persisted state for path, if any.
func (sess *Session) Doc(path string) (DocState, bool) {
	for _, d := range sess.Docs {
		if d.Path == path {
			return d, true
		}
	}
	return DocState{}, false
}

// SetDoc upserts the state for st.Path and marks it as the last opened file.
func (sess *Session) SetDoc(st DocState) {
	if st.OpenedAt.IsZero() {
		st.OpenedAt = time.Now().UTC()
	}
	sess.LastFile = st.Path
	for i := range sess.Docs {
		if sess.Docs[i].Path == st.Path {
			sess.Docs[i] = st
			return
		}
	}
	sess.Docs = append(sess.Docs, st)
}

// Recent returns up to n document paths, most recently opened first.
// n <= 0 returns all of them.
func (sess *Session) Recent(n int) []string {
	docs := make([]DocState, len(sess.Docs))
	copy(docs, sess.Docs)
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].OpenedAt.After(docs[j].OpenedAt) })
	out := []string{}
	for _, d := range docs {
		if n > 0 && len(out) >= n {
			break
		}
		out = append(out, d.Path)
	}
	return out
}

// Trim drops the least recently opened entries beyond limit (0 keeps all).
func (sess *Session) Trim(limit int) {
	if limit <= 0 || len(sess.Docs) <= limit {
		return
	}
	keep := map[string]bool{}
	for _, p := range sess.Recent(limit) {
		keep[p] = true
	}
	kept := sess.Docs[:0]
	for _, d := range sess.Docs {
		if keep[d.Path] {
			kept = append(kept, d)
		}
	}
	sess.Docs = kept
}
