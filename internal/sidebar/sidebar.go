// Package sidebar builds the companion list views: scrollable collections of
// matching headings produced by external search and grouping collaborators.
// The controller here stays thin; query evaluation and grouping strategy
// belong to the injected functions.
package sidebar

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"treefold-cli/internal/clone"
	"treefold-cli/internal/outline"
)

// Predicate is the opaque query handed to the search collaborator.
type Predicate string

// GroupSpec names a grouping strategy for matched headings.
type GroupSpec string

const (
	GroupNone  GroupSpec = "none"
	GroupLevel GroupSpec = "level"
	GroupTop   GroupSpec = "top"
)

// SortKey orders matches before grouping; empty keeps document order.
type SortKey string

const (
	SortDocument SortKey = ""
	SortTitle    SortKey = "title"
	SortLevel    SortKey = "level"
)

// SearchFunc is the external query collaborator. It must be pure and return
// matches in document order; the controller applies any sort key afterwards.
type SearchFunc func(doc *outline.Document, scope *clone.Span, pred Predicate) []outline.NodeID

// GroupFunc is the external grouping collaborator. It must neither drop nor
// duplicate nodes.
type GroupFunc func(doc *outline.Document, nodes []outline.NodeID, spec GroupSpec) []Group

// Entry is one matched heading in a list.
type Entry struct {
	Node  outline.NodeID `json:"node"`
	Title string         `json:"title"`
	Level int            `json:"level"`
}

// Group is a labeled run of entries in presentation order.
type Group struct {
	Label   string  `json:"label,omitempty"`
	Entries []Entry `json:"entries"`
}

// List is a built companion view: its inputs plus the current presentation
// tree. Refreshing re-runs the collaborators with the same inputs.
type List struct {
	Doc       *outline.Document
	Scope     *clone.Span
	Predicate Predicate
	Spec      GroupSpec
	Sort      SortKey

	Groups []Group

	set *Set
}

// Entries flattens the presentation tree in display order.
func (l *List) Entries() []Entry {
	var out []Entry
	for _, g := range l.Groups {
		out = append(out, g.Entries...)
	}
	return out
}

// Set ties lists that were opened together: refreshing any of them refreshes
// the whole set.
type Set struct {
	Lists []*List
}

// Controller runs the collaborators and owns no further state.
type Controller struct {
	search SearchFunc
	group  GroupFunc
}

// NewController wires the collaborators; nil falls back to the built-in
// substring search and level/top grouping.
func NewController(search SearchFunc, group GroupFunc) *Controller {
	if search == nil {
		search = DefaultSearch
	}
	if group == nil {
		group = DefaultGroup
	}
	return &Controller{search: search, group: group}
}

// BuildList runs search then group over the document, narrowed to scope when
// one is given.
func (c *Controller) BuildList(doc *outline.Document, scope *clone.Span, pred Predicate, spec GroupSpec, key SortKey) (*List, error) {
	if doc == nil {
		return nil, fmt.Errorf("buildList: no document")
	}
	l := &List{Doc: doc, Scope: scope, Predicate: pred, Spec: spec, Sort: key}
	if err := c.fill(l); err != nil {
		return nil, err
	}
	return l, nil
}

func (c *Controller) fill(l *List) error {
	nodes := c.search(l.Doc, l.Scope, l.Predicate)
	nodes = sortNodes(l.Doc, nodes, l.Sort)
	groups := c.group(l.Doc, nodes, l.Spec)
	if err := checkGroups(nodes, groups); err != nil {
		return err
	}
	l.Groups = groups
	return nil
}

// Refresh re-runs the collaborators. A list opened as part of a set refreshes
// its siblings too, so related panes never drift apart.
func (c *Controller) Refresh(l *List) error {
	if l == nil {
		return nil
	}
	if l.set != nil {
		return c.RefreshSet(l.set)
	}
	return c.fill(l)
}

// RefreshSet re-runs every list in the set.
func (c *Controller) RefreshSet(s *Set) error {
	if s == nil {
		return nil
	}
	for _, l := range s.Lists {
		if err := c.fill(l); err != nil {
			return err
		}
	}
	return nil
}

// ListBuilder produces one list of a sidebar request.
type ListBuilder func(doc *outline.Document) (*List, error)

// RequestSidebar builds each requested list against the source document and
// ties the results into one refresh set.
func (c *Controller) RequestSidebar(doc *outline.Document, builders ...ListBuilder) (*Set, error) {
	if doc == nil {
		return nil, fmt.Errorf("requestSidebar: no document")
	}
	set := &Set{}
	for _, build := range builders {
		l, err := build(doc)
		if err != nil {
			return nil, err
		}
		l.set = set
		set.Lists = append(set.Lists, l)
	}
	return set, nil
}

// RequestTreeView wraps the document in a fresh view for tree-style sidebar
// display: everything collapsed, cursor at the first content.
func RequestTreeView(doc *outline.Document) *clone.View {
	v := clone.NewSourceView(doc)
	v.Cursor = doc.ContentStart
	return v
}

func sortNodes(doc *outline.Document, nodes []outline.NodeID, key SortKey) []outline.NodeID {
	switch key {
	case SortTitle:
		sort.SliceStable(nodes, func(i, j int) bool {
			return strings.ToLower(doc.Nodes[nodes[i]].Title) < strings.ToLower(doc.Nodes[nodes[j]].Title)
		})
	case SortLevel:
		sort.SliceStable(nodes, func(i, j int) bool {
			return doc.Nodes[nodes[i]].Level < doc.Nodes[nodes[j]].Level
		})
	}
	return nodes
}

// checkGroups enforces the grouping contract: every matched node appears in
// the presentation tree exactly once.
func checkGroups(nodes []outline.NodeID, groups []Group) error {
	seen := map[outline.NodeID]int{}
	total := 0
	for _, g := range groups {
		for _, e := range g.Entries {
			seen[e.Node]++
			total++
		}
	}
	if total != len(nodes) {
		return fmt.Errorf("grouping changed the match count: %d of %d", total, len(nodes))
	}
	for _, id := range nodes {
		if seen[id] != 1 {
			return fmt.Errorf("grouping dropped or duplicated node %d", id)
		}
	}
	return nil
}

// DefaultSearch matches case-insensitively against heading titles and body
// text, in document order, within the scope when one is set.
func DefaultSearch(doc *outline.Document, scope *clone.Span, pred Predicate) []outline.NodeID {
	query := strings.ToLower(strings.TrimSpace(string(pred)))
	var out []outline.NodeID
	for _, n := range doc.Nodes {
		if scope != nil && !scope.Contains(n.Start) {
			continue
		}
		if query == "" ||
			strings.Contains(strings.ToLower(n.Title), query) ||
			strings.Contains(strings.ToLower(doc.Body(n.ID)), query) {
			out = append(out, n.ID)
		}
	}
	return out
}

// DefaultGroup arranges entries flat, by heading level, or by top-level
// ancestor.
func DefaultGroup(doc *outline.Document, nodes []outline.NodeID, spec GroupSpec) []Group {
	entry := func(id outline.NodeID) Entry {
		n := doc.Nodes[id]
		return Entry{Node: id, Title: n.Title, Level: n.Level}
	}

	switch spec {
	case GroupLevel:
		var groups []Group
		byLabel := map[string]int{}
		for _, id := range nodes {
			label := "Level " + strconv.Itoa(doc.Nodes[id].Level)
			i, ok := byLabel[label]
			if !ok {
				i = len(groups)
				byLabel[label] = i
				groups = append(groups, Group{Label: label})
			}
			groups[i].Entries = append(groups[i].Entries, entry(id))
		}
		return groups
	case GroupTop:
		var groups []Group
		byLabel := map[string]int{}
		for _, id := range nodes {
			top := id
			for doc.Nodes[top].Parent != outline.NoNode {
				top = doc.Nodes[top].Parent
			}
			label := doc.Nodes[top].Title
			i, ok := byLabel[label]
			if !ok {
				i = len(groups)
				byLabel[label] = i
				groups = append(groups, Group{Label: label})
			}
			groups[i].Entries = append(groups[i].Entries, entry(id))
		}
		return groups
	default:
		if len(nodes) == 0 {
			return nil
		}
		g := Group{}
		for _, id := range nodes {
			g.Entries = append(g.Entries, entry(id))
		}
		return []Group{g}
	}
}
