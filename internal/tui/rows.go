package tui

import (
	"treefold-cli/internal/clone"
	"treefold-cli/internal/outline"
)

// outlineRow is one rendered line of the outline pane: a heading the current
// view exposes, plus the fold indicators derived from the view's state.
type outlineRow struct {
	id    outline.NodeID
	level int
	depth int
	title string

	hasChildren bool
	// expanded is the twisty direction; only meaningful with children.
	expanded bool
	// elided marks that the heading's own following content (body text, or
	// the subtree while collapsed) is hidden, org-style trailing ellipsis.
	elided bool
	// bodyShown reports whether the heading's body text is visible.
	bodyShown bool
}

type outlineRowItem struct{ row outlineRow }

func (i outlineRowItem) FilterValue() string { return i.row.title }

// flattenView lists the rows the view currently exposes, in document order.
// Restriction and visibility are both folded into View.Shown already, so this
// is a single filtered pass; depth is indentation relative to the shallowest
// shown heading, which keeps restricted views flush left.
func flattenView(v *clone.View) []outlineRow {
	doc := v.Document()
	if doc == nil {
		return nil
	}

	rows := make([]outlineRow, 0, len(doc.Nodes))
	minLevel := 0
	for _, n := range doc.Nodes {
		if !v.Shown(n.ID) {
			continue
		}
		vis := v.Visibility(n.ID)
		bodyShown := v.BodyVisible(n.ID)
		hasBody := doc.Body(n.ID) != ""
		rows = append(rows, outlineRow{
			id:          n.ID,
			level:       n.Level,
			title:       n.Title,
			hasChildren: n.HasChildren,
			expanded:    n.HasChildren && vis != outline.Collapsed,
			elided:      (hasBody && !bodyShown) || (n.HasChildren && vis == outline.Collapsed),
			bodyShown:   bodyShown,
		})
		if minLevel == 0 || n.Level < minLevel {
			minLevel = n.Level
		}
	}
	for i := range rows {
		rows[i].depth = rows[i].level - minLevel
	}
	return rows
}
