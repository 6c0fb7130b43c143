package outline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

type frontMatter struct {
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tags"`
}

var fmDelim = []byte("---")

// splitFrontMatter extracts a leading YAML block delimited by --- lines.
// Anything that does not parse as front matter is treated as document content.
func splitFrontMatter(src []byte) (frontMatter, int) {
	var meta frontMatter
	if !bytes.HasPrefix(src, fmDelim) {
		return meta, 0
	}
	rest := src[len(fmDelim):]
	if len(rest) == 0 || (rest[0] != '\n' && !bytes.HasPrefix(rest, []byte("\r\n"))) {
		return meta, 0
	}
	for off := len(fmDelim); off < len(src); {
		lineEnd := bytes.IndexByte(src[off:], '\n')
		if lineEnd < 0 {
			break
		}
		lineStart := off
		off += lineEnd + 1
		line := bytes.TrimRight(src[lineStart:off], "\r\n")
		if lineStart > len(fmDelim) && bytes.Equal(line, fmDelim) {
			if err := yaml.Unmarshal(src[len(fmDelim):lineStart], &meta); err != nil {
				return frontMatter{}, 0
			}
			return meta, off
		}
	}
	return meta, 0
}

// Parse builds a Document from markdown source. ATX headings define nodes;
// every byte between a heading line and the next heading at the same or a
// shallower level belongs to that heading's range.
func Parse(id string, src []byte) (*Document, error) {
	meta, contentStart := splitFrontMatter(src)
	content := src[contentStart:]

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(content))

	doc := &Document{
		ID:           id,
		Title:        meta.Title,
		Tags:         meta.Tags,
		ContentStart: contentStart,
		Source:       src,
	}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		// Headings with no inline text carry no line segment.
		if h.Lines().Len() == 0 {
			continue
		}
		seg := h.Lines().At(0)
		start := seg.Start
		for start > 0 && content[start-1] != '\n' {
			start--
		}
		// Setext headings do not begin with a marker; only ATX
		// headings count as outline nodes.
		if content[start] != '#' {
			continue
		}
		doc.Nodes = append(doc.Nodes, Node{
			ID:    NodeID(len(doc.Nodes)),
			Level: h.Level,
			Title: strings.TrimSpace(string(h.Text(content))),
			Start: contentStart + start,
		})
	}

	finishNodes(doc)

	if doc.Title == "" {
		doc.Title = fallbackTitle(doc, id)
	}
	return doc, doc.Validate()
}

// finishNodes derives End, BodyStart, Parent and HasChildren from the heading
// starts and levels in one pass.
func finishNodes(doc *Document) {
	nodes := doc.Nodes
	src := doc.Source

	type open struct {
		id    int
		level int
	}
	var stack []open
	for i := range nodes {
		for len(stack) > 0 && stack[len(stack)-1].level >= nodes[i].Level {
			top := stack[len(stack)-1]
			nodes[top.id].End = nodes[i].Start
			stack = stack[:len(stack)-1]
		}
		nodes[i].Parent = NoNode
		if len(stack) > 0 {
			nodes[i].Parent = NodeID(stack[len(stack)-1].id)
		}
		stack = append(stack, open{id: i, level: nodes[i].Level})
	}
	for _, o := range stack {
		nodes[o.id].End = len(src)
	}

	for i := range nodes {
		body := nodes[i].Start
		for body < len(src) && src[body] != '\n' {
			body++
		}
		if body < len(src) {
			body++
		}
		if body > nodes[i].End {
			body = nodes[i].End
		}
		nodes[i].BodyStart = body
		nodes[i].HasChildren = i+1 < len(nodes) && nodes[i+1].Level > nodes[i].Level
	}
}

func fallbackTitle(doc *Document, id string) string {
	for _, n := range doc.Nodes {
		if n.Level == 1 {
			return n.Title
		}
	}
	base := filepath.Base(id)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParseFile loads and parses a markdown file. The document's identity is the
// cleaned absolute path, so the same file always maps to the same Document ID
// regardless of how the caller spelled it.
func ParseFile(path string) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	return Parse(abs, src)
}
