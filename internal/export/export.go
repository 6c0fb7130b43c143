// Package export renders what a view shows to portable formats. Only shown
// headings and visible bodies make it into the output, so a narrowed or
// folded view exports exactly what the user sees on screen.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"treefold-cli/internal/clone"
	"treefold-cli/internal/outline"

	"github.com/yuin/goldmark"
)

const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

type UnknownFormatError struct {
	Format string
}

func (e UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown export format %q (want markdown|html)", e.Format)
}

// Result describes one written export.
type Result struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Bytes  int    `json:"bytes"`
}

// Normalize resolves a format name to its canonical constant.
func Normalize(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "md", FormatMarkdown:
		return FormatMarkdown, nil
	case FormatHTML:
		return FormatHTML, nil
	}
	return "", UnknownFormatError{Format: format}
}

// Expand applies a jump depth to every top-level heading of the view: none
// leaves just the headings, children/branches/entries widen the way the
// corresponding jump would.
func Expand(v *clone.View, d outline.Depth) {
	doc := v.Document()
	if doc == nil {
		return
	}
	for _, id := range doc.TopLevel() {
		switch d {
		case outline.DepthChildren:
			v.SetVisibility(id, outline.ChildrenShown)
		case outline.DepthBranches:
			v.RevealBranches(id)
		case outline.DepthEntries:
			v.RevealEntries(id)
		}
	}
}

// Visible emits the markdown the view currently shows: raw heading lines for
// every shown node, body text only where the fold state exposes it. Front
// matter and hidden subtrees never appear.
func Visible(v *clone.View) []byte {
	doc := v.Document()
	if doc == nil {
		return nil
	}
	var b bytes.Buffer
	for _, n := range doc.Nodes {
		if !v.Shown(n.ID) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(doc.Heading(n.ID))
		b.WriteByte('\n')
		if !v.BodyVisible(n.ID) {
			continue
		}
		body := strings.TrimSpace(doc.Body(n.ID))
		if body == "" {
			continue
		}
		b.WriteByte('\n')
		b.WriteString(body)
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// Render produces the export payload in the given format.
func Render(v *clone.View, format string) ([]byte, error) {
	f, err := Normalize(format)
	if err != nil {
		return nil, err
	}
	md := Visible(v)
	if f == FormatMarkdown {
		return md, nil
	}
	return renderHTML(v.Title(), md)
}

func renderHTML(title string, md []byte) ([]byte, error) {
	var body bytes.Buffer
	if err := goldmark.Convert(md, &body); err != nil {
		return nil, err
	}
	var page bytes.Buffer
	page.WriteString("<!doctype html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(title))
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

// WriteFile writes the rendered export, refusing to clobber an existing file
// unless overwrite is set.
func WriteFile(path string, b []byte, overwrite bool) (Result, error) {
	path = filepath.Clean(path)
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return Result{}, errors.New("file exists (use --overwrite): " + path)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Result{}, err
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return Result{}, err
	}
	return Result{Path: path, Bytes: len(b)}, nil
}
