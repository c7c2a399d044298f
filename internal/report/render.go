// Package report renders processed tables into output documents.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dgallion1/xmlreport/internal/doctree"
)

// Stats describes one rendered document.
type Stats struct {
	Pages  int   `json:"pages"` // 0 when the format has no fixed pagination
	Tables int   `json:"tables"`
	Rows   int   `json:"rows"`
	Bytes  int64 `json:"bytes"`
}

// Renderer writes a report in one output format.
type Renderer interface {
	Render(w io.Writer, rep doctree.Report) (Stats, error)
	ContentType() string
	Extension() string
}

// Options configures renderers built by ForFormat.
type Options struct {
	Geometry     Geometry // zero value: A4
	Uncompressed bool     // PDF content streams are written uncompressed
}

var renderers = map[string]func(Options) Renderer{
	"pdf":  func(o Options) Renderer { return &PDFRenderer{Geometry: o.Geometry, Uncompressed: o.Uncompressed} },
	"docx": func(Options) Renderer { return &DOCXRenderer{} },
	"md":   func(Options) Renderer { return &MarkdownRenderer{} },
	"html": func(Options) Renderer { return &HTMLRenderer{} },
}

// Formats lists the supported output format names.
func Formats() []string {
	names := make([]string, 0, len(renderers))
	for name := range renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForFormat returns the renderer for a format name (case-insensitive).
func ForFormat(name string, opts Options) (Renderer, error) {
	format := strings.ToLower(strings.TrimSpace(name))
	format = strings.TrimPrefix(format, ".")
	if format == "markdown" {
		format = "md"
	}
	mk, ok := renderers[format]
	if !ok {
		return nil, fmt.Errorf("unsupported output format: %q (want one of %s)", name, strings.Join(Formats(), ", "))
	}
	return mk(opts), nil
}

// countingWriter tracks bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func baseStats(rep doctree.Report) Stats {
	return Stats{Tables: len(rep.Tables), Rows: rep.RowCount()}
}
