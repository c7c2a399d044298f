package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/dgallion1/xmlreport/internal/doctree"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// MarkdownRenderer writes GitHub-flavored Markdown tables.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) ContentType() string { return "text/markdown; charset=utf-8" }
func (r *MarkdownRenderer) Extension() string   { return ".md" }

func (r *MarkdownRenderer) Render(w io.Writer, rep doctree.Report) (Stats, error) {
	cw := &countingWriter{w: w}
	if _, err := cw.Write(markdown(rep)); err != nil {
		return Stats{}, fmt.Errorf("write markdown: %w", err)
	}
	st := baseStats(rep)
	st.Bytes = cw.n
	return st, nil
}

func markdown(rep doctree.Report) []byte {
	var b bytes.Buffer
	if rep.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", mdEscape(rep.Title))
	}
	for _, t := range rep.Tables {
		fmt.Fprintf(&b, "## %s\n\n", mdEscape(t.Title))
		if len(t.Rows) == 0 {
			continue
		}
		b.WriteString("| Feld | Wert |\n| --- | --- |\n")
		for _, row := range t.Rows {
			fmt.Fprintf(&b, "| %s | %s |\n", mdEscape(row.Label), mdEscape(row.Value))
		}
		b.WriteString("\n")
	}
	return b.Bytes()
}

var mdReplacer = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"<", `\<`,
	">", `\>`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"#", `\#`,
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
)

func mdEscape(s string) string {
	return mdReplacer.Replace(strings.TrimSpace(s))
}

// HTMLRenderer converts the Markdown rendition to a standalone HTML page.
type HTMLRenderer struct{}

func (r *HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }
func (r *HTMLRenderer) Extension() string   { return ".html" }

func (r *HTMLRenderer) Render(w io.Writer, rep doctree.Report) (Stats, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert(markdown(rep), &body); err != nil {
		return Stats{}, fmt.Errorf("render html: %w", err)
	}
	clean := bluemonday.UGCPolicy().SanitizeBytes(body.Bytes())

	title := rep.Title
	if title == "" {
		title = "Bericht"
	}
	cw := &countingWriter{w: w}
	fmt.Fprintf(cw, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n", html.EscapeString(title))
	cw.Write(clean)
	if _, err := io.WriteString(cw, "</body>\n</html>\n"); err != nil {
		return Stats{}, fmt.Errorf("write html: %w", err)
	}
	st := baseStats(rep)
	st.Bytes = cw.n
	return st, nil
}
