package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/xmlreport/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
)

// ReadHTML rebuilds the report structure from an HTML rendition: the <h1>
// is the title, every <h2> opens a table and body rows become label/value rows.
func ReadHTML(r io.Reader) (doctree.Report, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return doctree.Report{}, fmt.Errorf("parse html: %w", err)
	}

	var rep doctree.Report
	var current *doctree.Table

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "head":
				return
			case "h1":
				rep.Title = textContent(n)
				return
			case "h2":
				rep.Tables = append(rep.Tables, doctree.Table{Title: textContent(n)})
				current = &rep.Tables[len(rep.Tables)-1]
				return
			case "thead":
				return
			case "tr":
				if current == nil {
					return
				}
				var cells []string
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && c.Data == "td" {
						cells = append(cells, textContent(c))
					}
				}
				if len(cells) == 2 {
					current.Rows = append(current.Rows, doctree.TableRow{Label: cells[0], Value: cells[1]})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return rep, nil
}

// ReadMarkdown rebuilds the report structure from a Markdown rendition.
func ReadMarkdown(data []byte) (doctree.Report, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert(data, &buf); err != nil {
		return doctree.Report{}, fmt.Errorf("parse markdown: %w", err)
	}
	return ReadHTML(&buf)
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
