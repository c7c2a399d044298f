package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/xmlreport/internal/doctree"
	"golang.org/x/net/html/charset"
)

// ErrMalformed marks input that is not a well-formed XML document.
var ErrMalformed = errors.New("malformed xml")

// XMLParser builds an element tree from an XML instance.
type XMLParser struct{}

func (p *XMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	dec := xml.NewDecoder(r)
	// Declared encodings other than UTF-8 (ISO-8859-1 is common in XÖV messages).
	dec.CharsetReader = charset.NewReaderLabel

	var (
		root  *doctree.Node
		stack []*doctree.Node
		text  []*strings.Builder
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &doctree.Node{Name: t.Name.Local, Space: t.Name.Space}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("%w: multiple root elements", ErrMalformed)
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
			text = append(text, &strings.Builder{})

		case xml.EndElement:
			top := len(stack) - 1
			stack[top].Text = text[top].String()
			stack = stack[:top]
			text = text[:top]

		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformed)
	}

	doc := &doctree.Document{Root: root}
	if filename != "" {
		doc.Title = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	return doc, nil
}
