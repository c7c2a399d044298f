package parser

import (
	"errors"
	"strings"
	"testing"
)

func TestXMLParser_BuildsTree(t *testing.T) {
	input := `<?xml version="1.0" encoding="UTF-8"?>
<nachricht xmlns="urn:test">
  <dritte>
    <name> Muster GmbH </name>
    <kommunikation><kennung>a@b.de</kennung></kommunikation>
    <kommunikation><kennung>0211-123</kennung></kommunikation>
  </dritte>
</nachricht>`
	p := &XMLParser{}
	doc, err := p.Parse(strings.NewReader(input), "message.xml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "message" {
		t.Errorf("expected title %q, got %q", "message", doc.Title)
	}
	if doc.Root.Name != "nachricht" {
		t.Fatalf("expected root %q, got %q", "nachricht", doc.Root.Name)
	}
	if doc.Root.Space != "urn:test" {
		t.Errorf("expected namespace %q, got %q", "urn:test", doc.Root.Space)
	}
	if len(doc.Root.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(doc.Root.Children))
	}
	dritte := doc.Root.Children[0]
	if len(dritte.Children) != 3 {
		t.Fatalf("expected 3 children under dritte, got %d", len(dritte.Children))
	}
	if dritte.Children[0].Text != " Muster GmbH " {
		t.Errorf("expected raw text to be kept, got %q", dritte.Children[0].Text)
	}
	if !dritte.Children[0].IsLeaf() {
		t.Error("expected name to be a leaf")
	}
}

func TestXMLParser_CDATAIsText(t *testing.T) {
	p := &XMLParser{}
	doc, err := p.Parse(strings.NewReader(`<a><b><![CDATA[x < y]]></b></a>`), "c.xml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doc.Root.Children[0].Text; got != "x < y" {
		t.Errorf("expected %q, got %q", "x < y", got)
	}
}

func TestXMLParser_Latin1(t *testing.T) {
	// "Straße" in ISO-8859-1: 0xDF for ß.
	input := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><a><s>Stra\xdfe</s></a>"
	p := &XMLParser{}
	doc, err := p.Parse(strings.NewReader(input), "latin.xml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doc.Root.Children[0].Text; got != "Straße" {
		t.Errorf("expected %q, got %q", "Straße", got)
	}
}

func TestXMLParser_Malformed(t *testing.T) {
	p := &XMLParser{}
	for _, input := range []string{"<a><b></a>", "", "<a/><b/>"} {
		_, err := p.Parse(strings.NewReader(input), "bad.xml")
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%q): expected ErrMalformed, got %v", input, err)
		}
	}
}

func TestForFile(t *testing.T) {
	if _, err := ForFile("doc.XML"); err != nil {
		t.Errorf("expected xml to be supported, got %v", err)
	}
	if _, err := ForFile("doc.pdf"); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if IsSupportedExtension("notes.txt") {
		t.Error("expected txt to be unsupported")
	}
}
