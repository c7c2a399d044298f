package report

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/xmlreport/internal/doctree"
)

func sampleReport() doctree.Report {
	return doctree.Report{
		Title: "Bericht",
		Tables: []doctree.Table{
			{Title: "<erste>", Rows: []doctree.TableRow{{Label: "Name", Value: "Anna"}, {Label: "Aktiv", Value: "ja"}}},
			{Title: "<dritte> (Instanz 1)", Rows: []doctree.TableRow{{Label: "Pfad", Value: "a|b"}}},
			{Title: "<leer>"},
		},
	}
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		name string
		ext  string
	}{
		{"pdf", ".pdf"},
		{"PDF", ".pdf"},
		{".docx", ".docx"},
		{"markdown", ".md"},
		{"md", ".md"},
		{"html", ".html"},
	}
	for _, tt := range tests {
		r, err := ForFormat(tt.name, Options{})
		if err != nil {
			t.Errorf("ForFormat(%q): unexpected error %v", tt.name, err)
			continue
		}
		if r.Extension() != tt.ext {
			t.Errorf("ForFormat(%q): expected %s, got %s", tt.name, tt.ext, r.Extension())
		}
	}
	if _, err := ForFormat("odt", Options{}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestFormats(t *testing.T) {
	got := strings.Join(Formats(), ",")
	if got != "docx,html,md,pdf" {
		t.Errorf("expected docx,html,md,pdf, got %s", got)
	}
}

func TestDOCXRenderer_ReadBack(t *testing.T) {
	var buf bytes.Buffer
	st, err := (&DOCXRenderer{}).Render(&buf, sampleReport())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if st.Bytes == 0 || st.Tables != 3 || st.Rows != 3 {
		t.Errorf("unexpected stats %+v", st)
	}

	s, err := InspectDOCX(buf.Bytes())
	if err != nil {
		t.Fatalf("InspectDOCX: %v", err)
	}
	for _, want := range []string{"Bericht", "<erste>", "<dritte> (Instanz 1)", "<leer>"} {
		found := false
		for _, p := range s.Paragraphs {
			if p == want {
				found = true
			}
		}
		if !found {
			t.Errorf("expected paragraph %q in %v", want, s.Paragraphs)
		}
	}
	if len(s.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(s.Tables))
	}
	first := s.Tables[0]
	if len(first) != 2 || first[0][0] != "Name" || first[0][1] != "Anna" || first[1][1] != "ja" {
		t.Errorf("unexpected first table %v", first)
	}
}

func TestMarkdownRenderer(t *testing.T) {
	var buf bytes.Buffer
	if _, err := (&MarkdownRenderer{}).Render(&buf, sampleReport()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"# Bericht\n",
		"## \\<erste\\>\n",
		"| Name | Anna |\n",
		"| Pfad | a\\|b |\n",
		"## \\<leer\\>\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in markdown:\n%s", want, out)
		}
	}
}

func TestHTMLRenderer(t *testing.T) {
	rep := sampleReport()
	rep.Tables[0].Rows = append(rep.Tables[0].Rows, doctree.TableRow{Label: "x", Value: "<script>alert(1)</script>"})

	var buf bytes.Buffer
	if _, err := (&HTMLRenderer{}).Render(&buf, rep); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"<title>Bericht</title>", "<table>", "&lt;erste&gt;", "&lt;dritte&gt; (Instanz 1)", "<td>Anna</td>"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in html:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<script>") {
		t.Error("expected script tag to be escaped")
	}
}

func TestReadBack_MarkdownAndHTML(t *testing.T) {
	want := sampleReport()

	for _, name := range []string{"md", "html"} {
		r, err := ForFormat(name, Options{})
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if _, err := r.Render(&buf, want); err != nil {
			t.Fatalf("%s: Render: %v", name, err)
		}

		var got doctree.Report
		if name == "md" {
			got, err = ReadMarkdown(buf.Bytes())
		} else {
			got, err = ReadHTML(&buf)
		}
		if err != nil {
			t.Fatalf("%s: read back: %v", name, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s: expected %+v, got %+v", name, want, got)
		}
	}
}

func TestReadHTML_IgnoresHeaderRow(t *testing.T) {
	page := `<html><body><h2>T</h2><table><thead><tr><th>Feld</th><th>Wert</th></tr></thead>
<tbody><tr><td>a</td><td>1</td></tr><tr><td>only one cell</td></tr></tbody></table></body></html>`
	got, err := ReadHTML(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "" || len(got.Tables) != 1 {
		t.Fatalf("unexpected report %+v", got)
	}
	if len(got.Tables[0].Rows) != 1 || got.Tables[0].Rows[0] != (doctree.TableRow{Label: "a", Value: "1"}) {
		t.Errorf("expected one a=1 row, got %+v", got.Tables[0].Rows)
	}
}
