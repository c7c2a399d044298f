package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"
	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Summary describes a rendered PDF as read back by independent readers.
type Summary struct {
	Pages           int      `json:"pages"`
	Text            []string `json:"text,omitempty"` // plain text per page
	Valid           bool     `json:"valid"`
	ValidatedPages  int      `json:"validated_pages,omitempty"`
	ValidationError string   `json:"validation_error,omitempty"`
}

// Inspect reads a PDF and reports its page count, per-page text and
// structural validity. Validation failures are reported, not returned.
func Inspect(data []byte) (*Summary, error) {
	r, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	s := &Summary{Pages: r.NumPage()}
	for i := 1; i <= s.Pages; i++ {
		s.Text = append(s.Text, pageText(r, i))
	}

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		s.ValidationError = err.Error()
	} else {
		s.Valid = true
		s.ValidatedPages = ctx.PageCount
	}
	return s, nil
}

// AllText returns the text of every page joined by newlines.
func (s *Summary) AllText() string {
	return strings.Join(s.Text, "\n")
}

func pageText(r *pdflib.Reader, i int) (text string) {
	// ledongthuc/pdf panics on some malformed content streams.
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	page := r.Page(i)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// DOCXSummary is the text content of a Word document.
type DOCXSummary struct {
	Paragraphs []string     `json:"paragraphs"`
	Tables     [][][]string `json:"tables"` // table -> row -> cell text
}

// InspectDOCX reads back the paragraphs and tables of a .docx document.
func InspectDOCX(data []byte) (*DOCXSummary, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	s := &DOCXSummary{}
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			if text := paragraphText(it); text != "" {
				s.Paragraphs = append(s.Paragraphs, text)
			}
		case *docx.Table:
			var rows [][]string
			for _, tr := range it.TableRows {
				var cells []string
				for _, tc := range tr.TableCells {
					var parts []string
					for _, p := range tc.Paragraphs {
						if text := paragraphText(p); text != "" {
							parts = append(parts, text)
						}
					}
					cells = append(cells, strings.Join(parts, "\n"))
				}
				rows = append(rows, cells)
			}
			s.Tables = append(s.Tables, rows)
		}
	}
	return s, nil
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
