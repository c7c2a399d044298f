package report

import (
	"fmt"
	"io"

	"github.com/dgallion1/xmlreport/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXRenderer writes each table as a titled two-column Word table.
type DOCXRenderer struct{}

func (r *DOCXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}
func (r *DOCXRenderer) Extension() string { return ".docx" }

func (r *DOCXRenderer) Render(w io.Writer, rep doctree.Report) (Stats, error) {
	doc := docx.New().WithDefaultTheme()

	if rep.Title != "" {
		doc.AddParagraph().AddText(rep.Title).Bold().Size("32")
	}
	for _, t := range rep.Tables {
		doc.AddParagraph().AddText(t.Title).Bold().Size("24").Color("C00000")
		if len(t.Rows) == 0 {
			continue
		}
		tbl := doc.AddTable(len(t.Rows), 2, 0, nil)
		for i, row := range t.Rows {
			cells := tbl.TableRows[i].TableCells
			cells[0].AddParagraph().AddText(row.Label).Size("18")
			cells[1].AddParagraph().AddText(row.Value).Size("18")
		}
		doc.AddParagraph()
	}

	cw := &countingWriter{w: w}
	if _, err := doc.WriteTo(cw); err != nil {
		return Stats{}, fmt.Errorf("write docx: %w", err)
	}
	st := baseStats(rep)
	st.Bytes = cw.n
	return st, nil
}
