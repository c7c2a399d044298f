package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/xmlreport/internal/doctree"
	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

const (
	fontFamily   = "Helvetica"
	cellPadding  = 5
	headerSize   = 12
	cellSize     = 9
	bannerSize   = 16
	footerSize   = 8
	footerHeight = 10
	borderWidth  = 0.5
)

// PDFRenderer draws reports as bordered two-column tables on fixed pages.
type PDFRenderer struct {
	Geometry     Geometry // zero value: A4
	Uncompressed bool
}

func (r *PDFRenderer) ContentType() string { return "application/pdf" }
func (r *PDFRenderer) Extension() string   { return ".pdf" }

func (r *PDFRenderer) geometry() Geometry {
	if r.Geometry == (Geometry{}) {
		return A4()
	}
	return r.Geometry
}

// Render lays out the report, draws every block, then stamps the page
// footers once the total page count is known.
func (r *PDFRenderer) Render(w io.Writer, rep doctree.Report) (Stats, error) {
	g := r.geometry()
	layout := Plan(rep, g)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: g.PageWidth, Ht: g.PageHeight},
	})
	pdf.SetMargins(g.Margin, g.Margin, g.Margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(!r.Uncompressed)
	pdf.SetTitle(rep.Title, true)
	pdf.SetCreator("xmlreport", true)
	pdf.AddPage()

	d := drawer{pdf: pdf, g: g}
	page := 1
	for _, b := range layout.Blocks {
		for page < b.Page {
			pdf.AddPage()
			page++
		}
		switch b.Kind {
		case BlockBanner:
			d.banner(b.Y, rep.Title)
		case BlockHeader:
			d.header(b.Y, rep.Tables[b.Table].Title)
		case BlockRow:
			d.row(b.Y, rep.Tables[b.Table].Rows[b.Row])
		}
	}

	total := pdf.PageCount()
	for i := 1; i <= total; i++ {
		pdf.SetPage(i)
		d.footer(i, total)
	}

	if err := pdf.Error(); err != nil {
		return Stats{}, fmt.Errorf("render pdf: %w", err)
	}
	cw := &countingWriter{w: w}
	if err := pdf.Output(cw); err != nil {
		return Stats{}, fmt.Errorf("write pdf: %w", err)
	}

	st := baseStats(rep)
	st.Pages = total
	st.Bytes = cw.n
	return st, nil
}

type drawer struct {
	pdf *fpdf.Fpdf
	g   Geometry
}

func (d drawer) banner(y float64, title string) {
	d.pdf.SetFont(fontFamily, "B", bannerSize)
	d.pdf.SetTextColor(0, 0, 0)
	width := d.g.ContentWidth()
	d.pdf.SetXY(d.g.Margin, y)
	d.pdf.CellFormat(width, d.g.BannerHeight-d.g.TableGap, d.fit(title, width), "", 0, "LM", false, 0, "")
}

func (d drawer) header(y float64, title string) {
	width := d.g.ContentWidth()
	d.pdf.SetFillColor(255, 0, 0)
	d.pdf.Rect(d.g.Margin, y, width, d.g.RowHeight, "F")

	d.pdf.SetFont(fontFamily, "B", headerSize)
	d.pdf.SetTextColor(255, 255, 255)
	d.pdf.SetXY(d.g.Margin+cellPadding, y)
	inner := width - 2*cellPadding
	d.pdf.CellFormat(inner, d.g.RowHeight, d.fit(title, inner), "", 0, "LM", false, 0, "")
}

func (d drawer) row(y float64, row doctree.TableRow) {
	col := d.g.ContentWidth() / 2
	d.pdf.SetDrawColor(0, 0, 0)
	d.pdf.SetLineWidth(borderWidth)
	d.pdf.Rect(d.g.Margin, y, col, d.g.RowHeight, "D")
	d.pdf.Rect(d.g.Margin+col, y, col, d.g.RowHeight, "D")

	d.pdf.SetFont(fontFamily, "", cellSize)
	d.pdf.SetTextColor(0, 0, 0)
	inner := col - 2*cellPadding
	d.pdf.SetXY(d.g.Margin+cellPadding, y)
	d.pdf.CellFormat(inner, d.g.RowHeight, d.fit(row.Label, inner), "", 0, "LM", false, 0, "")
	d.pdf.SetXY(d.g.Margin+col+cellPadding, y)
	d.pdf.CellFormat(inner, d.g.RowHeight, d.fit(row.Value, inner), "", 0, "LM", false, 0, "")
}

func (d drawer) footer(page, total int) {
	// SetFont skips output when the font is unchanged; after SetPage the
	// page's own stream may end with another font, so select it twice.
	d.pdf.SetFont(fontFamily, "B", footerSize)
	d.pdf.SetFont(fontFamily, "", footerSize)
	d.pdf.SetFillColor(255, 255, 255)
	d.pdf.SetTextColor(80, 80, 80)
	y := d.g.PageHeight - d.g.Margin/2 - footerHeight/2
	d.pdf.SetXY(d.g.Margin, y)
	text := fmt.Sprintf("Seite %d von %d", page, total)
	d.pdf.CellFormat(d.g.ContentWidth(), footerHeight, text, "", 0, "CM", false, 0, "")
}

// fit transcodes s for the core fonts and shortens it with "..." until it
// fits width at the current font size.
func (d drawer) fit(s string, width float64) string {
	s = winAnsi(s)
	if d.pdf.GetStringWidth(s) <= width {
		return s
	}
	const ellipsis = "..."
	for len(s) > 0 && d.pdf.GetStringWidth(s+ellipsis) > width {
		s = s[:len(s)-1]
	}
	return s + ellipsis
}

// winAnsi encodes s as Windows-1252, one byte per rune. Control characters
// become spaces and unmappable runes become '?'.
func winAnsi(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	enc := charmap.Windows1252
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteByte(' ')
		case r < 0x20:
		case r < 0x80:
			b.WriteByte(byte(r))
		default:
			if c, ok := enc.EncodeRune(r); ok {
				b.WriteByte(c)
			} else {
				b.WriteByte('?')
			}
		}
	}
	return b.String()
}
