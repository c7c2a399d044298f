package report

import "github.com/dgallion1/xmlreport/internal/doctree"

// Geometry holds page dimensions and spacing in points.
type Geometry struct {
	PageWidth    float64
	PageHeight   float64
	Margin       float64
	RowHeight    float64
	BannerHeight float64 // space reserved for the report title on page 1
	TableGap     float64 // space after each table
}

// A4 returns the default portrait A4 geometry.
func A4() Geometry {
	return Geometry{
		PageWidth:    595.28,
		PageHeight:   841.89,
		Margin:       40,
		RowHeight:    20,
		BannerHeight: 30,
		TableGap:     10,
	}
}

// ContentWidth is the width between the side margins.
func (g Geometry) ContentWidth() float64 {
	return g.PageWidth - 2*g.Margin
}

// Bottom is the lowest y a block may extend to.
func (g Geometry) Bottom() float64 {
	return g.PageHeight - g.Margin
}

// RenderState is the cursor of one render: current page (1-based) and y.
type RenderState struct {
	Page int
	Y    float64
}

// Start is the state right after the first page is opened.
func (g Geometry) Start() RenderState {
	return RenderState{Page: 1, Y: g.Margin}
}

// Reserve claims h points for the next block. When the block would cross
// the bottom margin the cursor moves to the top of a new page first.
// It returns the advanced state and the y where the block starts.
func (g Geometry) Reserve(s RenderState, h float64) (RenderState, float64) {
	if s.Page == 0 {
		s = g.Start()
	}
	// A block at the top of a fresh page is placed even if it is too tall.
	if s.Y+h > g.Bottom() && s.Y > g.Margin {
		s = RenderState{Page: s.Page + 1, Y: g.Margin}
	}
	y := s.Y
	s.Y += h
	return s, y
}

// BlockKind identifies what a placed block draws.
type BlockKind int

const (
	BlockBanner BlockKind = iota
	BlockHeader
	BlockRow
)

// Block is one placed element.
type Block struct {
	Kind  BlockKind
	Page  int
	Y     float64
	Table int // index into Report.Tables (header and row blocks)
	Row   int // index into Table.Rows (row blocks)
}

// Layout is the full placement of a report.
type Layout struct {
	Blocks []Block
	Pages  int
}

// Plan places the banner, then each table header followed by its rows.
// Headers are not repeated when rows continue on a new page.
func Plan(rep doctree.Report, g Geometry) Layout {
	s := g.Start()
	var blocks []Block
	var y float64

	if rep.Title != "" {
		s, y = g.Reserve(s, g.BannerHeight)
		blocks = append(blocks, Block{Kind: BlockBanner, Page: s.Page, Y: y})
	}

	for ti, t := range rep.Tables {
		s, y = g.Reserve(s, g.RowHeight)
		blocks = append(blocks, Block{Kind: BlockHeader, Page: s.Page, Y: y, Table: ti})
		for ri := range t.Rows {
			s, y = g.Reserve(s, g.RowHeight)
			blocks = append(blocks, Block{Kind: BlockRow, Page: s.Page, Y: y, Table: ti, Row: ri})
		}
		s.Y += g.TableGap
	}

	return Layout{Blocks: blocks, Pages: s.Page}
}

// TablePages returns the pages a table's blocks occupy, in order.
func (l Layout) TablePages(table int) []int {
	var pages []int
	for _, b := range l.Blocks {
		if b.Kind == BlockBanner || b.Table != table {
			continue
		}
		if len(pages) == 0 || pages[len(pages)-1] != b.Page {
			pages = append(pages, b.Page)
		}
	}
	return pages
}
