package report

import (
	"fmt"
	"testing"

	"github.com/dgallion1/xmlreport/internal/doctree"
)

// thirtyRows fits exactly 30 rows of 20pt between 40pt margins.
func thirtyRows() Geometry {
	return Geometry{
		PageWidth:  595.28,
		PageHeight: 680,
		Margin:     40,
		RowHeight:  20,
		TableGap:   10,
	}
}

func tableWithRows(title string, n int) doctree.Table {
	t := doctree.Table{Title: title}
	for i := 0; i < n; i++ {
		t.Rows = append(t.Rows, doctree.TableRow{Label: fmt.Sprintf("k%d", i), Value: fmt.Sprintf("v%d", i)})
	}
	return t
}

func TestReserve_BreaksAtBottomMargin(t *testing.T) {
	g := thirtyRows()
	s := g.Start()
	for i := 0; i < 30; i++ {
		var y float64
		s, y = g.Reserve(s, g.RowHeight)
		if s.Page != 1 {
			t.Fatalf("row %d: expected page 1, got %d", i, s.Page)
		}
		if want := g.Margin + float64(i)*g.RowHeight; y != want {
			t.Fatalf("row %d: expected y=%v, got %v", i, want, y)
		}
	}
	next, y := g.Reserve(s, g.RowHeight)
	if next.Page != 2 || y != g.Margin {
		t.Errorf("expected break to page 2 at top margin, got page=%d y=%v", next.Page, y)
	}
	if s.Page != 1 {
		t.Error("Reserve must not mutate the previous state")
	}
}

func TestReserve_OversizedBlockOnFreshPage(t *testing.T) {
	g := thirtyRows()
	s, y := g.Reserve(g.Start(), 10000)
	if s.Page != 1 || y != g.Margin {
		t.Errorf("expected oversized block on page 1 at margin, got page=%d y=%v", s.Page, y)
	}
}

func TestPlan_SeventyFiveRowsSpanThreePages(t *testing.T) {
	g := thirtyRows()
	rep := doctree.Report{Tables: []doctree.Table{tableWithRows("<big>", 75)}}
	l := Plan(rep, g)

	if l.Pages != 3 {
		t.Fatalf("expected 3 pages, got %d", l.Pages)
	}
	pages := l.TablePages(0)
	if len(pages) != 3 || pages[0] != 1 || pages[2] != 3 {
		t.Errorf("expected table on pages [1 2 3], got %v", pages)
	}

	headers := 0
	perPage := map[int]int{}
	for _, b := range l.Blocks {
		switch b.Kind {
		case BlockHeader:
			headers++
			if b.Page != 1 {
				t.Errorf("expected header on page 1, got %d", b.Page)
			}
		case BlockRow:
			perPage[b.Page]++
		}
	}
	if headers != 1 {
		t.Errorf("expected header drawn once, got %d", headers)
	}
	if perPage[1] != 29 || perPage[2] != 30 || perPage[3] != 16 {
		t.Errorf("expected rows per page 29/30/16, got %v", perPage)
	}
}

func TestPlan_ContinuationRowsStartAtTopMargin(t *testing.T) {
	g := thirtyRows()
	l := Plan(doctree.Report{Tables: []doctree.Table{tableWithRows("t", 40)}}, g)
	for i, b := range l.Blocks {
		if i > 0 && b.Page != l.Blocks[i-1].Page && b.Y != g.Margin {
			t.Errorf("block %d opens page %d at y=%v, expected %v", i, b.Page, b.Y, g.Margin)
		}
	}
}

func TestPlan_BannerOnlyOnFirstPage(t *testing.T) {
	g := A4()
	rep := doctree.Report{
		Title:  "Bericht",
		Tables: []doctree.Table{tableWithRows("a", 50), tableWithRows("b", 50)},
	}
	l := Plan(rep, g)

	banners := 0
	for _, b := range l.Blocks {
		if b.Kind == BlockBanner {
			banners++
			if b.Page != 1 || b.Y != g.Margin {
				t.Errorf("expected banner at page 1 top, got page=%d y=%v", b.Page, b.Y)
			}
		}
	}
	if banners != 1 {
		t.Errorf("expected 1 banner, got %d", banners)
	}
	if l.Blocks[1].Kind != BlockHeader || l.Blocks[1].Y != g.Margin+g.BannerHeight {
		t.Errorf("expected first header below banner, got %+v", l.Blocks[1])
	}
	if l.Pages < 3 {
		t.Errorf("expected at least 3 pages for 100 rows on A4, got %d", l.Pages)
	}
}

func TestPlan_HeaderBreaksWhenPageFull(t *testing.T) {
	g := thirtyRows()
	// First table fills page 1 exactly (header + 29 rows).
	rep := doctree.Report{Tables: []doctree.Table{tableWithRows("a", 29), tableWithRows("b", 1)}}
	l := Plan(rep, g)

	var header Block
	for _, b := range l.Blocks {
		if b.Kind == BlockHeader && b.Table == 1 {
			header = b
		}
	}
	if header.Page != 2 || header.Y != g.Margin {
		t.Errorf("expected second header at top of page 2, got page=%d y=%v", header.Page, header.Y)
	}
}

func TestPlan_EmptyReport(t *testing.T) {
	l := Plan(doctree.Report{}, A4())
	if l.Pages != 1 {
		t.Errorf("expected a single page, got %d", l.Pages)
	}
	if len(l.Blocks) != 0 {
		t.Errorf("expected no blocks, got %d", len(l.Blocks))
	}
}
