package pipeline

import (
	"fmt"
	"strings"

	"github.com/dgallion1/xmlreport/internal/doctree"
	"github.com/dgallion1/xmlreport/internal/rules"
)

// Processor turns records into display tables using a rules Store.
type Processor struct {
	rules *rules.Store
}

func NewProcessor(store *rules.Store) *Processor {
	if store == nil {
		store = rules.NewStatic(nil, nil, nil)
	}
	return &Processor{rules: store}
}

// Process runs filter, then sort/label on one record. Values are normalized
// only when no sort rule covers the record type; rule rows keep raw values.
func (p *Processor) Process(rec doctree.Record) doctree.Table {
	kept := make([]doctree.PathEntry, 0, len(rec.Entries))
	for _, e := range rec.Entries {
		if !p.rules.IsFiltered(e.Path) {
			kept = append(kept, e)
		}
	}

	rows, title := p.rules.SortAndLabel(rec.Type, kept)
	if _, sorted := p.rules.SortRule(rec.Type); !sorted {
		for i := range rows {
			rows[i].Value = NormalizeValue(rows[i].Value)
		}
	}
	return doctree.Table{Title: title, Rows: rows}
}

// Build processes every record, drops instances rejected by filters and
// numbers the remaining instances of types that occur more than once.
func (p *Processor) Build(title string, records []doctree.Record, filters []InstanceFilter) doctree.Report {
	type processed struct {
		typ   string
		table doctree.Table
	}
	var kept []processed
	totals := make(map[string]int)
	for _, rec := range records {
		table := p.Process(rec)
		if !Accept(filters, rec.Type, table) {
			continue
		}
		kept = append(kept, processed{typ: rec.Type, table: table})
		totals[rec.Type]++
	}

	report := doctree.Report{Title: title, Tables: make([]doctree.Table, 0, len(kept))}
	seen := make(map[string]int, len(totals))
	for _, k := range kept {
		seen[k.typ]++
		if totals[k.typ] > 1 {
			k.table.Title = fmt.Sprintf("%s (Instanz %d)", k.table.Title, seen[k.typ])
		}
		report.Tables = append(report.Tables, k.table)
	}
	return report
}

// InstanceFilter keeps instances of Type whose row labelled Label starts with Prefix.
type InstanceFilter struct {
	Type   string
	Label  string
	Prefix string
}

// ParseInstanceFilter parses "type:Label=prefix".
func ParseInstanceFilter(s string) (InstanceFilter, error) {
	typ, rest, ok := strings.Cut(s, ":")
	if !ok {
		return InstanceFilter{}, fmt.Errorf("instance filter %q: want type:Label=prefix", s)
	}
	label, prefix, ok := strings.Cut(rest, "=")
	typ, label = strings.TrimSpace(typ), strings.TrimSpace(label)
	if !ok || typ == "" || label == "" {
		return InstanceFilter{}, fmt.Errorf("instance filter %q: want type:Label=prefix", s)
	}
	return InstanceFilter{Type: typ, Label: label, Prefix: strings.TrimSpace(prefix)}, nil
}

// ParseInstanceFilters parses a list of filter expressions.
func ParseInstanceFilters(exprs []string) ([]InstanceFilter, error) {
	var out []InstanceFilter
	for _, e := range exprs {
		if strings.TrimSpace(e) == "" {
			continue
		}
		f, err := ParseInstanceFilter(e)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Accept applies every filter for recordType; all must match.
func Accept(filters []InstanceFilter, recordType string, table doctree.Table) bool {
	for _, f := range filters {
		if f.Type != recordType {
			continue
		}
		if !f.match(table) {
			return false
		}
	}
	return true
}

func (f InstanceFilter) match(table doctree.Table) bool {
	for _, row := range table.Rows {
		if row.Label == f.Label {
			return strings.HasPrefix(row.Value, f.Prefix)
		}
	}
	return false
}
