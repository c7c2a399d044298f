package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/xmlreport/internal/doctree"
	"github.com/dgallion1/xmlreport/internal/rules"
)

func entries(kv ...string) []doctree.PathEntry {
	var out []doctree.PathEntry
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, doctree.PathEntry{Path: kv[i], Value: kv[i+1]})
	}
	return out
}

func TestProcess_SortRuleSelectsLabelsAndOrders(t *testing.T) {
	store := rules.NewStatic(nil, nil, map[string]*rules.SortRule{
		"a": rules.NewSortRule("", []rules.SortKey{
			{Path: "a-b", Label: "Label B"},
			{Path: "a-c", Label: "Label C"},
		}),
	})
	p := NewProcessor(store)

	table := p.Process(doctree.Record{Type: "a", Entries: entries("a-c", "1", "a-b", "2", "a-x", "9")})

	if table.Title != "<a>" {
		t.Errorf("expected title <a>, got %q", table.Title)
	}
	want := []doctree.TableRow{{Label: "Label B", Value: "2"}, {Label: "Label C", Value: "1"}}
	if len(table.Rows) != len(want) {
		t.Fatalf("expected %d rows, got %d: %v", len(want), len(table.Rows), table.Rows)
	}
	for i := range want {
		if table.Rows[i] != want[i] {
			t.Errorf("row %d: expected %v, got %v", i, want[i], table.Rows[i])
		}
	}
}

func TestProcess_SortRuleKeepsRawValues(t *testing.T) {
	store := rules.NewStatic(nil, nil, map[string]*rules.SortRule{
		"a": rules.NewSortRule("", []rules.SortKey{
			{Path: "a-b", Label: "Label B"},
			{Path: "a-c", Label: "Label C"},
			{Path: "a-d", Label: "Label D"},
		}),
	})
	table := NewProcessor(store).Process(doctree.Record{Type: "a", Entries: entries(
		"a-c", "2024-01-15",
		"a-b", "true",
		"a-d", "2021-02-01T08:30:00",
		"a-x", "false",
	)})

	want := []doctree.TableRow{
		{Label: "Label B", Value: "true"},
		{Label: "Label C", Value: "2024-01-15"},
		{Label: "Label D", Value: "2021-02-01T08:30:00"},
	}
	if len(table.Rows) != len(want) {
		t.Fatalf("expected %d rows, got %v", len(want), table.Rows)
	}
	for i := range want {
		if table.Rows[i] != want[i] {
			t.Errorf("row %d: expected %v, got %v", i, want[i], table.Rows[i])
		}
	}

	// The same values without a rule for the type are normalized.
	plain := NewProcessor(store).Process(doctree.Record{Type: "b", Entries: entries("b-x", "true", "b-y", "2024-01-15")})
	if len(plain.Rows) != 2 || plain.Rows[0].Value != "ja" || plain.Rows[1].Value != "15.01.2024" {
		t.Errorf("expected normalized values without a rule, got %v", plain.Rows)
	}
}

func TestProcess_FilterBeforeSort(t *testing.T) {
	store := rules.NewStatic(
		nil,
		rules.NewFilterRules([]string{"a-secret"}, rules.FilterExact),
		map[string]*rules.SortRule{
			"a": rules.NewSortRule("Tabelle A", []rules.SortKey{{Path: "a-secret", Label: "Geheim"}, {Path: "a-name", Label: "Name"}}),
		},
	)
	table := NewProcessor(store).Process(doctree.Record{Type: "a", Entries: entries("a-secret", "x", "a-name", "n")})

	if table.Title != "Tabelle A" {
		t.Errorf("expected rule title, got %q", table.Title)
	}
	if len(table.Rows) != 1 || table.Rows[0].Label != "Name" {
		t.Errorf("expected only the Name row, got %v", table.Rows)
	}
}

func TestProcess_NoRuleLabelsAndNormalizes(t *testing.T) {
	labels := rules.NewLabelRules([]rules.LabelRule{
		{Key: "a-active", Label: "Aktiv"},
		{Key: "datum", Label: "Datum"},
	}, rules.PrecedenceDeclared)
	filter := rules.NewFilterRules([]string{"intern"}, rules.FilterFragment)
	p := NewProcessor(rules.NewStatic(labels, filter, nil))

	table := p.Process(doctree.Record{Type: "a", Entries: entries(
		"a-active", "TRUE",
		"a-geburtsdatum", "2020-01-15",
		"a-interneId", "42",
		"a-other", "plain",
	)})

	want := []doctree.TableRow{
		{Label: "Aktiv", Value: "ja"},
		{Label: "Datum", Value: "15.01.2020"},
		{Label: "a-other", Value: "plain"},
	}
	if len(table.Rows) != len(want) {
		t.Fatalf("expected %d rows, got %v", len(want), table.Rows)
	}
	for i := range want {
		if table.Rows[i] != want[i] {
			t.Errorf("row %d: expected %v, got %v", i, want[i], table.Rows[i])
		}
	}
}

func TestProcess_NilStoreIsIdentity(t *testing.T) {
	table := NewProcessor(nil).Process(doctree.Record{Type: "t", Entries: entries("t-x", "false")})
	if table.Title != "<t>" {
		t.Errorf("expected <t>, got %q", table.Title)
	}
	if len(table.Rows) != 1 || table.Rows[0] != (doctree.TableRow{Label: "t-x", Value: "nein"}) {
		t.Errorf("expected identity label and normalized value, got %v", table.Rows)
	}
}

func TestProcess_MalformedSortFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sortOrder_a.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := NewProcessor(rules.Open(rules.Options{Dir: dir}))

	table := p.Process(doctree.Record{Type: "a", Entries: entries("a-z", "1", "a-y", "2")})
	if table.Title != "<a>" {
		t.Errorf("expected default title, got %q", table.Title)
	}
	if len(table.Rows) != 2 || table.Rows[0].Label != "a-z" || table.Rows[1].Label != "a-y" {
		t.Errorf("expected unsorted identity rows, got %v", table.Rows)
	}
}

func TestBuild_NumbersRepeatedInstances(t *testing.T) {
	p := NewProcessor(nil)
	recs := []doctree.Record{
		{Type: "erste", Entries: entries("erste-a", "1")},
		{Type: "dritte", Entries: entries("dritte-b", "x")},
		{Type: "dritte", Entries: entries("dritte-b", "y")},
	}
	rep := p.Build("Bericht", recs, nil)

	if rep.Title != "Bericht" {
		t.Errorf("expected report title, got %q", rep.Title)
	}
	titles := []string{"<erste>", "<dritte> (Instanz 1)", "<dritte> (Instanz 2)"}
	if len(rep.Tables) != len(titles) {
		t.Fatalf("expected %d tables, got %d", len(titles), len(rep.Tables))
	}
	for i, want := range titles {
		if rep.Tables[i].Title != want {
			t.Errorf("table %d: expected %q, got %q", i, want, rep.Tables[i].Title)
		}
	}
	if rep.RowCount() != 3 {
		t.Errorf("expected 3 rows, got %d", rep.RowCount())
	}
}

func TestBuild_InstanceFilterRenumbers(t *testing.T) {
	labels := rules.NewLabelRules([]rules.LabelRule{{Key: "person-schule", Label: "Schule"}}, rules.PrecedenceDeclared)
	p := NewProcessor(rules.NewStatic(labels, nil, nil))
	recs := []doctree.Record{
		{Type: "person", Entries: entries("person-schule", "1234-Nord")},
		{Type: "person", Entries: entries("person-schule", "9999-Sued")},
		{Type: "person", Entries: entries("person-schule", "1234-West")},
		{Type: "person", Entries: entries("person-name", "ohne Schule")},
		{Type: "klasse", Entries: entries("klasse-name", "5a")},
	}
	filters, err := ParseInstanceFilters([]string{"person:Schule=1234", " "})
	if err != nil {
		t.Fatalf("ParseInstanceFilters: %v", err)
	}

	rep := p.Build("", recs, filters)

	titles := []string{"<person> (Instanz 1)", "<person> (Instanz 2)", "<klasse>"}
	if len(rep.Tables) != len(titles) {
		t.Fatalf("expected %d tables, got %d", len(titles), len(rep.Tables))
	}
	for i, want := range titles {
		if rep.Tables[i].Title != want {
			t.Errorf("table %d: expected %q, got %q", i, want, rep.Tables[i].Title)
		}
	}
	if rep.Tables[1].Rows[0].Value != "1234-West" {
		t.Errorf("expected second kept instance to be 1234-West, got %v", rep.Tables[1].Rows)
	}
}

func TestBuild_SingleSurvivorNotNumbered(t *testing.T) {
	recs := []doctree.Record{
		{Type: "p", Entries: entries("p-k", "a1")},
		{Type: "p", Entries: entries("p-k", "b1")},
	}
	rep := NewProcessor(nil).Build("", recs, []InstanceFilter{{Type: "p", Label: "p-k", Prefix: "a"}})
	if len(rep.Tables) != 1 || rep.Tables[0].Title != "<p>" {
		t.Errorf("expected one unnumbered table, got %v", rep.Tables)
	}
}

func TestParseInstanceFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    InstanceFilter
		wantErr bool
	}{
		{in: "person:Schule=1234", want: InstanceFilter{Type: "person", Label: "Schule", Prefix: "1234"}},
		{in: " person : Schule = 12 ", want: InstanceFilter{Type: "person", Label: "Schule", Prefix: "12"}},
		{in: "person:Schule=", want: InstanceFilter{Type: "person", Label: "Schule"}},
		{in: "person", wantErr: true},
		{in: "person:Schule", wantErr: true},
		{in: ":Schule=1", wantErr: true},
		{in: "person:=1", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseInstanceFilter(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseInstanceFilter(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseInstanceFilter(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseInstanceFilter(%q): expected %+v, got %+v", tt.in, tt.want, got)
		}
	}
}
