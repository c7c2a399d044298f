package rules

import (
	"testing"

	"github.com/dgallion1/xmlreport/internal/doctree"
	"gopkg.in/yaml.v3"
)

func identity(s string) string { return s }

func TestSortRule_IndexFallback(t *testing.T) {
	rule := NewSortRule("", []SortKey{
		{Path: "p-kommunikation-kanal", Label: "Kanal"},
		{Path: "p-kommunikation-kennung", Label: "Kennung"},
	})
	rows := rule.Apply([]doctree.PathEntry{
		{Path: "p-kommunikation[1]-kanal", Value: "mail"},
		{Path: "p-kommunikation[1]-kennung", Value: "a@b.de"},
		{Path: "p-kommunikation[2]-kanal", Value: "tel"},
		{Path: "p-kommunikation[2]-kennung", Value: "0211"},
	}, identity)

	want := []doctree.TableRow{
		{Label: "Kanal", Value: "mail"},
		{Label: "Kanal", Value: "tel"},
		{Label: "Kennung", Value: "a@b.de"},
		{Label: "Kennung", Value: "0211"},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, w := range want {
		if rows[i] != w {
			t.Errorf("row[%d]: expected %v, got %v", i, w, rows[i])
		}
	}
}

func TestSortRule_ExactIndexedPathWins(t *testing.T) {
	rule := NewSortRule("", []SortKey{
		{Path: "p-tel[2]", Label: "Zweite"},
		{Path: "p-tel", Label: "Telefon"},
	})
	rows := rule.Apply([]doctree.PathEntry{
		{Path: "p-tel[1]", Value: "1"},
		{Path: "p-tel[2]", Value: "2"},
	}, identity)

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0] != (doctree.TableRow{Label: "Zweite", Value: "2"}) {
		t.Errorf("expected indexed rule first, got %v", rows[0])
	}
	if rows[1] != (doctree.TableRow{Label: "Telefon", Value: "1"}) {
		t.Errorf("expected stripped rule second, got %v", rows[1])
	}
}

func TestSortRule_EmptyLabelUsesLabelFunc(t *testing.T) {
	rule := NewSortRule("", []SortKey{{Path: "p-a"}})
	rows := rule.Apply([]doctree.PathEntry{{Path: "p-a", Value: "v"}}, func(string) string { return "Mapped" })
	if len(rows) != 1 || rows[0].Label != "Mapped" {
		t.Errorf("expected mapped label, got %v", rows)
	}
}

func TestSortRule_DuplicatePathsKeepFirst(t *testing.T) {
	rule := NewSortRule("", []SortKey{{Path: "a", Label: "A"}, {Path: "b", Label: "B"}, {Path: "a", Label: "A2"}})
	if len(rule.Keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(rule.Keys))
	}
	if pos, ok := rule.Lookup("a"); !ok || pos != 0 {
		t.Errorf("expected a at 0, got %d %v", pos, ok)
	}
}

func TestDecodeJSON_PreservesOrder(t *testing.T) {
	n, err := decodeOrdered("x.json", []byte(`{"z": "1", "a": "2", "m": "3"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var keys []string
	_ = pairs(n, func(k string, _ *yaml.Node) error {
		keys = append(keys, k)
		return nil
	})
	want := []string{"z", "a", "m"}
	for i, w := range want {
		if keys[i] != w {
			t.Errorf("key[%d]: expected %q, got %q", i, w, keys[i])
		}
	}
}

func TestDecodeJSON_RejectsTrailingData(t *testing.T) {
	if _, err := decodeOrdered("x.json", []byte(`["a"] ["b"]`)); err == nil {
		t.Error("expected error for trailing data")
	}
	if _, err := decodeOrdered("x.json", []byte("  \n")); err == nil {
		t.Error("expected error for empty document")
	}
}
