package rules

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dgallion1/xmlreport/internal/doctree"
	"github.com/dgallion1/xmlreport/internal/extract"
	"gopkg.in/yaml.v3"
)

// SortKey is one allow-listed path with an optional display label.
type SortKey struct {
	Path  string
	Label string // empty: resolve through label mappings
}

// SortRule decides inclusion, label and order of a record type's rows.
type SortRule struct {
	Version int
	Title   string
	Keys    []SortKey
	index   map[string]int
}

// NewSortRule builds a rule; later duplicates of a path are ignored.
func NewSortRule(title string, keys []SortKey) *SortRule {
	r := &SortRule{Version: 2, Title: title, index: make(map[string]int, len(keys))}
	for _, k := range keys {
		k.Path = strings.TrimSpace(k.Path)
		if k.Path == "" {
			continue
		}
		if _, dup := r.index[k.Path]; dup {
			continue
		}
		r.index[k.Path] = len(r.Keys)
		r.Keys = append(r.Keys, k)
	}
	return r
}

// Lookup returns the position of path in the rule, trying the exact path
// first and then the path with its sibling indexes stripped.
func (r *SortRule) Lookup(path string) (int, bool) {
	if pos, ok := r.index[path]; ok {
		return pos, true
	}
	pos, ok := r.index[extract.StripIndexes(path)]
	return pos, ok
}

// Apply keeps the entries the rule lists, labels them and orders them by
// rule position. Entries matching the same rule key keep document order.
func (r *SortRule) Apply(entries []doctree.PathEntry, labelFor func(string) string) []doctree.TableRow {
	type ranked struct {
		pos int
		row doctree.TableRow
	}
	kept := make([]ranked, 0, len(entries))
	for _, e := range entries {
		pos, ok := r.Lookup(e.Path)
		if !ok {
			continue
		}
		label := r.Keys[pos].Label
		if label == "" {
			label = labelFor(e.Path)
		}
		kept = append(kept, ranked{pos: pos, row: doctree.TableRow{Label: label, Value: e.Value}})
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].pos < kept[j].pos })

	rows := make([]doctree.TableRow, len(kept))
	for i, k := range kept {
		rows[i] = k.row
	}
	return rows
}

// parseSortRule unifies the three accepted shapes:
//
//	["path", ...]
//	{"path": "Label", ...}
//	{"version": 2, "tableTitle": "...", "mappings": {"path": "Label"} | ["path"]}
func parseSortRule(n *yaml.Node) (*SortRule, error) {
	switch n.Kind {
	case yaml.SequenceNode:
		keys, err := sortKeys(n)
		if err != nil {
			return nil, err
		}
		r := NewSortRule("", keys)
		r.Version = 1
		return r, nil

	case yaml.MappingNode:
		mappings := field(n, "mappings")
		if mappings == nil {
			keys, err := sortKeys(n)
			if err != nil {
				return nil, err
			}
			r := NewSortRule("", keys)
			r.Version = 1
			return r, nil
		}

		var title string
		if t := field(n, "tableTitle"); t != nil && t.ShortTag() != "!!null" {
			s, err := scalarString(t, "tableTitle")
			if err != nil {
				return nil, err
			}
			title = strings.TrimSpace(s)
		}
		version := 2
		if v := field(n, "version"); v != nil {
			i, err := strconv.Atoi(v.Value)
			if err != nil || i < 1 {
				return nil, fmt.Errorf("line %d: invalid version %q", v.Line, v.Value)
			}
			version = i
		}
		if mappings.Kind != yaml.MappingNode && mappings.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("line %d: mappings must be an object or array", mappings.Line)
		}
		keys, err := sortKeys(mappings)
		if err != nil {
			return nil, err
		}
		r := NewSortRule(title, keys)
		r.Version = version
		return r, nil
	}
	return nil, fmt.Errorf("line %d: sort order must be an array or object", n.Line)
}

func sortKeys(n *yaml.Node) ([]SortKey, error) {
	if n.Kind == yaml.SequenceNode {
		paths, err := stringList(n, "sort path")
		if err != nil {
			return nil, err
		}
		keys := make([]SortKey, len(paths))
		for i, p := range paths {
			keys[i] = SortKey{Path: p}
		}
		return keys, nil
	}

	var keys []SortKey
	err := pairs(n, func(path string, value *yaml.Node) error {
		label, err := scalarString(value, fmt.Sprintf("label for %q", path))
		if err != nil {
			return err
		}
		keys = append(keys, SortKey{Path: path, Label: strings.TrimSpace(label)})
		return nil
	})
	return keys, err
}
