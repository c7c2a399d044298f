package rules

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FilterMode selects how filter keys are compared with entry paths.
type FilterMode string

const (
	FilterExact    FilterMode = "exact"    // case-insensitive equality
	FilterFragment FilterMode = "fragment" // case-insensitive substring
)

// FilterRules decides which entries are dropped. nil drops nothing.
type FilterRules struct {
	mode FilterMode
	keys map[string]bool
	list []string
}

// NewFilterRules builds filter rules from keys or key fragments.
func NewFilterRules(keys []string, mode FilterMode) *FilterRules {
	if mode != FilterFragment {
		mode = FilterExact
	}
	f := &FilterRules{mode: mode, keys: make(map[string]bool, len(keys))}
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || f.keys[k] {
			continue
		}
		f.keys[k] = true
		f.list = append(f.list, k)
	}
	return f
}

// Mode returns the comparison mode.
func (f *FilterRules) Mode() FilterMode {
	if f == nil {
		return FilterExact
	}
	return f.mode
}

// Len returns the number of configured keys.
func (f *FilterRules) Len() int {
	if f == nil {
		return 0
	}
	return len(f.list)
}

// IsFiltered reports whether entries with this key must be dropped.
func (f *FilterRules) IsFiltered(key string) bool {
	if f == nil || len(f.list) == 0 {
		return false
	}
	lower := strings.ToLower(strings.TrimSpace(key))
	if f.keys[lower] {
		return true
	}
	if f.mode == FilterFragment {
		for _, frag := range f.list {
			if strings.Contains(lower, frag) {
				return true
			}
		}
	}
	return false
}

// parseFilter accepts an array of keys (exact mode) or
// {"version": n, "mode": "exact"|"fragment", "keys": [...]}.
func parseFilter(n *yaml.Node) (*FilterRules, error) {
	switch n.Kind {
	case yaml.SequenceNode:
		keys, err := stringList(n, "filter key")
		if err != nil {
			return nil, err
		}
		return NewFilterRules(keys, FilterExact), nil

	case yaml.MappingNode:
		mode := FilterExact
		if m := field(n, "mode"); m != nil {
			s, err := scalarString(m, "mode")
			if err != nil {
				return nil, err
			}
			switch FilterMode(strings.ToLower(s)) {
			case FilterExact:
			case FilterFragment:
				mode = FilterFragment
			default:
				return nil, fmt.Errorf("unknown filter mode %q", s)
			}
		}
		keysNode := field(n, "keys")
		if keysNode == nil || keysNode.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("line %d: filter settings need a \"keys\" array", n.Line)
		}
		keys, err := stringList(keysNode, "filter key")
		if err != nil {
			return nil, err
		}
		return NewFilterRules(keys, mode), nil
	}
	return nil, fmt.Errorf("line %d: filter settings must be an array or object", n.Line)
}

func stringList(n *yaml.Node, what string) ([]string, error) {
	out := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		s, err := scalarString(resolve(item), what)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
