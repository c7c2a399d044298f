package rules

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Precedence decides which fragment wins when several match a key.
type Precedence string

const (
	// PrecedenceDeclared picks the first matching fragment in file order.
	PrecedenceDeclared Precedence = "declared"
	// PrecedenceLongest picks the longest matching fragment; ties go to file order.
	PrecedenceLongest Precedence = "longest"
)

// ParsePrecedence accepts "declared" or "longest" (case-insensitive).
func ParsePrecedence(s string) (Precedence, error) {
	switch Precedence(strings.ToLower(strings.TrimSpace(s))) {
	case "", PrecedenceDeclared:
		return PrecedenceDeclared, nil
	case PrecedenceLongest:
		return PrecedenceLongest, nil
	}
	return "", fmt.Errorf("unknown fragment precedence %q (want declared|longest)", s)
}

// LabelRule maps a technical key, or a fragment of one, to a display label.
type LabelRule struct {
	Key   string
	Label string
}

// LabelRules resolves display labels. The zero value and nil are identity.
type LabelRules struct {
	exact      map[string]string
	fragments  []fragment
	precedence Precedence
}

type fragment struct {
	lower string
	label string
}

// NewLabelRules builds label rules; rules keep their slice order.
func NewLabelRules(rules []LabelRule, precedence Precedence) *LabelRules {
	l := &LabelRules{
		exact:      make(map[string]string, len(rules)),
		precedence: precedence,
	}
	for _, r := range rules {
		key := strings.TrimSpace(r.Key)
		if key == "" {
			continue
		}
		if _, dup := l.exact[key]; dup {
			continue
		}
		l.exact[key] = r.Label
		l.fragments = append(l.fragments, fragment{lower: strings.ToLower(key), label: r.Label})
	}
	return l
}

// Len returns the number of rules.
func (l *LabelRules) Len() int {
	if l == nil {
		return 0
	}
	return len(l.fragments)
}

// LabelFor returns the exact label for key, else the label of a matching
// fragment, else the trimmed key.
func (l *LabelRules) LabelFor(key string) string {
	if l == nil {
		return key
	}
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return key
	}
	if label, ok := l.exact[trimmed]; ok {
		return label
	}

	lower := strings.ToLower(trimmed)
	best := -1
	for i, f := range l.fragments {
		if !strings.Contains(lower, f.lower) {
			continue
		}
		if l.precedence != PrecedenceLongest {
			return f.label
		}
		if best < 0 || len(f.lower) > len(l.fragments[best].lower) {
			best = i
		}
	}
	if best >= 0 {
		return l.fragments[best].label
	}
	return trimmed
}

// parseLabels accepts a flat ordered object or {"version": n, "mappings": {...}}.
func parseLabels(n *yaml.Node, precedence Precedence) (*LabelRules, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: label mappings must be an object", n.Line)
	}
	if m := field(n, "mappings"); m != nil && m.Kind == yaml.MappingNode {
		n = m
	}

	var rules []LabelRule
	err := pairs(n, func(key string, value *yaml.Node) error {
		label, err := scalarString(value, fmt.Sprintf("label for %q", key))
		if err != nil {
			return err
		}
		rules = append(rules, LabelRule{Key: key, Label: label})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewLabelRules(rules, precedence), nil
}
