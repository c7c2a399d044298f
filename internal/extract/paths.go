// Package extract flattens XML element trees into ordered path/value entries.
package extract

import (
	"strconv"
	"strings"

	"github.com/dgallion1/xmlreport/internal/doctree"
)

// Paths flattens the subtree below root into leaf entries in pre-order document order.
// Paths start with the root's local name.
func Paths(root *doctree.Node) []doctree.PathEntry {
	if root == nil {
		return nil
	}
	var entries []doctree.PathEntry
	walk(root, root.Name, &entries)
	return entries
}

func walk(node *doctree.Node, path string, entries *[]doctree.PathEntry) {
	// Sibling counts per local name decide whether a segment gets an index.
	counts := make(map[string]int, len(node.Children))
	for _, child := range node.Children {
		counts[child.Name]++
	}
	seen := make(map[string]int, len(counts))

	for _, child := range node.Children {
		seen[child.Name]++
		childPath := path + "-" + child.Name
		if counts[child.Name] > 1 {
			childPath += "[" + strconv.Itoa(seen[child.Name]) + "]"
		}

		if child.IsLeaf() {
			if v := strings.TrimSpace(child.Text); v != "" {
				*entries = append(*entries, doctree.PathEntry{Path: childPath, Value: v})
			}
		}
		walk(child, childPath, entries)
	}
}

// Find returns every element named localName, root included, in document order.
func Find(root *doctree.Node, localName string) []*doctree.Node {
	var out []*doctree.Node
	var visit func(*doctree.Node)
	visit = func(n *doctree.Node) {
		if n.Name == localName {
			out = append(out, n)
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	if root != nil {
		visit(root)
	}
	return out
}

// StripIndexes removes every "[k]" sibling suffix from a path.
func StripIndexes(path string) string {
	if !strings.Contains(path, "[") {
		return path
	}
	var sb strings.Builder
	sb.Grow(len(path))
	for i := 0; i < len(path); i++ {
		if path[i] == '[' {
			j := i + 1
			for j < len(path) && path[j] >= '0' && path[j] <= '9' {
				j++
			}
			if j > i+1 && j < len(path) && path[j] == ']' {
				i = j
				continue
			}
		}
		sb.WriteByte(path[i])
	}
	return sb.String()
}
