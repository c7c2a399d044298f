package doctree

// Document is a parsed XML instance.
type Document struct {
	Title string // Document title (from the file name)
	Root  *Node  // Document element
}

// Node is one XML element.
type Node struct {
	Name     string  // Local name
	Space    string  // Namespace URI (empty if none)
	Text     string  // Direct character data, CDATA included
	Children []*Node // Child elements in document order
}

// IsLeaf reports whether the element has no child elements.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// PathEntry is one flattened leaf value.
type PathEntry struct {
	Path  string // e.g. "dritte-kommunikation[2]-kennung"
	Value string // Trimmed text content
}

// Record is one matched element instance with its flattened entries.
type Record struct {
	Type    string
	Entries []PathEntry
}

// TableRow is a display-ready label/value pair.
type TableRow struct {
	Label string
	Value string
}

// Table is one rendered record.
type Table struct {
	Title string
	Rows  []TableRow
}

// Report is everything a renderer needs.
type Report struct {
	Title  string
	Tables []Table
}

// RowCount returns the number of data rows across all tables.
func (r Report) RowCount() int {
	n := 0
	for _, t := range r.Tables {
		n += len(t.Rows)
	}
	return n
}
