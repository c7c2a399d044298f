package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/xmlreport/internal/doctree"
)

var (
	// ErrNoRecordTypes is returned when no usable record type was requested.
	ErrNoRecordTypes = errors.New("at least one record type is required")
	// ErrRecordTypesNotFound is returned when none of the requested types occur.
	ErrRecordTypesNotFound = errors.New("record types not found")
)

// InputError aborts a conversion. Types names the requested record types.
type InputError struct {
	Types []string
	Err   error
}

func (e *InputError) Error() string {
	if errors.Is(e.Err, ErrRecordTypesNotFound) {
		return fmt.Sprintf("none of the requested record types (%s) were found in the document", FormatTypes(e.Types))
	}
	return e.Err.Error()
}

func (e *InputError) Unwrap() error { return e.Err }

// FormatTypes renders type names as "<a>, <b>".
func FormatTypes(types []string) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = "<" + t + ">"
	}
	return strings.Join(parts, ", ")
}

// NormalizeTypes trims names, drops blanks and duplicates, keeping first occurrence.
func NormalizeTypes(types []string) []string {
	seen := make(map[string]bool, len(types))
	out := make([]string, 0, len(types))
	for _, t := range types {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Records extracts one Record per matching element for every requested type.
// Records are grouped by requested type order, then document order. The
// not-found check runs once, after all types have been searched.
func Records(doc *doctree.Document, types []string) ([]doctree.Record, error) {
	types = NormalizeTypes(types)
	if len(types) == 0 {
		return nil, &InputError{Err: ErrNoRecordTypes}
	}

	var records []doctree.Record
	if doc != nil {
		for _, typ := range types {
			for _, node := range Find(doc.Root, typ) {
				records = append(records, doctree.Record{
					Type:    typ,
					Entries: Paths(node),
				})
			}
		}
	}

	if len(records) == 0 {
		return nil, &InputError{Types: types, Err: ErrRecordTypesNotFound}
	}
	return records, nil
}
