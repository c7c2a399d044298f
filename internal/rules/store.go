// Package rules loads and serves the label, filter and sort configuration
// that shapes report tables. Every resource is optional: a missing or
// malformed file degrades that resource to identity behaviour only.
package rules

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dgallion1/xmlreport/internal/doctree"
)

// Resource base names inside the rules directory.
const (
	LabelsResource     = "labelMappings"
	FilterResource     = "filterSettings"
	SortResourcePrefix = "sortOrder_"
)

var extensions = []string{".json", ".yaml", ".yml"}

// Options configures a Store.
type Options struct {
	Dir                string // rules directory; empty disables file lookups
	FragmentPrecedence Precedence
	Logger             *slog.Logger
}

// Store serves rule lookups. Sort rules load on first use and are cached;
// a Store is safe for concurrent use.
type Store struct {
	dir        string
	precedence Precedence
	log        *slog.Logger

	labels Loaded[*LabelRules]
	filter Loaded[*FilterRules]

	mu    sync.Mutex
	sorts map[string]Loaded[*SortRule]
}

// Open loads label and filter rules from opts.Dir.
func Open(opts Options) *Store {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Store{
		dir:        opts.Dir,
		precedence: opts.FragmentPrecedence,
		log:        log,
		sorts:      make(map[string]Loaded[*SortRule]),
	}
	s.labels = s.loadLabels()
	s.filter = s.loadFilter()
	return s
}

// NewStatic builds a Store from in-memory rules without touching the file system.
func NewStatic(labels *LabelRules, filter *FilterRules, sorts map[string]*SortRule) *Store {
	s := &Store{
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		sorts: make(map[string]Loaded[*SortRule], len(sorts)),
	}
	s.labels = Loaded[*LabelRules]{Value: labels, Status: Status{Resource: LabelsResource, State: StateLoaded}}
	s.filter = Loaded[*FilterRules]{Value: filter, Status: Status{Resource: FilterResource, State: StateLoaded}}
	if labels == nil {
		s.labels.Status.State = StateMissing
	}
	if filter == nil {
		s.filter.Status.State = StateMissing
	}
	for typ, r := range sorts {
		s.sorts[typ] = Loaded[*SortRule]{Value: r, Status: Status{Resource: SortResourcePrefix + typ, State: StateLoaded}}
	}
	return s
}

// LabelFor resolves the display label for a technical key.
func (s *Store) LabelFor(key string) string {
	return s.labels.Value.LabelFor(key)
}

// IsFiltered reports whether entries with this key are dropped.
func (s *Store) IsFiltered(key string) bool {
	return s.filter.Value.IsFiltered(key)
}

// SortRule returns the sort rule for a record type, if one is configured.
func (s *Store) SortRule(recordType string) (*SortRule, bool) {
	l := s.loadSort(recordType)
	return l.Value, l.Value != nil
}

// SortAndLabel applies the record type's sort rule to entries. Without a rule
// the entries keep their order and are labelled through the label mappings.
// Values are returned as given.
func (s *Store) SortAndLabel(recordType string, entries []doctree.PathEntry) ([]doctree.TableRow, string) {
	title := DefaultTitle(recordType)
	rule, ok := s.SortRule(recordType)
	if !ok {
		rows := make([]doctree.TableRow, len(entries))
		for i, e := range entries {
			rows[i] = doctree.TableRow{Label: s.LabelFor(e.Path), Value: e.Value}
		}
		return rows, title
	}
	if rule.Title != "" {
		title = rule.Title
	}
	return rule.Apply(entries, s.LabelFor), title
}

// DefaultTitle is the table title used when no rule names one.
func DefaultTitle(recordType string) string {
	return "<" + recordType + ">"
}

// Labels returns the label resource and its load status.
func (s *Store) Labels() Loaded[*LabelRules] { return s.labels }

// Filter returns the filter resource and its load status.
func (s *Store) Filter() Loaded[*FilterRules] { return s.filter }

// Diagnostics lists the status of every resource consulted so far.
func (s *Store) Diagnostics() []Status {
	out := []Status{s.labels.Status, s.filter.Status}

	s.mu.Lock()
	types := make([]string, 0, len(s.sorts))
	for typ := range s.sorts {
		types = append(types, typ)
	}
	sort.Strings(types)
	for _, typ := range types {
		out = append(out, s.sorts[typ].Status)
	}
	s.mu.Unlock()

	return out
}

func (s *Store) loadLabels() Loaded[*LabelRules] {
	l := Loaded[*LabelRules]{Value: NewLabelRules(nil, s.precedence)}
	l.Status = s.load(LabelsResource, func(data []byte, path string) error {
		n, err := decodeOrdered(path, data)
		if err != nil {
			return err
		}
		rules, err := parseLabels(n, s.precedence)
		if err != nil {
			return err
		}
		l.Value = rules
		return nil
	})
	return l
}

func (s *Store) loadFilter() Loaded[*FilterRules] {
	l := Loaded[*FilterRules]{Value: NewFilterRules(nil, FilterExact)}
	l.Status = s.load(FilterResource, func(data []byte, path string) error {
		n, err := decodeOrdered(path, data)
		if err != nil {
			return err
		}
		rules, err := parseFilter(n)
		if err != nil {
			return err
		}
		l.Value = rules
		return nil
	})
	return l
}

func (s *Store) loadSort(recordType string) Loaded[*SortRule] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.sorts[recordType]; ok {
		return l
	}

	resource := SortResourcePrefix + recordType
	var l Loaded[*SortRule]
	if !safeName(recordType) {
		l.Status = Status{Resource: resource, State: StateMissing, Err: errors.New("record type is not a valid file name")}
	} else {
		l.Status = s.load(resource, func(data []byte, path string) error {
			n, err := decodeOrdered(path, data)
			if err != nil {
				return err
			}
			rule, err := parseSortRule(n)
			if err != nil {
				return err
			}
			l.Value = rule
			return nil
		})
	}
	s.sorts[recordType] = l
	return l
}

// load reads the first existing file for resource and hands it to parse.
func (s *Store) load(resource string, parse func(data []byte, path string) error) Status {
	st := Status{Resource: resource, State: StateMissing}
	if s.dir == "" {
		return st
	}

	for _, ext := range extensions {
		path := filepath.Join(s.dir, resource+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		st.Path = path
		if err == nil {
			err = parse(data, path)
		}
		if err != nil {
			st.State = StateInvalid
			st.Err = err
			s.log.Warn("rules resource unusable, using defaults", "resource", resource, "path", path, "error", err)
			return st
		}
		st.State = StateLoaded
		s.log.Debug("rules resource loaded", "resource", resource, "path", path)
		return st
	}

	s.log.Debug("rules resource not found, using defaults", "resource", resource, "dir", s.dir)
	return st
}

func safeName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00:")
}
