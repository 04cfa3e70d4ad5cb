// Package savedquery loads named criteria sets from YAML or CUE files and
// applies them to a query builder.
//
// Both formats share one shape:
//
//	queries:
//	  large-images:
//	    description: Images at least 1000px wide
//	    criteria:
//	      kind: image
//	      width: ">= 1000"
//
// Criterion names are not checked at load time. Apply passes each one to
// the builder's Set, which rejects unknown names.
package savedquery

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Query is one saved criteria set.
type Query struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Criteria    map[string]any `json:"criteria"`
}

// Setter receives criteria. Asset and element queries implement it.
type Setter interface {
	Set(name string, value any) error
}

// Apply sets every criterion of q on s in name order and stops at the first
// rejected one.
func (q Query) Apply(s Setter) error {
	names := make([]string, 0, len(q.Criteria))
	for name := range q.Criteria {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if err := s.Set(name, q.Criteria[name]); err != nil {
			return fmt.Errorf("saved query %q: %w", q.Name, err)
		}
	}
	return nil
}

// Library is a set of saved queries keyed by name.
type Library map[string]Query

// Names returns the query names in sorted order.
func (l Library) Names() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Get returns the named query.
func (l Library) Get(name string) (Query, error) {
	q, ok := l[name]
	if !ok {
		return Query{}, fmt.Errorf("no saved query %q (have: %s)", name, strings.Join(l.Names(), ", "))
	}
	return q, nil
}

// Load reads a saved query file. The format follows the extension:
// .yaml or .yml for YAML, .cue for CUE.
func Load(path string) (Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open saved queries: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return ParseYAML(f)
	case ".cue":
		src, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("read saved queries: %w", err)
		}
		return ParseCUE(path, src)
	default:
		return nil, fmt.Errorf("saved queries %s: unsupported extension %q", path, ext)
	}
}
