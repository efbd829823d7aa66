package router

import (
	"fmt"
	"strings"
)

// Match is a successful route-table lookup: the value registered for the
// winning pattern plus the path parameters it bound.
type Match struct {
	Value  interface{}
	Params map[string]string
}

type tableEntry struct {
	pattern Pattern
	value   interface{}
}

// Table maps route patterns to arbitrary values. Lookups use ranked
// matching, so the result for a given path is the same no matter what order
// Add was called in.
type Table struct {
	entries []tableEntry
	shapes  map[string]string
}

func NewTable() *Table {
	return &Table{shapes: make(map[string]string)}
}

// Add registers a pattern. Two patterns with the same shape (identical
// segment kinds position by position, capture names aside) would tie under
// ranked matching, so the second registration is rejected as ambiguous.
func (t *Table) Add(pattern Pattern, value interface{}) error {
	if existing, found := t.shapes[pattern.shape]; found {
		return fmt.Errorf("route %s is ambiguous with %s", pattern, existing)
	}
	t.shapes[pattern.shape] = pattern.String()
	t.entries = append(t.entries, tableEntry{pattern: pattern, value: value})
	return nil
}

// Match finds the highest-ranked pattern matching the request path. A
// trailing slash is ignored; "/" matches the root pattern.
func (t *Table) Match(requestPath string) (*Match, bool) {
	segments, ok := splitRequestPath(requestPath)
	if !ok {
		return nil, false
	}
	var best *tableEntry
	var bestParams map[string]string
	for i := range t.entries {
		entry := &t.entries[i]
		params, ok := entry.pattern.match(segments)
		if !ok {
			continue
		}
		if best == nil || moreSpecific(entry.pattern, best.pattern) {
			best = entry
			bestParams = params
		}
	}
	if best == nil {
		return nil, false
	}
	return &Match{Value: best.value, Params: bestParams}, true
}

func splitRequestPath(path string) ([]string, bool) {
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return nil, true
	}
	segments := strings.Split(path, "/")
	for _, s := range segments {
		if s == "" {
			return nil, false
		}
	}
	return segments, true
}
