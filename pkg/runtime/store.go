// Package runtime holds the state a WHILE program mutates while it runs.
package runtime

import (
	"sort"
	"strings"

	"github.com/Fish-o/whily/pkg/lexer"
)

// Store maps variable names to their current values. A variable is bound
// once it has been assigned; reading an unbound name is the caller's error
// to report.
type Store struct {
	values map[string]uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{values: make(map[string]uint64)}
}

// Get looks up name and reports whether it is bound.
func (s *Store) Get(name string) (uint64, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Set binds or overwrites name.
func (s *Store) Set(name string, value uint64) {
	s.values[name] = value
}

func (s *Store) Len() int {
	return len(s.values)
}

// Snapshot returns a copy of the current bindings.
func (s *Store) Snapshot() map[string]uint64 {
	out := make(map[string]uint64, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Keys returns the bound names in display order: free-form names first,
// alphabetically, then x<N> names by N.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return LessName(keys[i], keys[j]) })
	return keys
}

// LessName orders variable names for display.
func LessName(a, b string) bool {
	ai, bi := lexer.IsIndexedVariable(a), lexer.IsIndexedVariable(b)
	if ai != bi {
		return !ai
	}
	if !ai {
		return a < b
	}
	na, nb := strings.TrimLeft(a[1:], "0"), strings.TrimLeft(b[1:], "0")
	if len(na) != len(nb) {
		return len(na) < len(nb)
	}
	if na != nb {
		return na < nb
	}
	return a < b
}
