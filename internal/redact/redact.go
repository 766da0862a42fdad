package redact

import (
	"net/http"
	"strings"
)

// Placeholder replaces redacted values unless a Set overrides it.
const Placeholder = "<redacted>"

// DefaultNames are redacted when a project configures no names of its own.
var DefaultNames = []string{"cookie", "x-csrf-token", "x-xsrf-token"}

// Set is an immutable collection of field names to redact.
type Set struct {
	names       map[string]struct{}
	placeholder string
}

// NewSet builds a Set from names. Blank names are ignored.
func NewSet(names ...string) Set {
	s := Set{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		s.names[n] = struct{}{}
	}
	return s
}

// WithPlaceholder returns a copy of s that substitutes p. An empty p keeps
// the default.
func (s Set) WithPlaceholder(p string) Set {
	s.placeholder = p
	return s
}

// Placeholder returns the replacement value used by s.
func (s Set) Placeholder() string {
	if s.placeholder == "" {
		return Placeholder
	}
	return s.placeholder
}

// Contains reports whether name is in s, ignoring case.
func (s Set) Contains(name string) bool {
	if len(s.names) == 0 {
		return false
	}
	_, ok := s.names[strings.ToLower(name)]
	return ok
}

// Len returns the number of names in s.
func (s Set) Len() int {
	return len(s.names)
}

// Names returns the lower-cased names in s in no particular order.
func (s Set) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	return out
}

// Apply returns a copy of record with the value of every field named in set
// replaced by the set's placeholder. Field names keep their original case.
// The input is never modified.
func Apply(record map[string]string, set Set) map[string]string {
	if record == nil {
		return nil
	}
	out := make(map[string]string, len(record))
	for k, v := range record {
		if set.Contains(k) {
			out[k] = set.Placeholder()
		} else {
			out[k] = v
		}
	}
	return out
}

// ApplyHeader returns a copy of h with every value of a redacted header
// replaced by a single placeholder.
func ApplyHeader(h http.Header, set Set) http.Header {
	if h == nil {
		return nil
	}
	out := make(http.Header, len(h))
	for name, values := range h {
		if set.Contains(name) {
			out[name] = []string{set.Placeholder()}
			continue
		}
		out[name] = append([]string(nil), values...)
	}
	return out
}
