// Package filter implements the include/exclude name rules applied while
// walking a tree.
package filter

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrInvalidPattern is wrapped by errors returned for patterns that cannot be
// compiled.
var ErrInvalidPattern = errors.New("invalid pattern")

// Set is a compiled list of include and exclude glob patterns.
// The zero value and a nil *Set admit every name.
type Set struct {
	include       []string
	exclude       []string
	caseSensitive bool
}

// New compiles include and exclude patterns. Supported syntax is that of
// path.Match: '*', '?', character classes and '\\' escapes.
func New(include, exclude []string, caseSensitive bool) (*Set, error) {
	s := &Set{caseSensitive: caseSensitive}
	var err error
	if s.include, err = compile(include, caseSensitive); err != nil {
		return nil, err
	}
	if s.exclude, err = compile(exclude, caseSensitive); err != nil {
		return nil, err
	}
	return s, nil
}

func compile(patterns []string, caseSensitive bool) ([]string, error) {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if !caseSensitive {
			p = strings.ToLower(p)
		}
		// path.Match validates the whole pattern before reporting a mismatch.
		if _, err := path.Match(p, ""); err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, p, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Match reports whether name passes the rules. Exclude patterns take
// precedence over include patterns; an empty include list admits everything.
func (s *Set) Match(name string) bool {
	if s == nil {
		return true
	}
	if !s.caseSensitive {
		name = strings.ToLower(name)
	}
	if len(s.include) > 0 && !matchAny(s.include, name) {
		return false
	}
	return !matchAny(s.exclude, name)
}

// Empty reports whether the set has no rules at all.
func (s *Set) Empty() bool {
	return s == nil || (len(s.include) == 0 && len(s.exclude) == 0)
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}
