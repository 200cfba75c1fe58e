// Package sanitizer cleans user-provided strings before validation.
//
// Operations are addressed by name so they can be declared in struct tags
// (`sanitize:"trim,strip_html"`) and resolved once when a schema is compiled.
package sanitizer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrUnknownOperation is returned when a sanitize tag names an unregistered operation.
var ErrUnknownOperation = errors.New("sanitizer: unknown operation")

// Func transforms a string.
type Func func(string) string

var operations = map[string]Func{
	"trim":       strings.TrimSpace,
	"lower":      strings.ToLower,
	"upper":      strings.ToUpper,
	"collapse":   CollapseSpaces,
	"html":       SanitizeHTML,
	"strip_html": StripHTML,
	"email":      NormalizeEmail,
}

// Lookup returns the operation registered under name.
func Lookup(name string) (Func, bool) {
	fn, ok := operations[name]
	return fn, ok
}

// Chain resolves names into a single function applied left to right.
func Chain(names ...string) (Func, error) {
	fns := make([]Func, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		fn, ok := operations[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
		}
		fns = append(fns, fn)
	}
	return func(s string) string {
		for _, fn := range fns {
			s = fn(s)
		}
		return s
	}, nil
}

// Apply runs the named operations over s.
func Apply(s string, names ...string) (string, error) {
	fn, err := Chain(names...)
	if err != nil {
		return s, err
	}
	return fn(s), nil
}

// CollapseSpaces trims s and folds every whitespace run into a single space.
func CollapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
