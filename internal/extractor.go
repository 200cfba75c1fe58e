package internal

import (
	"strings"
)

// ExtractorSource extracts a value from the request.
// Returns the value and true if found, or ("", false) if not present.
type ExtractorSource = func(Context) (string, bool)

// Extractor tries multiple sources in order and returns the first match.
type Extractor struct {
	sources []ExtractorSource
}

// NewExtractor returns an Extractor that tries sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

// Extract returns the first non-empty value.
func (e Extractor) Extract(c Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func present(read func(Context) string) ExtractorSource {
	return func(c Context) (string, bool) {
		v := read(c)
		return v, v != ""
	}
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource {
	return present(func(c Context) string { return c.Header(name) })
}

// FromQuery reads a query value.
func FromQuery(name string) ExtractorSource {
	return present(func(c Context) string { return c.Query(name) })
}

// FromParam reads a path parameter.
func FromParam(name string) ExtractorSource {
	return present(func(c Context) string { return c.Param(name) })
}

// FromCookie reads a cookie.
func FromCookie(name string) ExtractorSource {
	return present(func(c Context) string {
		v, _ := c.Cookie(name)
		return v
	})
}

// FromBearerToken reads a Bearer token from the Authorization header.
// The scheme is matched case-insensitively.
func FromBearerToken() ExtractorSource {
	return present(func(c Context) string {
		scheme, token, ok := strings.Cut(c.Header("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	})
}
