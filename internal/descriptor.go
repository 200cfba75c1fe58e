package internal

import (
	"reflect"
	"strings"

	"github.com/dmitrymomot/newsdesk/pkg/schema"
)

// Descriptor is the client-facing contract of one route.
type Descriptor struct {
	Input       *schema.Shape
	Query       *schema.Shape
	InputType   reflect.Type
	QueryType   reflect.Type
	OutputType  reflect.Type
	Name        string
	Method      string
	Path        string
	Summary     string
	UploadField string
	PathParams  []string
	Stages      []string
	Status      int
}

// HasInput reports whether the endpoint validates a JSON body.
func (d Descriptor) HasInput() bool { return d.Input != nil }

// HasQuery reports whether the endpoint validates a query string.
func (d Descriptor) HasQuery() bool { return d.Query != nil }

// Descriptors lists the contract of every route, sorted by path then
// method. Handlers are never invoked.
func (t *Tree) Descriptors() []Descriptor {
	routes := t.Routes()
	out := make([]Descriptor, 0, len(routes))
	for _, r := range routes {
		ep := r.Endpoint
		out = append(out, Descriptor{
			Input:       ep.input,
			Query:       ep.query,
			InputType:   ep.inputType,
			QueryType:   ep.queryType,
			OutputType:  ep.outputType,
			Name:        r.Name,
			Method:      r.Method,
			Path:        r.Path,
			Summary:     ep.summary,
			UploadField: ep.upload,
			PathParams:  pathParams(r.Path),
			Stages:      ep.StageNames(),
			Status:      ep.status,
		})
	}
	return out
}

func pathParams(p string) []string {
	matches := paramPattern.FindAllString(p, -1)
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i], _, _ = strings.Cut(strings.Trim(m, "{}"), ":")
	}
	return names
}
