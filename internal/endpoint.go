package internal

import (
	"fmt"
	"net/http"
	"reflect"
	"slices"
	"strings"

	"github.com/dmitrymomot/newsdesk/pkg/schema"
)

// Empty marks an endpoint without a validated body or query.
type Empty struct{}

var emptyType = reflect.TypeFor[Empty]()

var supportedMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

// Endpoint is a procedure bound to a method, a path and a handler.
// It is immutable once Finalize returns.
type Endpoint struct {
	input      *schema.Shape
	query      *schema.Shape
	invoke     func(Context) (any, error)
	inputType  reflect.Type
	queryType  reflect.Type
	outputType reflect.Type
	method     string
	path       string
	name       string
	summary    string
	upload     string
	stages     []Stage
	status     int
}

// EndpointOption configures an Endpoint.
type EndpointOption func(*Endpoint)

// Named sets the client method name. By default it is derived from the
// method and the full path.
func Named(name string) EndpointOption {
	return func(e *Endpoint) { e.name = name }
}

// Summary sets a one-line description used in descriptors.
func Summary(s string) EndpointOption {
	return func(e *Endpoint) { e.summary = s }
}

// Upload marks the endpoint as taking a multipart file under field. The
// handler reads the file itself; clients send it instead of a JSON body.
func Upload(field string) EndpointOption {
	return func(e *Endpoint) { e.upload = field }
}

// Status sets the success status code. Defaults to 200.
func Status(code int) EndpointOption {
	return func(e *Endpoint) { e.status = code }
}

// Finalize binds p to method, path and h. In and Q must match the types the
// procedure validated into the input and query locals, or be Empty when
// the procedure validates none. Mismatches panic at startup.
func Finalize[In, Q, Out any](
	p Procedure,
	method, path string,
	h func(c Context, in In, q Q) (Out, error),
	opts ...EndpointOption,
) *Endpoint {
	method = strings.ToUpper(method)
	if !slices.Contains(supportedMethods, method) {
		panic(fmt.Sprintf("newsdesk: unsupported method %q for %s", method, path))
	}
	if h == nil {
		panic(fmt.Sprintf("newsdesk: nil handler for %s %s", method, path))
	}

	inType := reflect.TypeFor[In]()
	qType := reflect.TypeFor[Q]()
	mustMatch(p, FieldInput, inType, method, path)
	mustMatch(p, FieldQuery, qType, method, path)

	ep := &Endpoint{
		method:     method,
		path:       path,
		status:     http.StatusOK,
		stages:     p.Stages(),
		inputType:  inType,
		queryType:  qType,
		outputType: reflect.TypeFor[Out](),
	}
	for _, opt := range opts {
		opt(ep)
	}

	for _, s := range ep.stages {
		if s.payload == nil {
			continue
		}
		if s.payload.Source == schema.SourceQuery {
			ep.query = s.payload
		} else {
			ep.input = s.payload
		}
	}

	inKey, qKey := InputKey[In](), QueryKey[Q]()
	ep.invoke = func(c Context) (any, error) {
		var (
			in In
			q  Q
		)
		if inType != emptyType {
			in = inKey.MustGet(c)
		}
		if qType != emptyType {
			q = qKey.MustGet(c)
		}
		return h(c, in, q)
	}

	return ep
}

func mustMatch(p Procedure, field string, want reflect.Type, method, path string) {
	got, ok := p.lookup(field)
	switch {
	case ok && got != want:
		panic(fmt.Sprintf("newsdesk: %s %s: handler takes %s as %s, procedure provides %s", method, path, want, field, got))
	case !ok && want != emptyType:
		panic(fmt.Sprintf("newsdesk: %s %s: handler takes %s as %s, procedure provides none", method, path, want, field))
	}
}

// Method returns the HTTP method.
func (e *Endpoint) Method() string { return e.method }

// Path returns the path suffix the endpoint was finalized with.
func (e *Endpoint) Path() string { return e.path }

// Name returns the client method name.
func (e *Endpoint) Name() string { return e.name }

// Summary returns the one-line description, if any.
func (e *Endpoint) Summary() string { return e.summary }

// Status returns the success status code.
func (e *Endpoint) Status() int { return e.status }

// StageNames lists the stages in execution order.
func (e *Endpoint) StageNames() []string {
	names := make([]string, len(e.stages))
	for i, s := range e.stages {
		names[i] = s.Name
	}
	return names
}
