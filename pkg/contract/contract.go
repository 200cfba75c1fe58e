// Package contract projects route descriptions into client artifacts: Go
// source for a typed client and a YAML manifest.
//
// Generated clients reuse the server's payload types, so request and
// response shapes are never redeclared. Query strings are encoded field by
// field in generated code; nothing is validated on the calling side.
package contract

import (
	"errors"
	"reflect"

	"github.com/dmitrymomot/newsdesk/pkg/schema"
)

var (
	ErrNoEndpoints   = errors.New("contract: no endpoints")
	ErrInvalidName   = errors.New("contract: endpoint name is not a Go identifier")
	ErrDuplicateName = errors.New("contract: duplicate endpoint name")
	ErrUnsupported   = errors.New("contract: unsupported field type")
	ErrFormat        = errors.New("contract: generated source does not parse")
)

// Endpoint is one route as seen by a client.
type Endpoint struct {
	// Input and Query are nil when the route takes no body or query.
	Input *schema.Shape
	Query *schema.Shape

	// Output is nil when the route returns no data.
	Output reflect.Type

	Name       string
	Method     string
	Path       string
	Summary    string
	PathParams []string
	Stages     []string
	Status     int

	// Upload names the multipart file field of upload routes.
	Upload string
}

// Options configures Generate.
type Options struct {
	Package string
	// Command is printed in the generated header, e.g. "go run ./cmd/contractgen".
	Command string
}
