package internal

import (
	"github.com/dmitrymomot/newsdesk/pkg/schema"
)

// InputKey is the handle to the validated body of type T.
func InputKey[T any]() Key[T] {
	return Key[T]{name: FieldInput}
}

// QueryKey is the handle to the validated query of type T.
func QueryKey[T any]() Key[T] {
	return Key[T]{name: FieldQuery}
}

// WithBody extends p with a stage that decodes the JSON body into T.
// Invalid bodies halt with a validation error listing every failing field;
// valid ones are stored under the input local. T's tags are compiled here,
// so a bad tag panics at startup.
func WithBody[T any](p Procedure, opts ...schema.Option) Procedure {
	s := schema.Body[T](opts...)
	shape := s.Shape()
	key := InputKey[T]()

	return p.Extend(Stage{
		Name:     "validate_body",
		Provides: []Decl{key.Decl()},
		payload:  &shape,
		Run: func(c Context) Result {
			in, err := s.DecodeBody(c.Request().Body)
			if err != nil {
				return Halt(toError(err))
			}
			return Continue(key.Field(in))
		},
	})
}

// WithQuery extends p with a stage that decodes the query string into T,
// applying declared defaults to absent parameters.
func WithQuery[T any](p Procedure, opts ...schema.Option) Procedure {
	s := schema.Query[T](opts...)
	shape := s.Shape()
	key := QueryKey[T]()

	return p.Extend(Stage{
		Name:     "validate_query",
		Provides: []Decl{key.Decl()},
		payload:  &shape,
		Run: func(c Context) Result {
			q, err := s.DecodeQuery(c.Request().URL.Query())
			if err != nil {
				return Halt(toError(err))
			}
			return Continue(key.Field(q))
		},
	})
}
