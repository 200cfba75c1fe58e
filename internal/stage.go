package internal

import (
	"github.com/dmitrymomot/newsdesk/pkg/schema"
)

// Stage is one step of a procedure. Run either continues with a patch of
// locals or halts with the response for the request.
type Stage struct {
	// Run executes the stage. It must not write the response itself;
	// a halting Result is rendered by the engine.
	Run func(Context) Result

	// Name identifies the stage in logs, spans and descriptors.
	Name string

	// Provides lists the locals a continuing Run guarantees to set.
	Provides []Decl

	// Requires lists the locals that must be guaranteed by earlier stages.
	Requires []Decl

	// payload is set by the validation stages for contract projection.
	payload *schema.Shape
}

// Result is the outcome of a stage: Continue or Halt.
type Result struct {
	err    error
	data   any
	fields []Field
	status int
	halted bool
}

// Continue advances to the next stage, merging fields into locals.
func Continue(fields ...Field) Result {
	return Result{fields: fields}
}

// Halt stops the chain and renders err as an error envelope.
// A nil err is rendered as an internal error.
func Halt(err error) Result {
	if err == nil {
		err = ErrInternal(nil)
	}
	return Result{halted: true, err: err}
}

// HaltWith stops the chain and renders data as a successful envelope.
func HaltWith(status int, data any) Result {
	return Result{halted: true, status: status, data: data}
}

// Halted reports whether the request stops here.
func (r Result) Halted() bool { return r.halted }

// Err returns the halting error, if any.
func (r Result) Err() error { return r.err }

// Fields returns the patch of a continuing result.
func (r Result) Fields() []Field { return r.fields }
