package internal

import (
	"fmt"
	"reflect"
	"sync"
)

// Well-known field names introduced by the built-in stages.
const (
	FieldInput = "input"
	FieldQuery = "query"
	FieldUser  = "user"
)

// Decl declares a named, typed field in request locals.
type Decl struct {
	Type reflect.Type
	Name string
}

// String renders the declaration as "name:type".
func (d Decl) String() string {
	return fmt.Sprintf("%s(%s)", d.Name, d.Type)
}

// Field is a single entry of a Continue patch.
type Field struct {
	value any
	typ   reflect.Type
	name  string
}

// Name returns the local the field sets.
func (f Field) Name() string { return f.name }

// Key is a typed handle to a locals field.
type Key[T any] struct {
	name string
}

// NewKey creates a handle for the field called name holding a T.
func NewKey[T any](name string) Key[T] {
	if name == "" {
		panic("newsdesk: key name must not be empty")
	}
	return Key[T]{name: name}
}

// Name returns the local's name.
func (k Key[T]) Name() string { return k.name }

// Decl returns the declaration used in Stage.Provides and Stage.Requires.
func (k Key[T]) Decl() Decl {
	return Decl{Name: k.name, Type: reflect.TypeFor[T]()}
}

// Field builds a patch entry for Continue.
func (k Key[T]) Field(v T) Field {
	return Field{name: k.name, typ: reflect.TypeFor[T](), value: v}
}

// Get reads the field from the request locals.
func (k Key[T]) Get(c Context) (T, bool) {
	var zero T
	v, ok := c.Locals().get(k.name)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// MustGet reads a field that the chain guarantees. A missing field means the
// chain was assembled around the build-time checks; the engine answers with an
// internal error instead of running the handler without it.
func (k Key[T]) MustGet(c Context) T {
	v, ok := k.Get(c)
	if !ok {
		panic(fmt.Errorf("newsdesk: required local %q of type %s is missing", k.name, reflect.TypeFor[T]()))
	}
	return v
}

// Locals is the per-request, append-only field store.
type Locals struct {
	values map[string]any
	types  map[string]reflect.Type
	mu     sync.RWMutex
}

func newLocals() *Locals {
	return &Locals{
		values: make(map[string]any),
		types:  make(map[string]reflect.Type),
	}
}

func (l *Locals) get(name string) (any, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.values[name]
	return v, ok
}

func (l *Locals) typeOf(name string) (reflect.Type, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.types[name]
	return t, ok
}

// Has reports whether the field is present.
func (l *Locals) Has(name string) bool {
	_, ok := l.get(name)
	return ok
}

// Names returns the names of every present field.
func (l *Locals) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.values))
	for name := range l.values {
		names = append(names, name)
	}
	return names
}

// merge applies a patch. Re-introducing a field with the same type replaces
// its value; a different type is a contract violation and nothing is applied.
func (l *Locals) merge(fields []Field) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, f := range fields {
		if prev, ok := l.types[f.name]; ok && prev != f.typ {
			return fmt.Errorf("%w: %q is %s, patch has %s", ErrLocalsConflict, f.name, prev, f.typ)
		}
	}
	for _, f := range fields {
		l.values[f.name] = f.value
		l.types[f.name] = f.typ
	}
	return nil
}
