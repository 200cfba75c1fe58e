package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/dmitrymomot/newsdesk/pkg/sanitizer"
	"github.com/dmitrymomot/newsdesk/pkg/validator"
)

// Source tells where a schema reads its payload from.
type Source int

const (
	SourceBody Source = iota
	SourceQuery
)

// String implements fmt.Stringer.
func (s Source) String() string {
	if s == SourceQuery {
		return "query"
	}
	return "body"
}

var timeType = reflect.TypeFor[time.Time]()

// Field describes one declared payload field.
type Field struct {
	Type       reflect.Type
	Name       string
	GoName     string
	Default    string
	Rules      []string
	Sanitize   []string
	Required   bool
	HasDefault bool

	index      []int
	base       reflect.Type
	checks     []check
	clean      sanitizer.Func
	defaultVal reflect.Value
}

// Optional reports whether the field is a pointer, i.e. nil when absent.
func (f Field) Optional() bool {
	return f.Type.Kind() == reflect.Pointer
}

// Base returns the field type with one level of pointer removed.
func (f Field) Base() reflect.Type {
	return f.base
}

// Shape is the compiled description of a payload type.
type Shape struct {
	Type   reflect.Type
	Fields []Field
	Source Source
	Policy Policy
}

// Field returns the field with the given wire name.
func (s Shape) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Schema parses and validates payloads into T.
type Schema[T any] struct {
	shape Shape
	opts  options
}

// Body compiles a body schema for T. It panics when T's tags are invalid,
// which surfaces contract mistakes at startup.
func Body[T any](opts ...Option) *Schema[T] {
	return mustNew[T](SourceBody, opts)
}

// Query compiles a query-string schema for T. It panics on invalid tags.
func Query[T any](opts ...Option) *Schema[T] {
	return mustNew[T](SourceQuery, opts)
}

// New compiles a schema for T reading from src.
func New[T any](src Source, opts ...Option) (*Schema[T], error) {
	o := options{maxBytes: defaultMaxBytes}
	for _, opt := range opts {
		opt(&o)
	}
	shape, err := compile(reflect.TypeFor[T](), src)
	if err != nil {
		return nil, err
	}
	shape.Policy = o.unknown
	return &Schema[T]{shape: shape, opts: o}, nil
}

func mustNew[T any](src Source, opts []Option) *Schema[T] {
	s, err := New[T](src, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Shape returns the compiled description of T.
func (s *Schema[T]) Shape() Shape {
	return s.shape
}

func compile(t reflect.Type, src Source) (Shape, error) {
	if t.Kind() != reflect.Struct {
		return Shape{}, fmt.Errorf("%w: got %s", ErrNotStruct, t)
	}

	shape := Shape{Type: t, Source: src}
	seen := make(map[string]string)

	for _, sf := range reflect.VisibleFields(t) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		name, skip := wireName(sf, src)
		if skip {
			continue
		}
		if prev, dup := seen[name]; dup {
			return Shape{}, fmt.Errorf("%w: %s.%s and %s.%s share the name %q",
				ErrInvalidTag, t.Name(), prev, t.Name(), sf.Name, name)
		}
		seen[name] = sf.Name

		f, err := compileField(sf, name, src)
		if err != nil {
			return Shape{}, fmt.Errorf("%s.%s: %w", t.Name(), sf.Name, err)
		}
		shape.Fields = append(shape.Fields, f)
	}

	return shape, nil
}

func wireName(sf reflect.StructField, src Source) (string, bool) {
	if src == SourceQuery {
		if tag, ok := sf.Tag.Lookup("query"); ok {
			name, _, _ := strings.Cut(tag, ",")
			if name == "-" {
				return "", true
			}
			if name != "" {
				return name, false
			}
		}
	}
	tag, ok := sf.Tag.Lookup("json")
	if !ok {
		return sf.Name, false
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return "", true
	}
	if name == "" {
		return sf.Name, false
	}
	return name, false
}

func compileField(sf reflect.StructField, name string, src Source) (Field, error) {
	f := Field{
		Type:   sf.Type,
		Name:   name,
		GoName: sf.Name,
		index:  sf.Index,
		base:   sf.Type,
	}
	if f.base.Kind() == reflect.Pointer {
		f.base = f.base.Elem()
	}

	if src == SourceQuery && !queryType(f.base) {
		return Field{}, fmt.Errorf("%w: %s cannot be read from a query string", ErrUnsupportedType, sf.Type)
	}

	checks, required, rules, err := parseRules(sf.Tag.Get("validate"), f.base)
	if err != nil {
		return Field{}, err
	}
	f.checks, f.Required, f.Rules = checks, required, rules

	if tag := sf.Tag.Get("sanitize"); tag != "" {
		if !isStringish(f.base) {
			return Field{}, fmt.Errorf("%w: sanitize on non-string %s", ErrInvalidTag, sf.Type)
		}
		f.Sanitize = strings.Split(tag, ",")
		clean, err := sanitizer.Chain(f.Sanitize...)
		if err != nil {
			return Field{}, fmt.Errorf("%w: %w", ErrInvalidTag, err)
		}
		f.clean = clean
	}

	if def, ok := sf.Tag.Lookup("default"); ok {
		if f.Required {
			return Field{}, fmt.Errorf("%w: required field cannot have a default", ErrInvalidTag)
		}
		v := reflect.New(f.base).Elem()
		if err := setFromStrings(v, splitDefault(def, f.base)); err != nil {
			return Field{}, fmt.Errorf("%w: default %q: %w", ErrInvalidTag, def, err)
		}
		f.Default, f.HasDefault, f.defaultVal = def, true, v
	}

	return f, nil
}

func splitDefault(def string, t reflect.Type) []string {
	if t.Kind() == reflect.Slice {
		return strings.Split(def, ",")
	}
	return []string{def}
}

func isStringish(t reflect.Type) bool {
	if t.Kind() == reflect.String {
		return true
	}
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.String
}

func queryType(t reflect.Type) bool {
	if t == timeType {
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Slice:
		return t.Elem().Kind() == reflect.String
	}
	return false
}

// validate sanitizes and checks a decoded field value. v is the struct field.
func (f Field) validate(v reflect.Value) *validator.ValidationError {
	if f.Optional() {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	if f.clean != nil {
		switch v.Kind() {
		case reflect.String:
			v.SetString(f.clean(v.String()))
		case reflect.Slice:
			for i := range v.Len() {
				v.Index(i).SetString(f.clean(v.Index(i).String()))
			}
		}
	}

	if f.Required {
		if r := requiredRule(f.Name, v); !r.Check() {
			return &r.Error
		}
	}
	for _, c := range f.checks {
		if r := c(f.Name, v); !r.Check() {
			return &r.Error
		}
	}
	return nil
}

func missing(name string) validator.ValidationError {
	return validator.RequiredString(name, "").Error
}

func invalidType(name string, t reflect.Type) validator.ValidationError {
	return validator.ValidationError{
		Field:   name,
		Message: "must be a valid " + typeLabel(t),
	}
}

func unknownField(name string) validator.ValidationError {
	return validator.ValidationError{
		Field:   name,
		Message: "unknown field",
	}
}

func typeLabel(t reflect.Type) string {
	if t == timeType {
		return "RFC 3339 timestamp"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.Struct, reflect.Map:
		return "object"
	}
	return t.Kind().String()
}
