package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"slices"

	"github.com/dmitrymomot/newsdesk/pkg/validator"
)

// BodyField is the field name used for errors about the body as a whole.
const BodyField = "body"

// DecodeBody reads a JSON object from r into T. Validation failures are
// returned as validator.ValidationErrors listing every failing field.
// An empty body is treated as an empty object.
func (s *Schema[T]) DecodeBody(r io.Reader) (T, error) {
	var zero T

	data, err := io.ReadAll(io.LimitReader(r, s.opts.maxBytes+1))
	if err != nil {
		return zero, validator.ValidationErrors{bodyError("could not read request body")}
	}
	if int64(len(data)) > s.opts.maxBytes {
		return zero, validator.ValidationErrors{bodyError(fmt.Sprintf("must not exceed %d bytes", s.opts.maxBytes))}
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		data = []byte("{}")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return zero, validator.ValidationErrors{bodyError("must be a JSON object")}
	}

	var (
		out  T
		errs validator.ValidationErrors
	)
	rv := reflect.ValueOf(&out).Elem()

	for _, f := range s.shape.Fields {
		fv := rv.FieldByIndex(f.index)
		msg, ok := raw[f.Name]
		if !ok || bytes.Equal(msg, []byte("null")) {
			switch {
			case f.Required:
				errs = append(errs, missing(f.Name))
			case f.HasDefault:
				f.applyDefault(fv)
			}
			continue
		}
		if err := json.Unmarshal(msg, fv.Addr().Interface()); err != nil {
			errs = append(errs, invalidType(f.Name, f.base))
			continue
		}
		if e := f.validate(fv); e != nil {
			errs = append(errs, *e)
		}
	}

	if s.opts.unknown == PolicyReject {
		errs = append(errs, s.unknown(mapKeys(raw))...)
	}

	if len(errs) > 0 {
		return zero, errs
	}
	return out, nil
}

func (s *Schema[T]) unknown(keys []string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	slices.Sort(keys)
	for _, k := range keys {
		if _, ok := s.shape.Field(k); !ok {
			errs = append(errs, unknownField(k))
		}
	}
	return errs
}

func (f Field) applyDefault(fv reflect.Value) {
	val := f.defaultVal
	if val.Kind() == reflect.Slice {
		val = reflect.AppendSlice(reflect.MakeSlice(val.Type(), 0, val.Len()), val)
	}
	if f.Optional() {
		p := reflect.New(f.base)
		p.Elem().Set(val)
		fv.Set(p)
		return
	}
	fv.Set(val)
}

func bodyError(message string) validator.ValidationError {
	return validator.ValidationError{
		Field:   BodyField,
		Message: message,
	}
}

func mapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
