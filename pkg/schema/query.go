package schema

import (
	"errors"
	"net/url"
	"reflect"
	"strconv"
	"time"

	"github.com/dmitrymomot/newsdesk/pkg/validator"
)

var errNoValue = errors.New("no value")

// DecodeQuery parses query parameters into T. Empty parameters count as
// absent, so defaults apply to them.
func (s *Schema[T]) DecodeQuery(values url.Values) (T, error) {
	var (
		zero T
		out  T
		errs validator.ValidationErrors
	)
	rv := reflect.ValueOf(&out).Elem()

	for _, f := range s.shape.Fields {
		fv := rv.FieldByIndex(f.index)
		vals := nonEmpty(values[f.Name])
		if len(vals) == 0 {
			switch {
			case f.Required:
				errs = append(errs, missing(f.Name))
			case f.HasDefault:
				f.applyDefault(fv)
			}
			continue
		}

		target := fv
		if f.Optional() {
			target = reflect.New(f.base).Elem()
		}
		if err := setFromStrings(target, vals); err != nil {
			errs = append(errs, invalidType(f.Name, f.base))
			continue
		}
		if f.Optional() {
			fv.Set(target.Addr())
		}
		if e := f.validate(fv); e != nil {
			errs = append(errs, *e)
		}
	}

	if s.opts.unknown == PolicyReject {
		errs = append(errs, s.unknown(mapKeys(values))...)
	}

	if len(errs) > 0 {
		return zero, errs
	}
	return out, nil
}

func nonEmpty(vals []string) []string {
	out := vals[:0:0]
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// setFromStrings converts raw query values into v, which must be addressable
// and of a type accepted by queryType.
func setFromStrings(v reflect.Value, vals []string) error {
	if len(vals) == 0 {
		return errNoValue
	}
	raw := vals[0]

	if v.Type() == timeType {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(t))
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(raw, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(n)
	case reflect.Slice:
		s := reflect.MakeSlice(v.Type(), len(vals), len(vals))
		for i, raw := range vals {
			s.Index(i).SetString(raw)
		}
		v.Set(s)
	default:
		return ErrUnsupportedType
	}
	return nil
}
