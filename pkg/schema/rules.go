package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/dmitrymomot/newsdesk/pkg/validator"
)

// check builds the rule for a field value; v is already dereferenced.
type check func(field string, v reflect.Value) validator.Rule

func parseRules(tag string, t reflect.Type) ([]check, bool, []string, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, false, nil, nil
	}

	var (
		checks   []check
		rules    []string
		required bool
	)
	for raw := range strings.SplitSeq(tag, ";") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		rules = append(rules, raw)
		name, arg, _ := strings.Cut(raw, ":")

		if name == "required" {
			required = true
			continue
		}
		c, err := buildCheck(name, arg, t)
		if err != nil {
			return nil, false, nil, fmt.Errorf("%w: %q: %w", ErrInvalidTag, raw, err)
		}
		checks = append(checks, c)
	}
	return checks, required, rules, nil
}

func buildCheck(name, arg string, t reflect.Type) (check, error) {
	switch name {
	case "min", "max", "len":
		return sizeCheck(name, arg, t)
	case "oneof":
		if t.Kind() != reflect.String {
			return nil, fmt.Errorf("oneof needs a string, got %s", t)
		}
		allowed := strings.Split(arg, "|")
		if arg == "" {
			return nil, fmt.Errorf("oneof needs at least one value")
		}
		return func(field string, v reflect.Value) validator.Rule {
			return validator.OneOf(field, v.String(), allowed...)
		}, nil
	case "uuid", "url", "email":
		if t.Kind() != reflect.String {
			return nil, fmt.Errorf("%s needs a string, got %s", name, t)
		}
		fn := map[string]func(string, string) validator.Rule{
			"uuid":  validator.UUID,
			"url":   validator.URL,
			"email": validator.Email,
		}[name]
		return func(field string, v reflect.Value) validator.Rule {
			return fn(field, v.String())
		}, nil
	}
	return nil, fmt.Errorf("unknown rule %q", name)
}

func sizeCheck(name, arg string, t reflect.Type) (check, error) {
	switch t.Kind() {
	case reflect.String:
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, err
		}
		rule := map[string]func(string, string, int) validator.Rule{
			"min": validator.MinLenString,
			"max": validator.MaxLenString,
			"len": validator.LenString,
		}[name]
		return func(field string, v reflect.Value) validator.Rule {
			return rule(field, v.String(), n)
		}, nil

	case reflect.Slice, reflect.Map:
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, err
		}
		return func(field string, v reflect.Value) validator.Rule {
			items := make([]struct{}, v.Len())
			switch name {
			case "min":
				return validator.MinLenSlice(field, items, n)
			case "max":
				return validator.MaxLenSlice(field, items, n)
			default:
				return validator.LenSlice(field, items, n)
			}
		}, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if name == "len" {
			return nil, fmt.Errorf("len does not apply to %s", t)
		}
		n, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, err
		}
		return func(field string, v reflect.Value) validator.Rule {
			if name == "min" {
				return validator.MinNum(field, v.Int(), n)
			}
			return validator.MaxNum(field, v.Int(), n)
		}, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if name == "len" {
			return nil, fmt.Errorf("len does not apply to %s", t)
		}
		n, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return nil, err
		}
		return func(field string, v reflect.Value) validator.Rule {
			if name == "min" {
				return validator.MinNum(field, v.Uint(), n)
			}
			return validator.MaxNum(field, v.Uint(), n)
		}, nil

	case reflect.Float32, reflect.Float64:
		if name == "len" {
			return nil, fmt.Errorf("len does not apply to %s", t)
		}
		n, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, err
		}
		return func(field string, v reflect.Value) validator.Rule {
			if name == "min" {
				return validator.MinNum(field, v.Float(), n)
			}
			return validator.MaxNum(field, v.Float(), n)
		}, nil
	}
	return nil, fmt.Errorf("%s does not apply to %s", name, t)
}

func requiredRule(field string, v reflect.Value) validator.Rule {
	switch v.Kind() {
	case reflect.String:
		return validator.RequiredString(field, v.String())
	case reflect.Slice, reflect.Map:
		return validator.RequiredSlice(field, make([]struct{}, v.Len()))
	}
	return validator.Rule{Check: func() bool { return true }}
}
