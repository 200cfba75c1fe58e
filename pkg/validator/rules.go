package validator

import (
	"fmt"
	"net/mail"
	"net/url"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Number is the set of numeric types accepted by the numeric rules.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

func newRule(field string, ok bool, message string) Rule {
	return Rule{
		Check: func() bool { return ok },
		Error: ValidationError{Field: field, Message: message},
	}
}

// RequiredString fails on an empty string.
func RequiredString(field, v string) Rule {
	return newRule(field, strings.TrimSpace(v) != "", "field is required")
}

// MinLenString checks the rune count is at least minLen.
func MinLenString(field, v string, minLen int) Rule {
	return newRule(field, utf8.RuneCountInString(v) >= minLen, fmt.Sprintf("must be at least %d characters long", minLen))
}

// MaxLenString checks the rune count is at most maxLen.
func MaxLenString(field, v string, maxLen int) Rule {
	return newRule(field, utf8.RuneCountInString(v) <= maxLen, fmt.Sprintf("must not exceed %d characters", maxLen))
}

// LenString checks the exact rune count.
func LenString(field, v string, length int) Rule {
	return newRule(field, utf8.RuneCountInString(v) == length, fmt.Sprintf("must be exactly %d characters long", length))
}

// RequiredSlice fails on an empty slice.
func RequiredSlice[T any](field string, v []T) Rule {
	return newRule(field, len(v) > 0, "field is required")
}

// MinLenSlice checks the slice has at least minItems.
func MinLenSlice[T any](field string, v []T, minItems int) Rule {
	return newRule(field, len(v) >= minItems, fmt.Sprintf("must contain at least %d items", minItems))
}

// MaxLenSlice checks the slice has at most maxItems.
func MaxLenSlice[T any](field string, v []T, maxItems int) Rule {
	return newRule(field, len(v) <= maxItems, fmt.Sprintf("must not contain more than %d items", maxItems))
}

// LenSlice checks the exact item count.
func LenSlice[T any](field string, v []T, count int) Rule {
	return newRule(field, len(v) == count, fmt.Sprintf("must contain exactly %d items", count))
}

// RequiredMap fails on an empty map.
func RequiredMap[K comparable, V any](field string, m map[K]V) Rule {
	return newRule(field, len(m) > 0, "field is required")
}

// RequiredNum fails on zero.
func RequiredNum[T Number](field string, v T) Rule {
	return newRule(field, v != 0, "field is required")
}

// MinNum checks v is at least minVal.
func MinNum[T Number](field string, v, minVal T) Rule {
	return newRule(field, v >= minVal, fmt.Sprintf("must be at least %v", minVal))
}

// MaxNum checks v is at most maxVal.
func MaxNum[T Number](field string, v, maxVal T) Rule {
	return newRule(field, v <= maxVal, fmt.Sprintf("must not exceed %v", maxVal))
}

// OneOf checks that v is one of the allowed values.
func OneOf(field, v string, allowed ...string) Rule {
	list := strings.Join(allowed, ", ")
	return newRule(field, slices.Contains(allowed, v), "must be one of: "+list)
}

// UUID checks that v parses as a UUID in canonical form.
func UUID(field, v string) Rule {
	_, err := uuid.Parse(v)
	ok := err == nil && len(v) == 36
	return newRule(field, ok, "must be a valid UUID")
}

// URL checks that v is an absolute http or https URL.
func URL(field, v string) Rule {
	ok := false
	if u, err := url.ParseRequestURI(v); err == nil {
		ok = (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	}
	return newRule(field, ok, "must be a valid URL")
}

// Email checks that v is a bare e-mail address.
func Email(field, v string) Rule {
	addr, err := mail.ParseAddress(v)
	ok := err == nil && addr.Address == v
	return newRule(field, ok, "must be a valid email address")
}
