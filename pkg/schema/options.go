package schema

const defaultMaxBytes int64 = 1 << 20

// Policy decides what happens to fields the schema does not declare.
type Policy int

const (
	// PolicyStrip drops unknown fields.
	PolicyStrip Policy = iota
	// PolicyReject reports each unknown field as a validation error.
	PolicyReject
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	if p == PolicyReject {
		return "reject"
	}
	return "strip"
}

type options struct {
	maxBytes int64
	unknown  Policy
}

// Option configures a Schema.
type Option func(*options)

// Strip drops unknown fields. This is the default.
func Strip() Option {
	return func(o *options) { o.unknown = PolicyStrip }
}

// Reject reports unknown fields as validation errors.
func Reject() Option {
	return func(o *options) { o.unknown = PolicyReject }
}

// MaxBytes bounds the request body size. Defaults to 1 MiB.
func MaxBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBytes = n
		}
	}
}
