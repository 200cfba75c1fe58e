package internal

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/newsdesk/pkg/validator"
)

// ErrorKind is the machine-readable category of a failed request.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation_error"
	KindAuthentication ErrorKind = "authentication_error"
	KindAuthorization  ErrorKind = "authorization_error"
	KindNotFound       ErrorKind = "not_found"
	KindInternal       ErrorKind = "internal_error"
)

const internalMessage = "internal server error"

var (
	// ErrLocalsConflict is returned when a patch redefines a field with another type.
	ErrLocalsConflict = errors.New("newsdesk: locals type conflict")

	// ErrUndeclaredLocal is returned when a stage continues with a field it did not declare.
	ErrUndeclaredLocal = errors.New("newsdesk: undeclared local")

	// ErrMissingLocal is returned when a stage continues without a field it declared.
	ErrMissingLocal = errors.New("newsdesk: declared local not provided")

	// ErrDuplicateRoute is returned by Tree.Freeze for each (method, path) registered twice.
	ErrDuplicateRoute = errors.New("newsdesk: duplicate route")
)

// StatusCode maps the kind to its HTTP status.
func (k ErrorKind) StatusCode() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a structured request failure with everything needed for rendering
// the error envelope. Err is kept for logging and never exposed to callers.
type Error struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Kind selects the status code and the envelope's error kind.
	Kind ErrorKind

	// Message is the user-facing error message.
	Message string

	// Fields lists failing fields for validation errors.
	Fields []FieldError
}

// Error implements error.
func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindInternal {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status for the kind.
func (e *Error) StatusCode() int {
	return e.Kind.StatusCode()
}

// ErrorOption configures an Error.
type ErrorOption func(*Error)

// WithCause attaches the underlying error for server-side logging.
func WithCause(err error) ErrorOption {
	return func(e *Error) {
		e.Err = err
	}
}

func newError(kind ErrorKind, message string, opts []ErrorOption) *Error {
	e := &Error{Kind: kind, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ErrValidation reports every failing field at once.
func ErrValidation(fields []FieldError, opts ...ErrorOption) *Error {
	e := newError(KindValidation, "validation failed", opts)
	e.Fields = fields
	return e
}

// ErrUnauthenticated returns an authentication_error (401).
func ErrUnauthenticated(message string, opts ...ErrorOption) *Error {
	if message == "" {
		message = "authentication required"
	}
	return newError(KindAuthentication, message, opts)
}

// ErrForbidden returns an authorization_error (403).
func ErrForbidden(message string, opts ...ErrorOption) *Error {
	if message == "" {
		message = "access denied"
	}
	return newError(KindAuthorization, message, opts)
}

// ErrNotFound returns a not_found error (404).
func ErrNotFound(message string, opts ...ErrorOption) *Error {
	if message == "" {
		message = "not found"
	}
	return newError(KindNotFound, message, opts)
}

// ErrInternal wraps err for logging. The rendered message is always generic.
func ErrInternal(err error) *Error {
	return &Error{Kind: KindInternal, Message: internalMessage, Err: err}
}

// IsError reports whether err carries an *Error.
func IsError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// AsError extracts the *Error from an error chain.
// Returns nil if there is none.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// toError normalizes any error into a renderable *Error. Unknown errors
// become internal errors so their details never reach the caller.
func toError(err error) *Error {
	if e := AsError(err); e != nil {
		if e.Kind == "" || e.Kind == KindInternal {
			return ErrInternal(err)
		}
		return e
	}
	if verrs := validator.ExtractValidationErrors(err); len(verrs) > 0 {
		fields := make([]FieldError, 0, len(verrs))
		for _, ve := range verrs {
			fields = append(fields, FieldError{Field: ve.Field, Message: ve.Message})
		}
		return ErrValidation(fields, WithCause(err))
	}
	return ErrInternal(err)
}

// Envelope is the wire format of every framework response.
type Envelope struct {
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
	OK    bool       `json:"ok"`
}

// ErrorBody is the error part of an Envelope.
type ErrorBody struct {
	Kind    ErrorKind    `json:"kind"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

func errorEnvelope(e *Error) Envelope {
	return Envelope{
		OK: false,
		Error: &ErrorBody{
			Kind:    e.Kind,
			Message: e.Message,
			Fields:  e.Fields,
		},
	}
}
