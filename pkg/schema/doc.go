// Package schema compiles request payload contracts from Go struct tags.
//
// A Schema is built once, at startup, from a struct type. The same struct is
// the server's parser and the declared type of the generated client, so the
// two never drift apart.
//
//	type CreateGalleryInput struct {
//		Title string `json:"title" validate:"required;max:200" sanitize:"trim"`
//		Type  string `json:"type" validate:"required;oneof:photo|video|illustration"`
//	}
//
//	s := schema.Body[CreateGalleryInput](schema.Reject())
//	in, err := s.DecodeBody(r.Body)
//
// Supported tags:
//
//   - json:"name" names a body field, query:"name" a query parameter
//     (falling back to the json name).
//   - validate:"required;min:N;max:N;len:N;oneof:a|b;uuid;url;email"
//   - default:"value" is applied when an optional field is absent.
//   - sanitize:"trim,strip_html" runs named sanitizer operations on strings
//     before validation.
//
// Decoding reports every failing field as validator.ValidationErrors, one
// entry per field (the first failing rule), in declaration order. Unknown
// fields are dropped (Strip, default) or reported (Reject).
package schema
