package schema

import "errors"

var (
	ErrInvalidTag      = errors.New("schema: invalid tag")
	ErrUnsupportedType = errors.New("schema: unsupported type")
	ErrNotStruct       = errors.New("schema: type must be a struct")
)
