package storage

import "fmt"

// ValidationError is a rejected upload. Field is the multipart field name.
type ValidationError struct {
	Field   string
	Code    string
	Message string
}

// Error implements error.
func (e *ValidationError) Error() string { return e.Message }

const (
	CodeFileTooLarge = "file_too_large"
	CodeInvalidMIME  = "invalid_mime"
	CodeEmptyFile    = "empty_file"
)

// Rule checks an upload's size and sniffed content type.
type Rule func(size int64, mimeType string) *ValidationError

// Validate returns the first failing rule's error.
func Validate(size int64, mimeType string, rules ...Rule) error {
	for _, rule := range rules {
		if err := rule(size, mimeType); err != nil {
			return err
		}
	}
	return nil
}

// MaxSize rejects files larger than n bytes.
func MaxSize(n int64) Rule {
	return func(size int64, _ string) *ValidationError {
		if size <= n {
			return nil
		}
		return &ValidationError{
			Field:   "file",
			Code:    CodeFileTooLarge,
			Message: fmt.Sprintf("file size %d exceeds limit of %d bytes", size, n),
		}
	}
}

// NotEmpty rejects zero-byte files.
func NotEmpty() Rule {
	return func(size int64, _ string) *ValidationError {
		if size > 0 {
			return nil
		}
		return &ValidationError{Field: "file", Code: CodeEmptyFile, Message: "file is empty"}
	}
}

// AllowedTypes accepts only content types matching patterns ("image/*" works).
func AllowedTypes(patterns ...string) Rule {
	return func(_ int64, mimeType string) *ValidationError {
		if matchesMIME(mimeType, patterns) {
			return nil
		}
		return &ValidationError{
			Field:   "file",
			Code:    CodeInvalidMIME,
			Message: fmt.Sprintf("file type %q is not allowed", mimeType),
		}
	}
}
