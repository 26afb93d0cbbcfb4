package errors

import "errors"

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Internal message (for logs/telemetry)
	Metadata map[string]string // Additional context, e.g. offending node id
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithMetadata creates a domain error with metadata describing the offending input.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Detail returns a copy of sentinel carrying metadata. The copy still matches
// sentinel through errors.Is.
func Detail(sentinel *Error, metadata map[string]string) *Error {
	return &Error{
		Code:     sentinel.Code,
		Message:  sentinel.Message,
		Metadata: metadata,
		Cause:    sentinel.Cause,
	}
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// CategoryOf returns the taxonomy category of err, walking the chain until a
// categorised code is found.
func CategoryOf(err error) Category {
	for err != nil {
		var appErr *Error
		if !errors.As(err, &appErr) {
			return CategoryUnknown
		}
		if category := appErr.Code.Category(); category != CategoryUnknown {
			return category
		}
		err = appErr.Cause
	}
	return CategoryUnknown
}

// IsValidation reports whether err is a validation rejection.
func IsValidation(err error) bool { return CategoryOf(err) == CategoryValidation }

// IsStructural reports whether err is a structural rejection.
func IsStructural(err error) bool { return CategoryOf(err) == CategoryStructural }

// IsNotFound reports whether err references a missing node or record.
func IsNotFound(err error) bool { return CategoryOf(err) == CategoryNotFound }

// IsDeserialization reports whether err describes malformed persisted input.
func IsDeserialization(err error) bool { return CategoryOf(err) == CategoryDeserialization }

// IsIO reports whether err describes a read or write failure.
func IsIO(err error) bool { return CategoryOf(err) == CategoryIO }
