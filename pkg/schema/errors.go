package schema

import (
	"errors"
	"fmt"
)

// Error codes for structured error reporting.
const (
	ErrCodeParse    = "PARSE_ERROR"
	ErrCodeSchema   = "SCHEMA_ERROR"
	ErrCodeRender   = "RENDER_ERROR"
	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeIO       = "IO_ERROR"
	ErrCodeConfig   = "CONFIG_ERROR"
)

// ErrInvalidFormat is returned when a parsed document carries no usable
// steps collection under either accepted shape.
var ErrInvalidFormat = NewError(ErrCodeSchema, "invalid format")

// Error is the structured error type for all floxyview operations.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by code, so a wrapped schema error satisfies
// errors.Is(err, ErrInvalidFormat).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new Error.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewErrorf creates a new Error with a formatted message.
func NewErrorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause attaches an underlying cause.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
