package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"sort"
	"strings"
)

// PlatformError is an error carrying a code, a human-readable message,
// optional key/value context and an optional underlying cause.
type PlatformError struct {
	// Code classifies the error.
	Code ErrorCode

	// Message describes what failed.
	Message string

	// Context holds additional structured details (paths, buckets, steps).
	Context map[string]interface{}

	// Cause is the wrapped error, if any.
	Cause error
}

// Error implements the error interface.
func (e *PlatformError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Context[k])
		}
		b.WriteString(")")
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

// Unwrap returns the underlying cause for error chaining support.
func (e *PlatformError) Unwrap() error {
	return e.Cause
}

// Is matches another *PlatformError by code, so sentinel values such as
// &PlatformError{Code: CodeTransferFailed} work with errors.Is.
func (e *PlatformError) Is(target error) bool {
	var t *PlatformError
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithContext returns a copy of the error with an extra context entry.
func (e *PlatformError) WithContext(key string, value interface{}) *PlatformError {
	cp := *e
	cp.Context = make(map[string]interface{}, len(e.Context)+1)
	maps.Copy(cp.Context, e.Context)
	cp.Context[key] = value
	return &cp
}

// New creates a new PlatformError with the given code and message.
func New(code ErrorCode, message string) *PlatformError {
	return &PlatformError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new PlatformError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *PlatformError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err with a code and message. It returns nil when err is nil.
func Wrap(err error, code ErrorCode, message string) *PlatformError {
	if err == nil {
		return nil
	}
	return &PlatformError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapWithContext wraps err with a code, message and structured context.
// It returns nil when err is nil.
func WrapWithContext(err error, code ErrorCode, message string, ctx map[string]interface{}) *PlatformError {
	if err == nil {
		return nil
	}
	return &PlatformError{
		Code:    code,
		Message: message,
		Context: ctx,
		Cause:   err,
	}
}

// GetCode returns the code of the outermost PlatformError in err's chain,
// or CodeUnknown if there is none.
func GetCode(err error) ErrorCode {
	var pe *PlatformError
	if stderrors.As(err, &pe) {
		return pe.Code
	}
	return CodeUnknown
}

// RootCode returns the code of the innermost PlatformError in err's chain,
// which is the most specific classification available, or CodeUnknown if
// there is none.
func RootCode(err error) ErrorCode {
	code := CodeUnknown
	for err != nil {
		if pe, ok := err.(*PlatformError); ok {
			code = pe.Code
		}
		err = stderrors.Unwrap(err)
	}
	return code
}

// HasCode reports whether any PlatformError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, &PlatformError{Code: code})
}

// As is a re-export of the standard library errors.As.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
