package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
)

// AppError is a coded error. Route failures, lifecycle misuse and
// configuration mistakes are all reported as *AppError.
type AppError struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
	Cause     error          `json:"-"`
}

// New creates an AppError. Retryable follows the code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Retryable: IsRetryableCode(code)}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the cause and returns e.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets one detail and returns e.
func (e *AppError) WithDetail(key string, value any) *AppError {
	return e.WithDetails(map[string]any{key: value})
}

// WithDetails merges details into e and returns e. Existing keys are
// overwritten.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	maps.Copy(e.Details, details)
	return e
}

// Detail looks up one detail.
func (e *AppError) Detail(key string) (any, bool) {
	v, ok := e.Details[key]
	return v, ok
}

// Clone returns a copy of e with its own details map. The cause is shared.
// Use it before adding context to an error that other exchanges may hold.
func (e *AppError) Clone() *AppError {
	cp := *e
	cp.Details = maps.Clone(e.Details)
	return &cp
}

// AsAppError returns the first *AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsAppError reports whether err's chain holds an *AppError.
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// CodeOf returns the code of the first *AppError in err's chain, or
// ErrCodeInternal for foreign errors. It returns "" for a nil error.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether any *AppError in err's chain, including causes of
// outer AppErrors, carries code.
func HasCode(err error, code ErrorCode) bool {
	for {
		appErr, ok := AsAppError(err)
		if !ok {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
}

// Is, As, Join and Unwrap mirror the standard library so callers can import
// a single errors package.
var (
	Is     = stderrors.Is
	As     = stderrors.As
	Join   = stderrors.Join
	Unwrap = stderrors.Unwrap
)
