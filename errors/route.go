package errors

import "fmt"

// Configuration reports a malformed route, context or config file.
func Configuration(format string, args ...any) *AppError {
	return Newf(ErrCodeConfiguration, format, args...)
}

// Lifecycle reports an operation the context's current state does not allow.
func Lifecycle(op, state string) *AppError {
	return New(ErrCodeLifecycle, fmt.Sprintf("cannot %s a context in state %s", op, state)).
		WithDetails(map[string]any{"operation": op, "state": state})
}

// FetchFailed reports a failed enrich call. status is 0 when no response
// arrived.
func FetchFailed(url string, status int, cause error) *AppError {
	msg := "fetch " + url + " failed"
	if status > 0 {
		msg = fmt.Sprintf("%s with status %d", msg, status)
	}
	return New(ErrCodeFetch, msg).
		WithDetails(map[string]any{"url": url, "status": status}).
		WithCause(cause)
}

// StageFailed reports an error returned by a stage function.
func StageFailed(stage string, cause error) *AppError {
	return New(ErrCodeStage, "stage "+stage+" failed").WithDetail("stage", stage).WithCause(cause)
}

// ShutdownTimeout reports a drain deadline that elapsed with abandoned
// exchanges still in flight.
func ShutdownTimeout(abandoned int64) *AppError {
	return Newf(ErrCodeShutdownTimeout, "shutdown deadline elapsed with %d exchanges in flight", abandoned).
		WithDetail("abandoned", abandoned)
}

// Validation reports invalid input. Field-level failures go in the
// "fields" detail.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message)
}

// InvalidInput reports one invalid field.
func InvalidInput(field, reason string) *AppError {
	err := New(ErrCodeInvalidInput, "invalid input: "+reason)
	if field != "" {
		err.WithDetail("field", field)
	}
	return err
}

// NotFound reports a missing resource.
func NotFound(resource, id string) *AppError {
	return Newf(ErrCodeNotFound, "%s %q not found", resource, id).
		WithDetails(map[string]any{"resource": resource, "id": id})
}

// Internal wraps an unexpected error.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "an unexpected error occurred").WithCause(cause)
}

func IsConfiguration(err error) bool   { return HasCode(err, ErrCodeConfiguration) }
func IsLifecycle(err error) bool       { return HasCode(err, ErrCodeLifecycle) }
func IsFetch(err error) bool           { return HasCode(err, ErrCodeFetch) }
func IsStage(err error) bool           { return HasCode(err, ErrCodeStage) }
func IsShutdownTimeout(err error) bool { return HasCode(err, ErrCodeShutdownTimeout) }
