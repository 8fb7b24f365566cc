package errors

// ErrorCode is the machine-readable kind of an AppError.
type ErrorCode string

const (
	// Returned synchronously by Build, Start and the config loader.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeLifecycle     ErrorCode = "LIFECYCLE_ERROR"

	// Scoped to one exchange. ErrCodeFetch covers network errors, non-2xx
	// responses and request timeouts.
	ErrCodeFetch ErrorCode = "FETCH_FAILED"
	ErrCodeStage ErrorCode = "STAGE_FAILED"

	ErrCodeShutdownTimeout ErrorCode = "SHUTDOWN_TIMEOUT"

	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeTimeout      ErrorCode = "TIMEOUT"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// IsRetryableCode reports whether a caller may retry an operation that
// failed with code.
func IsRetryableCode(code ErrorCode) bool {
	return code == ErrCodeFetch || code == ErrCodeTimeout
}
