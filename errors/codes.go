// Package errors provides the structured error handling used across spadeploy.
// It extends Go's standard error handling with string error codes, retry
// classification and context preservation.
package errors

// ErrorCode represents a specific error condition.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Resource errors.

	// CodeNotFound indicates a requested resource does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// Permission errors.

	// CodeUnauthorized indicates the request lacks valid authentication credentials.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// CodeForbidden indicates the authenticated principal lacks permission for the operation.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// Infrastructure errors.

	// CodeRateLimit indicates the rate limit has been exceeded.
	CodeRateLimit ErrorCode = "RATE_LIMIT_EXCEEDED"

	// CodeUnavailable indicates the service is temporarily unavailable.
	CodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// Deployment errors.

	// CodeMissingBuildOutput indicates the local build output is absent.
	// It is raised before any remote call is made.
	CodeMissingBuildOutput ErrorCode = "MISSING_BUILD_OUTPUT"

	// CodeTransferFailed indicates a remote storage operation returned a non-success status.
	CodeTransferFailed ErrorCode = "TRANSFER_FAILED"

	// CodeExecutionFailed indicates an external command failed.
	CodeExecutionFailed ErrorCode = "EXECUTION_FAILED"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// Retryable reports whether errors with this code are transient.
// Callers decide whether to act on it; nothing in this package retries.
func (c ErrorCode) Retryable() bool {
	switch c {
	case CodeRateLimit, CodeUnavailable:
		return true
	default:
		return false
	}
}

// String returns the code as a plain string.
func (c ErrorCode) String() string {
	return string(c)
}
