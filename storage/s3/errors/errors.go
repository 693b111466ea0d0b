// Package errors provides error types and classification for S3 operations.
package errors

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"

	perrors "github.com/input-output-hk/catalyst-forge-spa/errors"
	"github.com/input-output-hk/catalyst-forge-spa/storage"
)

// Error represents an S3 operation error with context about the operation that failed.
// It wraps the underlying AWS SDK error with additional context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "putObject", "putBucketWebsite")
	Op string

	// Bucket is the S3 bucket name (if applicable)
	Bucket string

	// Key is the S3 object key (if applicable)
	Key string

	// Err is the underlying error from the AWS SDK or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("s3.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("s3.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("s3.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("s3.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// NewError creates a new Error with the given operation and underlying error.
// AWS API errors are classified so the sentinels below match with errors.Is.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: classify(err),
	}
}

// Sentinel errors for common S3 operation failures. They match any
// classified error carrying the same code.
var (
	// ErrBucketNotFound indicates that the target bucket does not exist
	ErrBucketNotFound = perrors.New(perrors.CodeNotFound, "s3: bucket not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = perrors.New(perrors.CodeForbidden, "s3: access denied")

	// ErrInvalidCredentials indicates that the AWS credentials are invalid or expired
	ErrInvalidCredentials = perrors.New(perrors.CodeUnauthorized, "s3: invalid credentials")

	// ErrTooManyRequests indicates that the request rate is too high
	ErrTooManyRequests = perrors.New(perrors.CodeRateLimit, "s3: too many requests")

	// ErrUnavailable indicates a transient service-side failure
	ErrUnavailable = perrors.New(perrors.CodeUnavailable, "s3: service unavailable")
)

var sentinels = map[perrors.ErrorCode]*perrors.PlatformError{
	perrors.CodeNotFound:     ErrBucketNotFound,
	perrors.CodeForbidden:    ErrAccessDenied,
	perrors.CodeUnauthorized: ErrInvalidCredentials,
	perrors.CodeRateLimit:    ErrTooManyRequests,
	perrors.CodeUnavailable:  ErrUnavailable,
}

// IsBucketNotFound checks if an error indicates that a bucket was not found.
func IsBucketNotFound(err error) bool {
	return errors.Is(err, ErrBucketNotFound)
}

// IsAccessDenied checks if an error indicates access was denied.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsInvalidCredentials checks if an error indicates rejected credentials.
func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

// classify wraps AWS API errors in a coded error so callers can tell
// permission problems from throttling without inspecting SDK types.
func classify(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	sentinel, ok := sentinels[storage.ClassifyAPICode(apiErr.ErrorCode())]
	if !ok {
		return err
	}
	return perrors.Wrap(err, sentinel.Code, sentinel.Message)
}
