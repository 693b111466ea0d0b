package storage

import "github.com/input-output-hk/catalyst-forge-spa/errors"

// ClassifyAPICode maps an S3 API error code, as reported by the SDK or the
// aws CLI, to an error code. Unrecognised codes yield CodeUnknown.
func ClassifyAPICode(apiCode string) errors.ErrorCode {
	switch apiCode {
	case "NoSuchBucket":
		return errors.CodeNotFound
	case "AccessDenied", "AllAccessDisabled":
		return errors.CodeForbidden
	case "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken", "InvalidToken":
		return errors.CodeUnauthorized
	case "SlowDown", "TooManyRequests", "RequestLimitExceeded":
		return errors.CodeRateLimit
	case "ServiceUnavailable", "InternalError", "RequestTimeout":
		return errors.CodeUnavailable
	default:
		return errors.CodeUnknown
	}
}
