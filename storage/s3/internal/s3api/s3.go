// Package s3api defines the S3 operations a deployment uses, so the client
// can be mocked in tests.
package s3api

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the AWS S3 client used by this module.
type S3API interface {
	// PutObject uploads an object to S3
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)

	// PutBucketWebsite replaces the bucket's static website configuration
	PutBucketWebsite(
		ctx context.Context,
		params *s3.PutBucketWebsiteInput,
		optFns ...func(*s3.Options),
	) (*s3.PutBucketWebsiteOutput, error)
}

// Verify that the AWS S3 client implements our interface
var _ S3API = (*s3.Client)(nil)
