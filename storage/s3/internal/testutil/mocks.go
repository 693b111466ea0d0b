// Package testutil provides test utilities and mocks for S3 operations.
// This package is internal and should only be used for testing within the S3 backend.
package testutil

import (
	"context"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-spa/storage/s3/internal/s3api"
)

// PutCall is a recorded PutObject invocation with its body already read.
type PutCall struct {
	Bucket       string
	Key          string
	CacheControl string
	ContentType  string
	Body         []byte
}

// MockS3Client is a mock implementation of the S3API interface for testing.
// Each operation can be customized through its function field; PutObject
// calls are always recorded. It is safe for concurrent use.
type MockS3Client struct {
	PutObjectFunc        func(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	PutBucketWebsiteFunc func(context.Context, *s3.PutBucketWebsiteInput, ...func(*s3.Options)) (*s3.PutBucketWebsiteOutput, error)

	mu   sync.Mutex
	puts []PutCall
}

// PutObject mocks the S3 PutObject operation.
func (m *MockS3Client) PutObject(
	ctx context.Context,
	params *s3.PutObjectInput,
	optFns ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	call := PutCall{
		Bucket:       aws.ToString(params.Bucket),
		Key:          aws.ToString(params.Key),
		CacheControl: aws.ToString(params.CacheControl),
		ContentType:  aws.ToString(params.ContentType),
	}
	if params.Body != nil {
		body, err := io.ReadAll(params.Body)
		if err != nil {
			return nil, err
		}
		call.Body = body
	}

	m.mu.Lock()
	m.puts = append(m.puts, call)
	m.mu.Unlock()

	if m.PutObjectFunc != nil {
		return m.PutObjectFunc(ctx, params, optFns...)
	}
	return &s3.PutObjectOutput{ETag: aws.String(`"etag"`)}, nil
}

// PutBucketWebsite mocks the S3 PutBucketWebsite operation.
func (m *MockS3Client) PutBucketWebsite(
	ctx context.Context,
	params *s3.PutBucketWebsiteInput,
	optFns ...func(*s3.Options),
) (*s3.PutBucketWebsiteOutput, error) {
	if m.PutBucketWebsiteFunc != nil {
		return m.PutBucketWebsiteFunc(ctx, params, optFns...)
	}
	return &s3.PutBucketWebsiteOutput{}, nil
}

// Puts returns the recorded PutObject calls keyed by object key.
func (m *MockS3Client) Puts() map[string]PutCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]PutCall, len(m.puts))
	for _, p := range m.puts {
		out[p.Key] = p
	}
	return out
}

// Ensure MockS3Client implements s3api.S3API interface
var _ s3api.S3API = (*MockS3Client)(nil)
