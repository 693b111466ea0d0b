// Package storage defines the object-storage operations a deployment needs
// and the request and result types shared by every backend.
//
// Backends:
//   - storage/s3 uploads through the AWS SDK.
//   - storage/awscli drives the aws command line tool.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/input-output-hk/catalyst-forge-spa/errors"
)

// CachePolicy is the caching class applied to an uploaded object.
type CachePolicy string

const (
	// LongLivedPublic is for content-hashed assets that never change under the same key.
	LongLivedPublic CachePolicy = "long-lived-public"

	// NoCache is for documents that must always be revalidated.
	NoCache CachePolicy = "no-cache"
)

// Cache-Control header values for each policy.
const (
	LongLivedPublicDirective = "max-age=31536000,public"
	NoCacheDirective         = "no-cache,no-store,must-revalidate"
)

// Directive returns the Cache-Control value for the policy.
func (p CachePolicy) Directive() string {
	switch p {
	case LongLivedPublic:
		return LongLivedPublicDirective
	case NoCache:
		return NoCacheDirective
	default:
		return ""
	}
}

// Backend is an object-storage service able to host a static site.
type Backend interface {
	// UploadDirectory copies every file under Source to the bucket, keyed by
	// its slash-separated path relative to Source. Existing objects with the
	// same key are overwritten; other objects are left untouched.
	UploadDirectory(ctx context.Context, req UploadDirectoryRequest) (*Result, error)

	// UploadFile copies a single local file to one object key.
	UploadFile(ctx context.Context, req UploadFileRequest) (*Result, error)

	// PutWebsite replaces the bucket's static website configuration.
	PutWebsite(ctx context.Context, req WebsiteRequest) (*Result, error)
}

// UploadDirectoryRequest describes a recursive copy.
type UploadDirectoryRequest struct {
	Source      string
	Bucket      string
	Region      string
	CachePolicy CachePolicy
}

// Validate checks the request before any remote call is made.
func (r UploadDirectoryRequest) Validate() error {
	return validate(map[string]string{
		"source": r.Source,
		"bucket": r.Bucket,
		"region": r.Region,
	}, r.CachePolicy)
}

// UploadFileRequest describes a single-object copy.
type UploadFileRequest struct {
	Source      string
	Bucket      string
	Key         string
	Region      string
	CachePolicy CachePolicy
}

// Validate checks the request before any remote call is made.
func (r UploadFileRequest) Validate() error {
	return validate(map[string]string{
		"source": r.Source,
		"bucket": r.Bucket,
		"key":    r.Key,
		"region": r.Region,
	}, r.CachePolicy)
}

// WebsiteConfig is the bucket routing configuration.
type WebsiteConfig struct {
	// IndexDocument is served for requests to the bucket root (and directory paths).
	IndexDocument string

	// ErrorDocument is served for any key the service cannot resolve.
	ErrorDocument string
}

// SPAWebsite returns a configuration that serves entry for the root and as
// the fallback for every unresolved path.
func SPAWebsite(entry string) WebsiteConfig {
	return WebsiteConfig{
		IndexDocument: entry,
		ErrorDocument: entry,
	}
}

// WebsiteRequest describes a website configuration update.
type WebsiteRequest struct {
	Bucket  string
	Region  string
	Website WebsiteConfig
}

// Validate checks the request before any remote call is made.
func (r WebsiteRequest) Validate() error {
	return validate(map[string]string{
		"bucket":         r.Bucket,
		"region":         r.Region,
		"index document": r.Website.IndexDocument,
		"error document": r.Website.ErrorDocument,
	}, "")
}

// Result reports the outcome of one backend call together with any
// diagnostic output the backend captured.
type Result struct {
	// Objects is the number of objects written (zero for configuration calls).
	Objects int

	// Bytes is the total payload size written, when known.
	Bytes int64

	// Output is captured tool output (CLI backend) or a short summary.
	Output string

	Duration time.Duration
}

func validate(fields map[string]string, policy CachePolicy) error {
	var missing []string
	for _, name := range []string{"source", "bucket", "key", "region", "index document", "error document"} {
		v, ok := fields[name]
		if ok && strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errors.Newf(errors.CodeInvalidInput, "storage: missing %s", strings.Join(missing, ", "))
	}
	if _, wantsPolicy := fields["source"]; wantsPolicy && policy.Directive() == "" {
		return errors.New(errors.CodeInvalidInput, fmt.Sprintf("storage: unknown cache policy %q", policy))
	}
	return nil
}
