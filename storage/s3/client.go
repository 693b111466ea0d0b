// Package s3 implements storage.Backend with the AWS SDK for Go v2.
//
// Directory uploads walk the local tree through the fs abstraction and put
// every file as its own object, with a bounded number of uploads in flight.
// Nothing is ever deleted from the bucket.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/input-output-hk/catalyst-forge-spa/fs"
	"github.com/input-output-hk/catalyst-forge-spa/fs/billy"
	"github.com/input-output-hk/catalyst-forge-spa/storage"
	"github.com/input-output-hk/catalyst-forge-spa/storage/s3/errors"
	"github.com/input-output-hk/catalyst-forge-spa/storage/s3/internal/s3api"
)

// Client is an S3-backed storage.Backend.
// It is safe for concurrent use.
type Client struct {
	api         s3api.S3API
	fs          fs.Filesystem
	concurrency int
	logger      *slog.Logger
}

var _ storage.Backend = (*Client)(nil)

// New creates a Client. Credentials come from the default AWS credential
// chain, narrowed to the configured profile when one is set.
//
// Example:
//
//	client, err := s3.New(ctx,
//	    s3.WithRegion("us-east-1"),
//	    s3.WithProfile("personal"),
//	)
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cc := defaultClientConfig()
	for _, opt := range opts {
		opt(cc)
	}

	var cfg aws.Config
	if cc.awsConfig != nil {
		cfg = *cc.awsConfig
	} else {
		var loadOpts []func(*config.LoadOptions) error
		if cc.region != "" {
			loadOpts = append(loadOpts, config.WithRegion(cc.region))
		}
		if cc.profile != "" {
			loadOpts = append(loadOpts, config.WithSharedConfigProfile(cc.profile))
		}

		var err error
		cfg, err = config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if cc.region != "" {
		cfg.Region = cc.region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cc.maxRetries > 0 {
		cfg.RetryMaxAttempts = cc.maxRetries
	}

	var s3Opts []func(*s3.Options)
	if cc.endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cc.endpoint)
		})
	}
	if cc.forcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return newClient(s3.NewFromConfig(cfg, s3Opts...), cc), nil
}

// NewWithClient creates a Client around a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(api s3api.S3API, opts ...Option) *Client {
	cc := defaultClientConfig()
	for _, opt := range opts {
		opt(cc)
	}
	return newClient(api, cc)
}

func newClient(api s3api.S3API, cc *clientConfig) *Client {
	filesystem := cc.filesystem
	if filesystem == nil {
		filesystem = billy.NewBaseOSFS()
	}
	logger := cc.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		api:         api,
		fs:          filesystem,
		concurrency: cc.concurrency,
		logger:      logger,
	}
}

// upload is one file scheduled for PutObject.
type upload struct {
	path string
	key  string
}

// UploadDirectory puts every file under req.Source into the bucket.
// The first failing object aborts the remaining uploads; objects already
// written stay in place.
func (c *Client) UploadDirectory(ctx context.Context, req storage.UploadDirectoryRequest) (*storage.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	uploads, err := c.scan(ctx, req.Source)
	if err != nil {
		return nil, errors.NewError("walk", err).WithBucket(req.Bucket)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		objects  atomic.Int64
		written  atomic.Int64
		sem      = make(chan struct{}, c.concurrency)
	)

	for _, u := range uploads {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func(u upload) {
			defer wg.Done()
			defer func() { <-sem }()

			n, err := c.putFile(ctx, req.Bucket, u.key, u.path, req.Region, req.CachePolicy)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				mu.Unlock()
				return
			}
			objects.Add(1)
			written.Add(n)
		}(u)
	}
	wg.Wait()

	res := &storage.Result{
		Objects:  int(objects.Load()),
		Bytes:    written.Load(),
		Duration: time.Since(start),
	}
	res.Output = fmt.Sprintf("uploaded %d of %d objects", res.Objects, len(uploads))

	if firstErr != nil {
		return res, firstErr
	}
	if err := ctx.Err(); err != nil {
		return res, errors.NewError("putObject", err).WithBucket(req.Bucket)
	}
	return res, nil
}

// UploadFile puts a single local file at req.Key.
func (c *Client) UploadFile(ctx context.Context, req storage.UploadFileRequest) (*storage.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	key := strings.TrimPrefix(req.Key, "/")
	n, err := c.putFile(ctx, req.Bucket, key, req.Source, req.Region, req.CachePolicy)
	if err != nil {
		return nil, err
	}

	return &storage.Result{
		Objects:  1,
		Bytes:    n,
		Output:   "uploaded " + key,
		Duration: time.Since(start),
	}, nil
}

// PutWebsite replaces the bucket website configuration.
func (c *Client) PutWebsite(ctx context.Context, req storage.WebsiteRequest) (*storage.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	input := &s3.PutBucketWebsiteInput{
		Bucket: aws.String(req.Bucket),
		WebsiteConfiguration: &awstypes.WebsiteConfiguration{
			IndexDocument: &awstypes.IndexDocument{
				Suffix: aws.String(req.Website.IndexDocument),
			},
			ErrorDocument: &awstypes.ErrorDocument{
				Key: aws.String(req.Website.ErrorDocument),
			},
		},
	}

	if _, err := c.api.PutBucketWebsite(ctx, input, withRegion(req.Region)); err != nil {
		return nil, errors.NewError("putBucketWebsite", err).WithBucket(req.Bucket)
	}

	return &storage.Result{
		Output: fmt.Sprintf("website index=%s error=%s",
			req.Website.IndexDocument, req.Website.ErrorDocument),
		Duration: time.Since(start),
	}, nil
}

// scan lists the files under root and their object keys.
func (c *Client) scan(ctx context.Context, root string) ([]upload, error) {
	var uploads []upload

	err := c.fs.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}

		uploads = append(uploads, upload{
			path: path,
			key:  filepath.ToSlash(rel),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uploads, nil
}

// sniffLen is how much of a file is read for content-type detection.
const sniffLen = 512

// putFile streams one file to the bucket and returns its size.
func (c *Client) putFile(
	ctx context.Context,
	bucket, key, path, region string,
	policy storage.CachePolicy,
) (int64, error) {
	fail := func(err error) (int64, error) {
		return 0, errors.NewError("putObject", err).WithBucket(bucket).WithKey(key)
	}

	f, err := c.fs.Open(path)
	if err != nil {
		return fail(err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fail(err)
	}
	size := info.Size()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return fail(err)
	}
	contentType := detectContentType(key, bytes.NewReader(head[:n]))
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fail(err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String(policy.Directive()),
	}

	if _, err := c.api.PutObject(ctx, input, withRegion(region)); err != nil {
		return fail(err)
	}

	c.logger.DebugContext(ctx, "uploaded object",
		"bucket", bucket,
		"key", key,
		"bytes", size,
		"content_type", contentType,
		"cache_control", policy.Directive(),
	)
	return size, nil
}

func withRegion(region string) func(*s3.Options) {
	return func(o *s3.Options) {
		if region != "" {
			o.Region = region
		}
	}
}
