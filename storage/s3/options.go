package s3

import (
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/input-output-hk/catalyst-forge-spa/fs"
)

// clientConfig holds the settings collected from Options.
type clientConfig struct {
	region         string
	profile        string
	endpoint       string
	forcePathStyle bool
	maxRetries     int
	concurrency    int
	awsConfig      *aws.Config
	filesystem     fs.Filesystem
	logger         *slog.Logger
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		maxRetries:  3,
		concurrency: 5,
	}
}

// Option configures a Client.
type Option func(*clientConfig)

// WithRegion sets the AWS region used when none is given per request.
func WithRegion(region string) Option {
	return func(c *clientConfig) {
		c.region = region
	}
}

// WithProfile selects a named profile from the shared AWS config files.
func WithProfile(profile string) Option {
	return func(c *clientConfig) {
		c.profile = profile
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible services or local testing with LocalStack.
func WithEndpoint(endpoint string) Option {
	return func(c *clientConfig) {
		c.endpoint = endpoint
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
// Bucket names containing dots (such as domain-named website buckets) and
// most S3-compatible services need it.
func WithForcePathStyle(forcePathStyle bool) Option {
	return func(c *clientConfig) {
		c.forcePathStyle = forcePathStyle
	}
}

// WithMaxRetries sets the SDK's maximum attempts per request.
// Default is 3. Values below 1 keep the SDK default.
func WithMaxRetries(maxRetries int) Option {
	return func(c *clientConfig) {
		c.maxRetries = maxRetries
	}
}

// WithConcurrency sets the maximum number of objects uploaded in parallel.
// Default is 5.
func WithConcurrency(concurrency int) Option {
	return func(c *clientConfig) {
		if concurrency > 0 {
			c.concurrency = concurrency
		}
	}
}

// WithAWSConfig provides a ready AWS configuration, bypassing the default
// credential chain.
func WithAWSConfig(cfg *aws.Config) Option {
	return func(c *clientConfig) {
		c.awsConfig = cfg
	}
}

// WithFilesystem sets the filesystem local sources are read from.
// Defaults to the native OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) Option {
	return func(c *clientConfig) {
		c.filesystem = filesystem
	}
}

// WithLogger sets the logger for per-object debug logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}
