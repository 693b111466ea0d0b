// Package awscli implements storage.Backend by driving the aws command line
// tool through the executor package.
//
// Each operation is one synchronous aws invocation. A non-zero exit is
// returned as an error carrying the tool's stderr, classified by the
// service error code when the tool reports one.
package awscli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/input-output-hk/catalyst-forge-spa/errors"
	"github.com/input-output-hk/catalyst-forge-spa/executor"
	"github.com/input-output-hk/catalyst-forge-spa/storage"
)

// Program is the aws CLI binary name.
const Program = "aws"

// Backend runs aws s3 / aws s3api commands.
type Backend struct {
	runner  executor.Runner
	profile string
	output  io.Writer
	logger  *slog.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithProfile sets AWS_PROFILE for every invocation. Empty leaves the
// environment untouched.
func WithProfile(profile string) Option {
	return func(b *Backend) {
		b.profile = profile
	}
}

// WithOutput streams the tool's stdout and stderr to w while it runs.
func WithOutput(w io.Writer) Option {
	return func(b *Backend) {
		b.output = w
	}
}

// WithLogger sets the logger used to record each command line.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) {
		b.logger = logger
	}
}

// WithRunner replaces the command runner (tests).
func WithRunner(r executor.Runner) Option {
	return func(b *Backend) {
		b.runner = r
	}
}

// New creates a Backend that runs the aws binary found on PATH.
func New(opts ...Option) *Backend {
	b := &Backend{
		runner: executor.NewWrappedExecutor(Program),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var _ storage.Backend = (*Backend)(nil)

// UploadDirectory runs `aws s3 cp <src>/ s3://<bucket>/ --recursive`.
// s3 cp never deletes remote objects, unlike s3 sync --delete.
func (b *Backend) UploadDirectory(ctx context.Context, req storage.UploadDirectoryRequest) (*storage.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	args := []string{
		"s3", "cp",
		strings.TrimSuffix(req.Source, "/") + "/",
		"s3://" + req.Bucket + "/",
		"--recursive",
		"--cache-control", req.CachePolicy.Directive(),
		"--region", req.Region,
	}
	return b.run(ctx, "upload directory", args)
}

// UploadFile runs `aws s3 cp <src> s3://<bucket>/<key>`.
func (b *Backend) UploadFile(ctx context.Context, req storage.UploadFileRequest) (*storage.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	args := []string{
		"s3", "cp",
		req.Source,
		"s3://" + req.Bucket + "/" + strings.TrimPrefix(req.Key, "/"),
		"--cache-control", req.CachePolicy.Directive(),
		"--region", req.Region,
	}
	res, err := b.run(ctx, "upload file", args)
	if err != nil {
		return res, err
	}
	res.Objects = 1
	return res, nil
}

// PutWebsite runs `aws s3api put-bucket-website`.
func (b *Backend) PutWebsite(ctx context.Context, req storage.WebsiteRequest) (*storage.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	doc, err := websiteJSON(req.Website)
	if err != nil {
		return nil, fmt.Errorf("aws put-bucket-website: encode configuration: %w", err)
	}

	args := []string{
		"s3api", "put-bucket-website",
		"--bucket", req.Bucket,
		"--website-configuration", doc,
		"--region", req.Region,
	}
	return b.run(ctx, "put website", args)
}

func (b *Backend) run(ctx context.Context, op string, args []string) (*storage.Result, error) {
	var opts []executor.Option
	if b.profile != "" {
		opts = append(opts, executor.WithEnvVar("AWS_PROFILE", b.profile))
	}
	if b.output != nil {
		opts = append(opts, executor.WithStdoutWriter(b.output), executor.WithStderrWriter(b.output))
	}

	cmdline := executor.New(Program, args...).String()
	b.logger.DebugContext(ctx, "executing aws command",
		"op", op,
		"command", cmdline,
		"profile", b.profile,
	)
	if b.output != nil {
		fmt.Fprintf(b.output, "Executing: %s\n", cmdline)
	}

	start := time.Now()
	res, err := b.runner.Execute(ctx, args, opts...)
	out := &storage.Result{Duration: time.Since(start)}
	if res != nil {
		out.Output = strings.TrimSpace(res.Stdout)
	}

	if err != nil || !res.Success() {
		if err == nil {
			err = fmt.Errorf("aws exited without success")
			if res != nil {
				err = fmt.Errorf("exit status %d", res.ExitCode)
			}
		}
		diag := res.Diagnostic()
		msg := "aws " + op
		if diag != "" {
			msg += ": " + diag
		}
		return out, errors.Wrap(err, classifyDiagnostic(diag), msg)
	}

	out.Objects = countUploads(out.Output)
	return out, nil
}

// websiteJSON renders the --website-configuration document.
func websiteJSON(w storage.WebsiteConfig) (string, error) {
	type indexDocument struct {
		Suffix string `json:"Suffix"`
	}
	type errorDocument struct {
		Key string `json:"Key"`
	}
	doc := struct {
		IndexDocument indexDocument `json:"IndexDocument"`
		ErrorDocument errorDocument `json:"ErrorDocument"`
	}{
		IndexDocument: indexDocument{Suffix: w.IndexDocument},
		ErrorDocument: errorDocument{Key: w.ErrorDocument},
	}

	bts, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(bts), nil
}

// apiErrorPattern extracts the service error code from aws CLI output such as
// "An error occurred (AccessDenied) when calling the PutObject operation".
var apiErrorPattern = regexp.MustCompile(`An error occurred \(([A-Za-z]+)\)`)

// classifyDiagnostic maps the service error code in diag to an error code.
// Failures without a recognisable service error are CodeExecutionFailed.
func classifyDiagnostic(diag string) errors.ErrorCode {
	m := apiErrorPattern.FindStringSubmatch(diag)
	if m == nil {
		return errors.CodeExecutionFailed
	}
	if code := storage.ClassifyAPICode(m[1]); code != errors.CodeUnknown {
		return code
	}
	return errors.CodeExecutionFailed
}

// countUploads counts "upload:" lines in aws s3 cp output.
func countUploads(output string) int {
	n := 0
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "upload:") {
			n++
		}
	}
	return n
}
