// Package deploy publishes a built single-page application to an object
// storage bucket and configures the bucket to serve it.
//
// A run is strictly sequential:
//
//  1. check that the build output exists locally
//  2. upload the whole build directory with a long-lived public cache policy
//  3. re-upload the entry document with a no-cache policy
//  4. replace the bucket website configuration so the entry document is both
//     the index and the error document
//
// The first failing step ends the run. Nothing is retried or rolled back.
package deploy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/input-output-hk/catalyst-forge-spa/config"
	"github.com/input-output-hk/catalyst-forge-spa/errors"
	"github.com/input-output-hk/catalyst-forge-spa/fs"
	"github.com/input-output-hk/catalyst-forge-spa/fs/billy"
	"github.com/input-output-hk/catalyst-forge-spa/storage"
)

// Step names a phase of a deployment.
type Step string

const (
	StepPrecondition  Step = "precondition"
	StepUpload        Step = "upload"
	StepEntryDocument Step = "entry-document"
	StepWebsite       Step = "website"
)

// StepReport records a completed step.
type StepReport struct {
	Step     Step
	Result   *storage.Result
	Duration time.Duration
}

// Report summarizes a deployment run.
type Report struct {
	Bucket   string
	SiteURL  string
	Steps    []StepReport
	Duration time.Duration
}

// Orchestrator runs deployments for one configuration against one backend.
type Orchestrator struct {
	cfg     config.Config
	backend storage.Backend
	fs      fs.Filesystem
	out     io.Writer
	logger  *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFilesystem sets the filesystem the build output is checked on.
// Defaults to the native OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) Option {
	return func(o *Orchestrator) {
		o.fs = filesystem
	}
}

// WithProgress sets where human-readable progress lines are written.
func WithProgress(w io.Writer) Option {
	return func(o *Orchestrator) {
		o.out = w
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates an Orchestrator.
func New(cfg config.Config, backend storage.Backend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:     cfg,
		backend: backend,
		fs:      billy.NewBaseOSFS(),
		out:     io.Discard,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run performs the deployment. On failure the returned report lists the
// steps that completed before the error.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{
		Bucket:  o.cfg.Bucket,
		SiteURL: o.cfg.SiteURL(),
	}

	o.progress("Starting deployment to %s...", o.cfg.Bucket)
	o.logger.InfoContext(ctx, "starting deployment",
		"bucket", o.cfg.Bucket,
		"build_dir", o.cfg.BuildDir,
		"region", o.cfg.Region,
		"profile", o.cfg.Profile,
	)

	if err := CheckBuildOutput(o.fs, o.cfg); err != nil {
		o.logger.ErrorContext(ctx, "build output check failed",
			"step", StepPrecondition,
			"code", errors.GetCode(err),
			"error", err,
		)
		return report, err
	}

	steps := []struct {
		step    Step
		start   string
		done    string
		failure string
		call    func(context.Context) (*storage.Result, error)
	}{
		{
			step:    StepUpload,
			start:   fmt.Sprintf("Copying %s/ to s3://%s/ ...", o.cfg.BuildDir, o.cfg.Bucket),
			done:    "Files uploaded successfully",
			failure: "bulk upload failed",
			call: func(ctx context.Context) (*storage.Result, error) {
				return o.backend.UploadDirectory(ctx, storage.UploadDirectoryRequest{
					Source:      o.cfg.BuildDir,
					Bucket:      o.cfg.Bucket,
					Region:      o.cfg.Region,
					CachePolicy: storage.LongLivedPublic,
				})
			},
		},
		{
			step:    StepEntryDocument,
			start:   fmt.Sprintf("Uploading %s with no-cache...", o.cfg.EntryDocument),
			done:    fmt.Sprintf("%s uploaded with no-cache", o.cfg.EntryDocument),
			failure: "entry document upload failed",
			call: func(ctx context.Context) (*storage.Result, error) {
				return o.backend.UploadFile(ctx, storage.UploadFileRequest{
					Source:      o.cfg.EntryPath(),
					Bucket:      o.cfg.Bucket,
					Key:         o.cfg.EntryDocument,
					Region:      o.cfg.Region,
					CachePolicy: storage.NoCache,
				})
			},
		},
		{
			step:    StepWebsite,
			start:   "Configuring SPA routing...",
			done:    "SPA routing configured",
			failure: "website configuration failed",
			call: func(ctx context.Context) (*storage.Result, error) {
				return o.backend.PutWebsite(ctx, storage.WebsiteRequest{
					Bucket:  o.cfg.Bucket,
					Region:  o.cfg.Region,
					Website: storage.SPAWebsite(o.cfg.EntryDocument),
				})
			},
		},
	}

	for _, s := range steps {
		o.progress("%s", s.start)
		stepStart := time.Now()

		res, err := s.call(ctx)
		if err != nil {
			cause := errors.RootCode(err)
			o.logger.ErrorContext(ctx, "deployment step failed",
				"step", s.step,
				"bucket", o.cfg.Bucket,
				"cause_code", cause,
				"retryable", cause.Retryable(),
				"error", err,
			)
			report.Duration = time.Since(start)
			return report, errors.WrapWithContext(err, errors.CodeTransferFailed, s.failure,
				map[string]interface{}{
					"step":   string(s.step),
					"bucket": o.cfg.Bucket,
				})
		}

		sr := StepReport{Step: s.step, Result: res, Duration: time.Since(stepStart)}
		report.Steps = append(report.Steps, sr)

		attrs := []any{"step", s.step, "duration", sr.Duration}
		if res != nil {
			attrs = append(attrs, "objects", res.Objects, "bytes", res.Bytes)
		}
		o.logger.InfoContext(ctx, "deployment step completed", attrs...)
		o.progress("%s", s.done)
	}

	report.Duration = time.Since(start)
	o.progress("Deployment completed successfully")
	o.progress("Your app is now live at: %s", report.SiteURL)
	o.logger.InfoContext(ctx, "deployment completed",
		"bucket", o.cfg.Bucket,
		"duration", report.Duration,
	)
	return report, nil
}

// CheckBuildOutput fails with CodeMissingBuildOutput when the build
// directory or its entry document is missing on filesystem. Run calls it
// before any backend call; the CLI also calls it before loading credentials.
func CheckBuildOutput(filesystem fs.Filesystem, cfg config.Config) error {
	info, err := filesystem.Stat(cfg.BuildDir)
	if err != nil || !info.IsDir() {
		e := errors.New(errors.CodeMissingBuildOutput,
			"build directory not found, run the build first").
			WithContext("path", cfg.BuildDir)
		if err != nil {
			e.Cause = err
		}
		return e
	}

	entry := cfg.EntryPath()
	info, err = filesystem.Stat(entry)
	if err != nil || info.IsDir() {
		e := errors.New(errors.CodeMissingBuildOutput,
			"entry document not found in build output").
			WithContext("path", entry)
		if err != nil {
			e.Cause = err
		}
		return e
	}
	return nil
}

func (o *Orchestrator) progress(format string, args ...any) {
	fmt.Fprintf(o.out, format+"\n", args...)
}
