// Command spadeploy publishes the built single-page application in the
// build directory to its website bucket.
//
// It takes no arguments. Defaults can be overridden with a spadeploy.toml in
// the working directory or a file named by SPADEPLOY_CONFIG. Set
// SPADEPLOY_DEBUG=1 for debug logging on stderr.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/input-output-hk/catalyst-forge-spa/config"
	"github.com/input-output-hk/catalyst-forge-spa/deploy"
	"github.com/input-output-hk/catalyst-forge-spa/errors"
	"github.com/input-output-hk/catalyst-forge-spa/fs"
	"github.com/input-output-hk/catalyst-forge-spa/fs/billy"
	"github.com/input-output-hk/catalyst-forge-spa/routes"
	"github.com/input-output-hk/catalyst-forge-spa/storage"
	"github.com/input-output-hk/catalyst-forge-spa/storage/awscli"
	"github.com/input-output-hk/catalyst-forge-spa/storage/s3"
)

const envDebug = "SPADEPLOY_DEBUG"

// newBackend builds the storage backend selected by cfg.
var newBackend = func(
	ctx context.Context,
	cfg config.Config,
	filesystem fs.Filesystem,
	stdout io.Writer,
	logger *slog.Logger,
) (storage.Backend, error) {
	switch cfg.Backend {
	case config.BackendCLI:
		return awscli.New(
			awscli.WithProfile(cfg.Profile),
			awscli.WithOutput(stdout),
			awscli.WithLogger(logger),
		), nil
	default:
		return s3.New(ctx,
			s3.WithRegion(cfg.Region),
			s3.WithProfile(cfg.Profile),
			s3.WithEndpoint(cfg.Endpoint),
			s3.WithForcePathStyle(cfg.ForcePathStyle),
			s3.WithConcurrency(cfg.Concurrency),
			s3.WithMaxRetries(cfg.MaxRetries),
			s3.WithFilesystem(filesystem),
			s3.WithLogger(logger),
		)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, stdout, stderr io.Writer) int {
	level := slog.LevelWarn
	if os.Getenv(envDebug) != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load()
	if err != nil {
		return fail(stderr, err)
	}

	// The build output is checked before credentials are resolved so a
	// missing build is reported as such.
	filesystem := billy.NewBaseOSFS()
	if err := deploy.CheckBuildOutput(filesystem, cfg); err != nil {
		return fail(stderr, err)
	}

	backend, err := newBackend(ctx, cfg, filesystem, stdout, logger)
	if err != nil {
		return fail(stderr, errors.Wrap(err, errors.CodeInvalidConfig, "failed to set up storage backend"))
	}

	o := deploy.New(cfg, backend,
		deploy.WithFilesystem(filesystem),
		deploy.WithProgress(stdout),
		deploy.WithLogger(logger),
	)
	report, err := o.Run(ctx)
	if err != nil {
		return fail(stderr, err)
	}

	fmt.Fprintln(stdout, "Client routes served by the SPA fallback:")
	for _, r := range routes.Table {
		fmt.Fprintf(stdout, "  %s%s -> %s\n", report.SiteURL, r.Pattern, r.Name)
	}
	return 0
}

// fail prints err with its classification and returns the failure exit code.
func fail(stderr io.Writer, err error) int {
	code := errors.GetCode(err)
	cause := errors.RootCode(err)

	fmt.Fprintf(stderr, "spadeploy: %v\n", err)
	if cause != code {
		fmt.Fprintf(stderr, "spadeploy: code=%s cause=%s retryable=%t\n", code, cause, cause.Retryable())
	} else {
		fmt.Fprintf(stderr, "spadeploy: code=%s retryable=%t\n", code, cause.Retryable())
	}
	return 1
}
