package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-spa/config"
	"github.com/input-output-hk/catalyst-forge-spa/errors"
	"github.com/input-output-hk/catalyst-forge-spa/fs"
	"github.com/input-output-hk/catalyst-forge-spa/storage"
	"github.com/input-output-hk/catalyst-forge-spa/storage/awscli"
)

type countingBackend struct {
	ops       []string
	websiteErr error
}

func (c *countingBackend) UploadDirectory(context.Context, storage.UploadDirectoryRequest) (*storage.Result, error) {
	c.ops = append(c.ops, "dir")
	return &storage.Result{}, nil
}

func (c *countingBackend) UploadFile(context.Context, storage.UploadFileRequest) (*storage.Result, error) {
	c.ops = append(c.ops, "file")
	return &storage.Result{Objects: 1}, nil
}

func (c *countingBackend) PutWebsite(context.Context, storage.WebsiteRequest) (*storage.Result, error) {
	c.ops = append(c.ops, "website")
	if c.websiteErr != nil {
		return nil, c.websiteErr
	}
	return &storage.Result{}, nil
}

// useBackend swaps the backend factory for the duration of the test.
func useBackend(t *testing.T, b storage.Backend) {
	t.Helper()
	orig := newBackend
	newBackend = func(context.Context, config.Config, fs.Filesystem, io.Writer, *slog.Logger) (storage.Backend, error) {
		return b, nil
	}
	t.Cleanup(func() { newBackend = orig })
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestRun_Success(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(config.EnvFile, "")
	writeFile(t, filepath.Join(dir, "dist", "index.html"), "<html></html>")

	backend := &countingBackend{}
	useBackend(t, backend)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), &stdout, &stderr)

	assert.Equal(t, 0, code, stderr.String())
	assert.Equal(t, []string{"dir", "file", "website"}, backend.ops)
	assert.Contains(t, stdout.String(), "https://ps5.jsarias.me")
	assert.Contains(t, stdout.String(), "https://ps5.jsarias.me/video/:fileKey -> VideoPlayer")
	assert.Empty(t, stderr.String())
}

func TestRun_MissingBuildOutput(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(config.EnvFile, "")

	backend := &countingBackend{}
	useBackend(t, backend)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Empty(t, backend.ops)
	assert.Contains(t, stderr.String(), "build directory not found")
	assert.Contains(t, stderr.String(), "code=MISSING_BUILD_OUTPUT")
}

func TestRun_MissingBuildOutputBeforeCredentials(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(config.EnvFile, "")

	called := false
	orig := newBackend
	newBackend = func(context.Context, config.Config, fs.Filesystem, io.Writer, *slog.Logger) (storage.Backend, error) {
		called = true
		return nil, fmt.Errorf("failed to get shared config profile, personal")
	}
	t.Cleanup(func() { newBackend = orig })

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.False(t, called, "credentials must not be resolved without build output")
	assert.Contains(t, stderr.String(), "code=MISSING_BUILD_OUTPUT")
	assert.NotContains(t, stderr.String(), "shared config profile")
}

func TestRun_BackendSetupFailure(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(config.EnvFile, "")
	writeFile(t, filepath.Join(dir, "dist", "index.html"), "<html></html>")

	orig := newBackend
	newBackend = func(context.Context, config.Config, fs.Filesystem, io.Writer, *slog.Logger) (storage.Backend, error) {
		return nil, fmt.Errorf("failed to get shared config profile, personal")
	}
	t.Cleanup(func() { newBackend = orig })

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "shared config profile")
	assert.Contains(t, stderr.String(), "code=INVALID_CONFIGURATION")
}

func TestRun_RemoteStepFailure(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(config.EnvFile, "")
	writeFile(t, filepath.Join(dir, "dist", "index.html"), "<html></html>")

	backend := &countingBackend{
		websiteErr: errors.Wrap(fmt.Errorf("api error AccessDenied: Access Denied"), errors.CodeForbidden, "s3: access denied"),
	}
	useBackend(t, backend)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Equal(t, []string{"dir", "file", "website"}, backend.ops)
	assert.Contains(t, stderr.String(), "website configuration failed")
	assert.Contains(t, stderr.String(), "Access Denied")
	assert.Contains(t, stderr.String(), "code=TRANSFER_FAILED cause=FORBIDDEN retryable=false")
	assert.NotContains(t, stdout.String(), "Deployment completed successfully")
	assert.NotContains(t, stdout.String(), "Client routes")
}

func TestRun_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	cfgPath := filepath.Join(dir, "custom.toml")
	writeFile(t, cfgPath, "backend = \"ftp\"\n")
	t.Setenv(config.EnvFile, cfgPath)

	backend := &countingBackend{}
	useBackend(t, backend)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Empty(t, backend.ops)
	assert.Contains(t, stderr.String(), "unknown backend")
	assert.Contains(t, stderr.String(), "code=INVALID_CONFIGURATION retryable=false")
}

func TestNewBackend_CLI(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = config.BackendCLI

	b, err := newBackend(context.Background(), cfg, nil, io.Discard, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.IsType(t, &awscli.Backend{}, b)
}
