// Package executor runs external commands with output capture, per-call
// environment variables and context support for cancellation.
//
// A failed command is reported both through the returned error and through
// the Result, which keeps the captured diagnostic output so callers can
// check it explicitly after each call.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// Result holds the output and error from a command execution
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Success reports whether the command exited with status zero.
func (r *Result) Success() bool {
	return r != nil && r.Err == nil && r.ExitCode == 0
}

// Diagnostic returns the most useful captured output for an error message:
// stderr when present, otherwise stdout.
func (r *Result) Diagnostic() string {
	if r == nil {
		return ""
	}
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(r.Stdout)
}

// Runner runs a fixed program with per-call arguments.
// WrappedExecutor implements it; tests substitute a recording fake.
type Runner interface {
	Execute(ctx context.Context, args []string, opts ...Option) (*Result, error)
}

// Options configures a single execution. Output is always captured;
// the writers receive a copy while the command runs.
type Options struct {
	// Env is appended to the current process environment.
	Env map[string]string

	StdoutWriter io.Writer
	StderrWriter io.Writer
}

// Option is a function that modifies Options
type Option func(*Options)

// DefaultOptions returns default execution options
func DefaultOptions() *Options {
	return &Options{
		Env: make(map[string]string),
	}
}

// CommandExecutor runs one program with fixed arguments.
type CommandExecutor struct {
	program string
	args    []string
}

// New creates a new CommandExecutor
func New(program string, args ...string) *CommandExecutor {
	return &CommandExecutor{
		program: program,
		args:    args,
	}
}

// String renders the command line, quoting arguments that contain spaces.
func (c *CommandExecutor) String() string {
	parts := make([]string, 0, len(c.args)+1)
	parts = append(parts, c.program)
	for _, a := range c.args {
		if strings.ContainsAny(a, " \t\"'") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Execute runs the command to completion.
func (c *CommandExecutor) Execute(ctx context.Context, opts ...Option) (*Result, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	cmd := exec.CommandContext(ctx, c.program, c.args...)
	if len(options.Env) > 0 {
		cmd.Env = append(os.Environ(), envList(options.Env)...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = tee(&stdout, options.StdoutWriter)
	cmd.Stderr = tee(&stderr, options.StderrWriter)

	err := cmd.Run()

	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Err:    err,
	}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		result.ExitCode = -1
	}

	if err != nil {
		return result, fmt.Errorf("command execution failed: %w", err)
	}
	return result, nil
}

// WrappedExecutor runs a single program with per-call arguments.
type WrappedExecutor struct {
	program string
}

// NewWrappedExecutor creates an executor for a specific program
func NewWrappedExecutor(program string) *WrappedExecutor {
	return &WrappedExecutor{program: program}
}

var _ Runner = (*WrappedExecutor)(nil)

// Execute runs the wrapped program with args.
func (w *WrappedExecutor) Execute(
	ctx context.Context,
	args []string,
	opts ...Option,
) (*Result, error) {
	result, err := New(w.program, args...).Execute(ctx, opts...)
	if err != nil {
		return result, fmt.Errorf("failed to execute %s %s: %w", w.program, strings.Join(args, " "), err)
	}
	return result, nil
}

// WithEnvVar adds a single environment variable
func WithEnvVar(key, value string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string)
		}
		o.Env[key] = value
	}
}

// WithStdoutWriter sets a custom stdout writer
func WithStdoutWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StdoutWriter = w
	}
}

// WithStderrWriter sets a custom stderr writer
func WithStderrWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StderrWriter = w
	}
}

// envList renders env as KEY=value pairs in key order.
func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}
