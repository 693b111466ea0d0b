package executor_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/input-output-hk/catalyst-forge-spa/executor"
)

func TestBasicExecution(t *testing.T) {
	cmd := executor.New("echo", "hello", "world")
	result, err := cmd.Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result.Stdout, "hello world") {
		t.Errorf("expected stdout to contain 'hello world', got: %s", result.Stdout)
	}

	if !result.Success() {
		t.Errorf("expected success, got exit code: %d", result.ExitCode)
	}
}

func TestWrappedExecutor(t *testing.T) {
	sh := executor.NewWrappedExecutor("sh")

	result, err := sh.Execute(context.Background(), []string{"-c", "echo wrapped"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.TrimSpace(result.Stdout) != "wrapped" {
		t.Errorf("expected wrapped output, got: %s", result.Stdout)
	}
}

func TestFailureKeepsDiagnostics(t *testing.T) {
	sh := executor.NewWrappedExecutor("sh")

	result, err := sh.Execute(context.Background(), []string{"-c", "echo 'access denied' >&2; exit 3"})
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}

	if result.Success() {
		t.Error("expected result to report failure")
	}

	if result.ExitCode != 3 {
		t.Errorf("expected exit code 3, got: %d", result.ExitCode)
	}

	if result.Diagnostic() != "access denied" {
		t.Errorf("expected stderr diagnostic, got: %q", result.Diagnostic())
	}
}

func TestStderrWriter(t *testing.T) {
	var errOut bytes.Buffer
	cmd := executor.New("sh", "-c", "echo upload && echo warning >&2")
	result, err := cmd.Execute(context.Background(), executor.WithStderrWriter(&errOut))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.TrimSpace(errOut.String()) != "warning" {
		t.Errorf("expected stderr writer to receive warning, got: %s", errOut.String())
	}
	if strings.TrimSpace(result.Stdout) != "upload" {
		t.Errorf("expected stdout captured separately, got: %s", result.Stdout)
	}
}

func TestDiagnosticFallsBackToStdout(t *testing.T) {
	r := &executor.Result{Stdout: " only stdout \n", ExitCode: 1}
	if r.Diagnostic() != "only stdout" {
		t.Errorf("expected stdout diagnostic, got: %q", r.Diagnostic())
	}
	var nilResult *executor.Result
	if nilResult.Success() || nilResult.Diagnostic() != "" {
		t.Error("nil result must report failure with no diagnostic")
	}
}

func TestCustomWriters(t *testing.T) {
	var out bytes.Buffer
	cmd := executor.New("echo", "streamed")
	result, err := cmd.Execute(context.Background(), executor.WithStdoutWriter(&out))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out.String(), "streamed") {
		t.Errorf("expected writer to receive output, got: %s", out.String())
	}
	if !strings.Contains(result.Stdout, "streamed") {
		t.Errorf("expected output to be captured too, got: %s", result.Stdout)
	}
}

func TestEnvironmentVariables(t *testing.T) {
	cmd := executor.New("sh", "-c", "echo $AWS_PROFILE")
	result, err := cmd.Execute(
		context.Background(),
		executor.WithEnvVar("AWS_PROFILE", "personal"),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result.Stdout, "personal") {
		t.Errorf("expected env var value in output, got: %s", result.Stdout)
	}
}

func TestEnvDoesNotLeakBetweenCalls(t *testing.T) {
	sh := executor.NewWrappedExecutor("sh")

	_, err := sh.Execute(context.Background(), []string{"-c", "true"}, executor.WithEnvVar("LEAK_CHECK", "1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := sh.Execute(context.Background(), []string{"-c", "echo ${LEAK_CHECK:-unset}"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.TrimSpace(result.Stdout) != "unset" {
		t.Errorf("expected env to be per-call, got: %s", result.Stdout)
	}
}

func TestCommandString(t *testing.T) {
	cmd := executor.New("aws", "s3", "cp", "--cache-control", "max-age=31536000,public", "--website-configuration", `{"a": 1}`)
	want := `aws s3 cp --cache-control max-age=31536000,public --website-configuration "{\"a\": 1}"`
	if cmd.String() != want {
		t.Errorf("String() = %s, want %s", cmd.String(), want)
	}
}
