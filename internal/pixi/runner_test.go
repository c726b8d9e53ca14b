package pixi_test

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pandeptwidyaop/pixi-server/internal/pixi"
)

func requireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

func TestAddArgs(t *testing.T) {
	args := pixi.AddArgs("numpy", "default")
	expected := []string{"add", "numpy", "--feature", "default"}

	if len(args) != len(expected) {
		t.Fatalf("expected %d args, got %d: %v", len(expected), len(args), args)
	}
	for i := range expected {
		if args[i] != expected[i] {
			t.Errorf("arg %d: expected %q, got %q", i, expected[i], args[i])
		}
	}
}

func TestExecRunner_Success(t *testing.T) {
	requireBinary(t, "echo")

	runner := pixi.NewExecRunner("echo", t.TempDir(), 0)

	result, err := runner.Run(context.Background(), []string{"add", "numpy", "--feature", "default"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", result.ExitCode)
	}
	if result.Stdout != "add numpy --feature default\n" {
		t.Errorf("unexpected stdout: %q", result.Stdout)
	}
	if result.Stderr != "" {
		t.Errorf("expected empty stderr, got %q", result.Stderr)
	}
}

func TestExecRunner_NoShellInterpretation(t *testing.T) {
	requireBinary(t, "echo")

	runner := pixi.NewExecRunner("echo", t.TempDir(), 0)

	pkg := "numpy; echo injected $(whoami) `id` | cat > /dev/null"
	result, err := runner.Run(context.Background(), pixi.AddArgs(pkg, "dev && rm -rf x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "add " + pkg + " --feature dev && rm -rf x\n"
	if result.Stdout != expected {
		t.Errorf("arguments were not passed literally:\nwant %q\ngot  %q", expected, result.Stdout)
	}
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	requireBinary(t, "sh")

	runner := pixi.NewExecRunner("sh", t.TempDir(), 0)

	result, err := runner.Run(context.Background(), []string{"-c", "echo partial; echo 'network error' >&2; exit 3"})
	if err != nil {
		t.Fatalf("non-zero exit should not be an error: %v", err)
	}

	if result.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", result.ExitCode)
	}
	if result.Stdout != "partial\n" {
		t.Errorf("unexpected stdout: %q", result.Stdout)
	}
	if result.Stderr != "network error\n" {
		t.Errorf("unexpected stderr: %q", result.Stderr)
	}
}

func TestExecRunner_BinaryNotFound(t *testing.T) {
	runner := pixi.NewExecRunner("definitely-not-a-real-pixi-binary", t.TempDir(), 0)

	result, err := runner.Run(context.Background(), pixi.AddArgs("numpy", "default"))
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if result != nil {
		t.Errorf("expected nil result, got %+v", result)
	}
	if !strings.Contains(err.Error(), "definitely-not-a-real-pixi-binary") {
		t.Errorf("expected error to name the binary, got %q", err.Error())
	}
}

func TestExecRunner_WorkingDir(t *testing.T) {
	requireBinary(t, "pwd")

	dir := t.TempDir()
	runner := pixi.NewExecRunner("pwd", dir, 0)

	result, err := runner.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("failed to resolve %s: %v", dir, err)
	}
	if got := strings.TrimSpace(result.Stdout); got != want {
		t.Errorf("expected command to run in %q, got %q", want, got)
	}
}

func TestExecRunner_Timeout(t *testing.T) {
	requireBinary(t, "sleep")

	runner := pixi.NewExecRunner("sleep", t.TempDir(), 100*time.Millisecond)

	start := time.Now()
	result, err := runner.Run(context.Background(), []string{"5"})
	if err == nil {
		t.Fatalf("expected timeout error, got result %+v", result)
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout message, got %q", err.Error())
	}
	if time.Since(start) > 3*time.Second {
		t.Error("process was not killed on timeout")
	}
}

func TestExecRunner_TimeoutKillsChildren(t *testing.T) {
	requireBinary(t, "sh")
	requireBinary(t, "sleep")

	runner := pixi.NewExecRunner("sh", t.TempDir(), 200*time.Millisecond)

	start := time.Now()
	result, err := runner.Run(context.Background(), []string{"-c", "sleep 4; true"})
	elapsed := time.Since(start)
	if err == nil {
		t.Fatalf("expected timeout error, got result %+v", result)
	}
	if !strings.Contains(err.Error(), "timed out after 200ms") {
		t.Errorf("expected timeout message, got %q", err.Error())
	}
	if elapsed > 3*time.Second {
		t.Errorf("run outlived its timeout: returned after %s", elapsed)
	}
}

func TestExecRunner_ContextCanceled(t *testing.T) {
	requireBinary(t, "sleep")

	runner := pixi.NewExecRunner("sleep", t.TempDir(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, []string{"5"})
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
}
