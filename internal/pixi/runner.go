// Package pixi talks to the pixi package manager: running its CLI and
// reading its project manifest.
package pixi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"
)

// RunResult is what a finished process left behind.
type RunResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes the package manager with the given arguments.
//
// A returned error means the process could not be launched or did not run to
// completion. A non-zero exit code is reported through RunResult, not as an
// error.
type Runner interface {
	Run(ctx context.Context, args []string) (*RunResult, error)
}

// ExecRunner runs a binary directly through os/exec. Arguments are handed to
// the process as-is; no shell is involved.
type ExecRunner struct {
	Binary  string
	Dir     string
	Timeout time.Duration
}

// waitDelay bounds how long Run waits for output pipes to close after the
// process has been killed.
const waitDelay = 2 * time.Second

// NewExecRunner creates an ExecRunner. A zero timeout disables the deadline.
func NewExecRunner(binary, dir string, timeout time.Duration) *ExecRunner {
	return &ExecRunner{
		Binary:  binary,
		Dir:     dir,
		Timeout: timeout,
	}
}

func (r *ExecRunner) Run(ctx context.Context, args []string) (*RunResult, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Dir = r.Dir
	cmd.WaitDelay = waitDelay
	killProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Printf("[Pixi] Running %s %s", r.Binary, strings.Join(args, " "))

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s %s timed out after %s", r.Binary, firstArg(args), r.Timeout)
		}
		return nil, ctxErr
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
		return &RunResult{
			ExitCode: exitErr.ExitCode(),
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
		}, nil
	}

	return &RunResult{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// AddArgs builds the argument list for adding a package to a feature.
func AddArgs(pkg, feature string) []string {
	return []string{"add", pkg, "--feature", feature}
}
