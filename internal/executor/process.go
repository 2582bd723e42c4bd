package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"time"
)

// ErrTimeout indicates a case's command did not exit within its time bound.
var ErrTimeout = errors.New("command timed out")

// ErrEmptyCommand indicates an argument vector with no program.
var ErrEmptyCommand = errors.New("empty argument vector")

// LaunchFailureKind classifies why a program could not be started.
type LaunchFailureKind string

const (
	LaunchNotFound         LaunchFailureKind = "executable-not-found"
	LaunchPermissionDenied LaunchFailureKind = "permission-denied"
	LaunchOther            LaunchFailureKind = "other"
)

// LaunchError reports a program that could not be located or started.
type LaunchError struct {
	Program string
	Kind    LaunchFailureKind
	Err     error
}

// Error implements the error interface for LaunchError.
func (e *LaunchError) Error() string {
	return fmt.Sprintf("could not launch %q (%s): %v", e.Program, e.Kind, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *LaunchError) Unwrap() error {
	return e.Err
}

// CommandRunner runs an argument vector and returns its captured stdout.
type CommandRunner interface {
	Run(ctx context.Context, argv []string) (stdout string, err error)
}

// ProcessRunner executes argument vectors as real subprocesses.
// Only stdout is captured; the exit status is not inspected.
type ProcessRunner struct {
	WorkDir string    // Working directory for commands (empty = current dir)
	Stderr  io.Writer // Where child stderr goes (nil = discarded)
}

// NewProcessRunner creates a ProcessRunner that forwards child stderr to os.Stderr.
func NewProcessRunner(workDir string) *ProcessRunner {
	return &ProcessRunner{
		WorkDir: workDir,
		Stderr:  os.Stderr,
	}
}

// Run starts argv[0] with argv[1:] and blocks until it exits. If ctx ends
// first the child is killed and ctx.Err() is returned with whatever stdout
// was captured so far.
func (r *ProcessRunner) Run(ctx context.Context, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", ErrEmptyCommand
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if r.WorkDir != "" {
		cmd.Dir = r.WorkDir
	}
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = r.Stderr
	// Keep Wait from blocking on grandchildren that inherited stdout.
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", classifyLaunchError(argv[0], err)
	}

	err := cmd.Wait()
	if ctx.Err() != nil {
		return stdout.String(), ctx.Err()
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) && !errors.Is(err, exec.ErrWaitDelay) {
		return stdout.String(), err
	}
	return stdout.String(), nil
}

// classifyLaunchError wraps a Start failure in a LaunchError.
func classifyLaunchError(program string, err error) *LaunchError {
	kind := LaunchOther
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		kind = LaunchNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = LaunchPermissionDenied
	}
	return &LaunchError{Program: program, Kind: kind, Err: err}
}
