// Package subproc runs child processes under a hard wall-clock bound.
package subproc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"
)

// reapDelay is how long Wait may linger after the kill signal before the
// child's pipes are forcibly closed. Keeps a misbehaving child from holding
// the request past its bound.
const reapDelay = 5 * time.Second

// TimeoutError reports that the child exceeded its wall-clock bound and was
// terminated.
type TimeoutError struct {
	Path  string
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s exceeded %s timeout and was killed", e.Path, e.Limit)
}

// NotFoundError reports a missing executable.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("executable not found: %s", e.Path)
}

// ExitError reports a child that ran to completion with a non-zero status.
type ExitError struct {
	Path   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Path, e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Run executes path with args, capturing stdout and stderr, and enforces
// timeout as a hard bound. The child is always reaped on every exit path;
// the call never blocks indefinitely.
func Run(ctx context.Context, path string, args []string, timeout time.Duration) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = reapDelay

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}

	if runCtx.Err() == context.DeadlineExceeded {
		return "", &TimeoutError{Path: path, Limit: timeout}
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return "", &NotFoundError{Path: path}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return "", &ExitError{Path: path, Code: exitErr.ExitCode(), Stderr: stderr.String()}
	}
	return "", fmt.Errorf("run %s: %w", path, err)
}
