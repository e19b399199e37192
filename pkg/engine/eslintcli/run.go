package eslintcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single eslint invocation.
const DefaultTimeout = 30 * time.Second

// command is one eslint invocation.
type command struct {
	Binary string
	Args   []string
	Dir    string
	Env    []string
	Stdin  string
}

// runner executes a command and returns its stdout.
type runner func(ctx context.Context, cmd command) ([]byte, error)

// RunError is returned when eslint fails rather than reporting problems.
type RunError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("eslint %s failed", strings.Join(e.Args, " "))
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(" with exit code %d", e.ExitCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += "\n" + stderr
	}
	return msg
}

func (e *RunError) Unwrap() error { return e.Err }

// execRunner runs eslint as a child process. Exit codes 0 and 1 mean the
// run completed; 1 only says that problems were found.
func execRunner(timeout time.Duration) runner {
	return func(ctx context.Context, c command) ([]byte, error) {
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		cmdCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		cmd := exec.CommandContext(cmdCtx, c.Binary, c.Args...)
		cmd.Dir = c.Dir
		cmd.Env = append(os.Environ(), c.Env...)
		cmd.Stdin = strings.NewReader(c.Stdin)

		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		err := cmd.Run()

		if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
			return nil, &RunError{Args: c.Args, Stderr: stderr.String(), Err: context.DeadlineExceeded}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
				return stdout.Bytes(), nil
			}
			runErr := &RunError{Args: c.Args, Stderr: stderr.String(), Err: err}
			if exitErr != nil {
				runErr.ExitCode = exitErr.ExitCode()
			}
			return nil, runErr
		}
		return stdout.Bytes(), nil
	}
}
