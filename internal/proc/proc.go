// Package proc spawns compilers, linkers and built programs and turns their
// failures into typed errors.
package proc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Command is a program invocation. Nil writers default to the current
// process's stdout and stderr, so compiler diagnostics pass straight through.
// A nil Stdin reads from the null device.
type Command struct {
	Path   string
	Args   []string
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command line for logs. It does not quote.
func (c *Command) String() string {
	var sb strings.Builder
	sb.WriteString(c.Path)
	for _, arg := range c.Args {
		sb.WriteByte(' ')
		sb.WriteString(arg)
	}
	return sb.String()
}

// Runner spawns a command and waits for it to exit
type Runner interface {
	Run(ctx context.Context, cmd *Command) error
}

// SpawnError means the executable could not be launched at all
type SpawnError struct {
	Program string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn %s: %v", e.Program, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExitError means the process ran and exited unsuccessfully. Code is -1 when
// it was terminated by a signal.
type ExitError struct {
	Program string
	Code    int
	Err     error
}

func (e *ExitError) Error() string {
	if e.Code < 0 {
		return fmt.Sprintf("%s terminated abnormally: %v", e.Program, e.Err)
	}
	return fmt.Sprintf("%s exited with status %d", e.Program, e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// WaitError means the process was started but its exit status could not be
// collected
type WaitError struct {
	Program string
	Err     error
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("failed to wait for %s: %v", e.Program, e.Err)
}

func (e *WaitError) Unwrap() error { return e.Err }

// Exec runs commands with os/exec
type Exec struct{}

func (Exec) Run(ctx context.Context, c *Command) error {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = c.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		return &SpawnError{Program: c.Path, Err: err}
	}
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Program: c.Path, Code: exitErr.ExitCode(), Err: err}
		}
		return &WaitError{Program: c.Path, Err: err}
	}
	return nil
}
