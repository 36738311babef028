package project

import (
	"context"
	"errors"
	"io"

	"github.com/qobs-build/cbuild/internal/msg"
	"github.com/qobs-build/cbuild/internal/proc"
)

type RunStatus int

const (
	RunSuccess RunStatus = iota
	RunFailure
	// RunUnknown means the program started but its exit could not be observed
	RunUnknown
)

func (s RunStatus) String() string {
	switch s {
	case RunSuccess:
		return "success"
	case RunFailure:
		return "failure"
	default:
		return "unknown"
	}
}

type RunResult struct {
	Status RunStatus
	// Code is the exit code, -1 when the program was killed or never observed
	Code int
}

// RunRequest describes a built program to run
type RunRequest struct {
	Artifact string
	Args     []string
	Dir      string
	// Prefix is put in front of every output line
	Prefix string

	Stdin          io.Reader
	Stdout, Stderr io.Writer
}

// Run spawns a built program and streams its stdout and stderr line by line.
// Only a failure to start it is returned as an error, everything after that
// is reported through the result.
func Run(ctx context.Context, r proc.Runner, req RunRequest) (RunResult, error) {
	stdout := msg.NewPrefixWriter(req.Prefix, req.Stdout)
	stderr := msg.NewPrefixWriter(req.Prefix, req.Stderr)

	err := r.Run(ctx, &proc.Command{
		Path:   req.Artifact,
		Args:   req.Args,
		Dir:    req.Dir,
		Stdin:  req.Stdin,
		Stdout: stdout,
		Stderr: stderr,
	})
	stdout.Flush()
	stderr.Flush()

	var (
		exitErr *proc.ExitError
		waitErr *proc.WaitError
	)
	switch {
	case err == nil:
		return RunResult{Status: RunSuccess}, nil
	case errors.As(err, &exitErr):
		return RunResult{Status: RunFailure, Code: exitErr.Code}, nil
	case errors.As(err, &waitErr):
		return RunResult{Status: RunUnknown, Code: -1}, nil
	default:
		return RunResult{Status: RunUnknown, Code: -1}, err
	}
}
