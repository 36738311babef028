package builder

import (
	"errors"
	"fmt"

	"github.com/qobs-build/cbuild/internal/proc"
	"github.com/qobs-build/cbuild/internal/toolchain"
)

// Kind classifies a build failure
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindSpawn
	KindProcess
	KindFilesystem
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindSpawn:
		return "spawn"
	case KindProcess:
		return "process"
	case KindFilesystem:
		return "filesystem"
	default:
		return "unknown"
	}
}

// KindOf digs through wrapped errors for the underlying kind
func KindOf(err error) Kind {
	var (
		cfgErr   *toolchain.ConfigError
		spawnErr *proc.SpawnError
		exitErr  *proc.ExitError
		waitErr  *proc.WaitError
		fsErr    *FSError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &cfgErr):
		return KindConfiguration
	case errors.As(err, &spawnErr):
		return KindSpawn
	case errors.As(err, &exitErr), errors.As(err, &waitErr):
		return KindProcess
	case errors.As(err, &fsErr):
		return KindFilesystem
	}
	return KindUnknown
}

// FSError is a stat, mkdir or directory walk failure
type FSError struct {
	Op   string
	Path string
	Err  error
}

func (e *FSError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FSError) Unwrap() error { return e.Err }

// CompileError is a failed compilation of Source
type CompileError struct {
	Source string
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile `%s`; compilation aborted: %v", e.Source, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// LinkError is a failed link of Artifact
type LinkError struct {
	Artifact string
	Err      error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link `%s`: %v", e.Artifact, e.Err)
}

func (e *LinkError) Unwrap() error { return e.Err }
