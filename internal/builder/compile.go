package builder

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/qobs-build/cbuild/internal/msg"
)

// needsCompile reports whether the object is missing or older than its source
func (f *InputFile) needsCompile() (bool, error) {
	if f.fullRebuild {
		return true, nil
	}

	objInfo, err := os.Stat(f.Object)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	} else if err != nil {
		return false, &FSError{Op: "stat", Path: f.Object, Err: err}
	}

	srcInfo, err := os.Stat(f.Source)
	if err != nil {
		return false, &FSError{Op: "stat", Path: f.Source, Err: err}
	}
	return srcInfo.ModTime().After(objInfo.ModTime()), nil
}

func (b *Builder) compile(ctx context.Context, p *Plan, f *InputFile) (OutputFile, error) {
	stale, err := f.needsCompile()
	if err != nil {
		return OutputFile{}, err
	}
	if !stale {
		b.log.Debug("object is up to date", "src", f.Source, "obj", f.Object)
		return OutputFile{Path: f.Object}, nil
	}

	cmd := f.Command
	cmd.Stdout, cmd.Stderr = b.stdout, b.stderr
	msg.Status("Compiling", "%s", p.Rel(f.Source))
	b.log.Debug("compile", "cmd", cmd.String())

	if err := b.runner.Run(ctx, &cmd); err != nil {
		return OutputFile{}, &CompileError{Source: p.Rel(f.Source), Err: err}
	}
	return OutputFile{Path: f.Object, Compiled: true}, nil
}

// compileAll compiles every stale input concurrently. A failure does not
// cancel jobs that are already running; the first error is returned once all
// of them have finished.
func (b *Builder) compileAll(ctx context.Context, p *Plan) ([]OutputFile, error) {
	outputs := make([]OutputFile, len(p.Inputs))

	var eg errgroup.Group
	if b.jobs > 0 {
		eg.SetLimit(b.jobs)
	}
	for i := range p.Inputs {
		eg.Go(func() error {
			out, err := b.compile(ctx, p, &p.Inputs[i])
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// prepareDirs creates the cache directory and the parent of every object
func prepareDirs(p *Plan) error {
	dirs := map[string]struct{}{p.Target.objDir(): {}}
	for _, in := range p.Inputs {
		dirs[filepath.Dir(in.Object)] = struct{}{}
	}
	for dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &FSError{Op: "mkdir", Path: dir, Err: err}
		}
	}
	return nil
}
