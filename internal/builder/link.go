package builder

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/qobs-build/cbuild/internal/msg"
	"github.com/qobs-build/cbuild/internal/toolchain"
)

// needsLink reports whether the artifact is missing or older than any object
func needsLink(artifact string, objects []OutputFile) (bool, error) {
	artInfo, err := os.Stat(artifact)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	} else if err != nil {
		return false, &FSError{Op: "stat", Path: artifact, Err: err}
	}

	for _, obj := range objects {
		if obj.Compiled {
			return true, nil
		}
		info, err := os.Stat(obj.Path)
		if err != nil {
			return false, &FSError{Op: "stat", Path: obj.Path, Err: err}
		}
		if info.ModTime().After(artInfo.ModTime()) {
			return true, nil
		}
	}
	return false, nil
}

func (b *Builder) link(ctx context.Context, p *Plan, objects []OutputFile) (bool, error) {
	if !p.Target.FullRebuild {
		stale, err := needsLink(p.Link.Artifact, objects)
		if err != nil {
			return false, err
		}
		if !stale {
			b.log.Debug("artifact is up to date", "artifact", p.Link.Artifact)
			return false, nil
		}
	}

	dir := filepath.Dir(p.Link.Artifact)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, &FSError{Op: "mkdir", Path: dir, Err: err}
	}
	// ar adds to an existing archive, members of removed sources would stay
	if p.Target.Type == toolchain.StaticLibrary {
		if err := os.Remove(p.Link.Artifact); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return false, &FSError{Op: "remove", Path: p.Link.Artifact, Err: err}
		}
	}

	cmd := p.Link.Command
	cmd.Stdout, cmd.Stderr = b.stdout, b.stderr
	msg.Status("Linking", "%s", p.Rel(p.Link.Artifact))
	b.log.Debug("link", "cmd", cmd.String())

	if err := b.runner.Run(ctx, &cmd); err != nil {
		return false, &LinkError{Artifact: p.Rel(p.Link.Artifact), Err: err}
	}
	return true, nil
}
