package builder

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/qobs-build/cbuild/internal/proc"
	"github.com/qobs-build/cbuild/internal/toolchain"
)

// InputFile is one source with its object and the complete compile command,
// so it can be compiled without looking back at the target
type InputFile struct {
	Source  string
	Object  string
	Command proc.Command

	fullRebuild bool
}

// OutputFile is a produced (or already up to date) object file
type OutputFile struct {
	Path     string
	Compiled bool
}

// LinkStep is the command turning every object of a target into its artifact
type LinkStep struct {
	Artifact string
	Objects  []string
	Command  proc.Command
}

// Plan is a target resolved against the filesystem. Generators write it out,
// the builder executes it.
type Plan struct {
	Target Target
	Inputs []InputFile
	Link   LinkStep
}

// NewPlan discovers the target's sources and assembles every command needed to
// build it. Configuration problems surface here, before anything runs.
func NewPlan(t Target, goos string) (*Plan, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	sources, err := t.discoverSources()
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, &toolchain.ConfigError{Op: "target " + t.displayName(), Detail: "no source files found"}
	}

	tc := t.Toolchain
	compileOpts := toolchain.CompileOptions{
		OptLevel: t.OptLevel,
		Type:     t.Type,
		Flags:    t.Flags.Clone(),
		Includes: resolveAll(t, t.Includes),
	}

	plan := &Plan{Target: t, Inputs: make([]InputFile, 0, len(sources))}
	owners := make(map[string]string, len(sources))
	objects := make([]string, 0, len(sources))

	for _, src := range sources {
		obj := t.ObjectPath(src)
		if other, ok := owners[obj]; ok {
			return nil, &toolchain.ConfigError{
				Op:     "target " + t.displayName(),
				Detail: fmt.Sprintf("`%s` and `%s` compile to the same object `%s`", other, src, obj),
			}
		}
		owners[obj] = src
		objects = append(objects, obj)

		plan.Inputs = append(plan.Inputs, InputFile{
			Source: src,
			Object: obj,
			Command: proc.Command{
				Path: tc.Compiler(),
				Args: tc.CompileArgs(src, obj, compileOpts),
				Dir:  t.BaseDir,
			},
			fullRebuild: t.FullRebuild,
		})
	}

	linker, err := tc.Linker(t.Type)
	if err != nil {
		return nil, err
	}
	artifact := t.ArtifactPath(goos)
	linkArgs, err := tc.LinkArgs(artifact, objects, toolchain.LinkOptions{
		Type:      t.Type,
		LibDirs:   resolveAll(t, t.LibDirs),
		Libs:      slices.Clone(t.Libs),
		LinkFlags: slices.Clone(t.LinkFlags),
	})
	if err != nil {
		return nil, err
	}
	plan.Link = LinkStep{
		Artifact: artifact,
		Objects:  objects,
		Command:  proc.Command{Path: linker, Args: linkArgs, Dir: t.BaseDir},
	}
	return plan, nil
}

// Rel shortens path for display, relative to the target's base directory
func (p *Plan) Rel(path string) string {
	if rel, err := filepath.Rel(p.Target.BaseDir, path); err == nil && filepath.IsLocal(rel) {
		return rel
	}
	return path
}

func resolveAll(t Target, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = t.resolve(p)
	}
	return out
}
