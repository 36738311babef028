// Package project loads a project directory and drives its targets through
// the builder or one of the generators.
package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/hashicorp/go-hclog"

	"github.com/qobs-build/cbuild/internal/builder"
	"github.com/qobs-build/cbuild/internal/builder/gen"
	"github.com/qobs-build/cbuild/internal/config"
	"github.com/qobs-build/cbuild/internal/msg"
	"github.com/qobs-build/cbuild/internal/proc"
	"github.com/qobs-build/cbuild/internal/toolchain"
)

// GeneratorNative builds directly instead of writing a build file
const GeneratorNative = "cbuild"

var (
	errNoExecutable = errors.New("project has no executable target to run")
	errCantRunLib   = errors.New("can't run a library target")
)

type Options struct {
	Release     bool
	FullRebuild bool
	// Toolchain forces a family for every target, "" or "auto" keeps the config
	Toolchain string
	Generator string
	// Target limits the build to one target
	Target string
	// Jobs overrides [build] jobs when positive
	Jobs int
	// ConfigFile is used instead of looking one up in the project directory
	ConfigFile string

	Logger hclog.Logger
	Runner proc.Runner

	// standard streams of compilers and the program started by BuildAndRun
	Stdin          io.Reader
	Stdout, Stderr io.Writer
}

type Project struct {
	cfg     *config.Config
	basedir string
	env     config.ConfigEnv
	opts    Options
}

// Open loads the project in path
func Open(path string, opts Options) (*Project, error) {
	var err error
	path, err = filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.Runner == nil {
		opts.Runner = proc.Exec{}
	}
	if opts.Generator == "" {
		opts.Generator = GeneratorNative
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	file := opts.ConfigFile
	if file == "" {
		if file, err = config.Find(path); err != nil {
			return nil, err
		}
	} else if file, err = filepath.Abs(file); err != nil {
		return nil, err
	}

	profile := "debug"
	if opts.Release {
		profile = "release"
	}
	env := config.NewConfigEnv(path, profile)
	cfg, err := config.ParseConfigFromFile(file, env)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	opts.Logger.Debug("loaded config", "file", file, "targets", len(cfg.Targets))

	return &Project{cfg: cfg, basedir: path, env: env, opts: opts}, nil
}

func (p *Project) Name() string { return p.cfg.Project.Name }

func (p *Project) Dir() string { return p.basedir }

// Targets are the project's targets after command line overrides, limited to
// the selected one if any
func (p *Project) Targets() ([]builder.Target, error) {
	targets, err := p.cfg.BuildTargets(config.Options{
		BaseDir:     p.basedir,
		Release:     p.opts.Release,
		FullRebuild: p.opts.FullRebuild,
		Toolchain:   p.opts.Toolchain,
	})
	if err != nil {
		return nil, err
	}
	if p.opts.Target == "" {
		return targets, nil
	}

	i := slices.IndexFunc(targets, func(t builder.Target) bool { return t.Name == p.opts.Target })
	if i < 0 {
		names := make([]string, len(targets))
		for j, t := range targets {
			names[j] = t.Name
		}
		return nil, &toolchain.ConfigError{Op: "select target", Detail: fmt.Sprintf("unknown target %q, known targets: %v", p.opts.Target, names)}
	}
	return targets[i : i+1], nil
}

func (p *Project) builder() *builder.Builder {
	jobs := p.cfg.Build.Jobs
	if p.opts.Jobs > 0 {
		jobs = p.opts.Jobs
	}
	return builder.New(
		builder.WithRunner(p.opts.Runner),
		builder.WithJobs(jobs),
		builder.WithLogger(p.opts.Logger),
		builder.WithOutput(p.opts.Stdout, p.opts.Stderr),
	)
}

// cacheRoot is where generated build files go
func (p *Project) cacheRoot() string {
	dir := p.cfg.Build.CacheDir
	if dir == "" {
		dir = builder.DefaultCacheDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(p.basedir, dir)
}

// Build runs the build script and then builds every selected target, or
// hands them to the configured generator. Generators return no results.
func (p *Project) Build(ctx context.Context) ([]builder.Result, error) {
	if err := p.cfg.RunBuildScript(p.env); err != nil {
		return nil, err
	}

	targets, err := p.Targets()
	if err != nil {
		return nil, err
	}

	b := p.builder()
	if p.opts.Generator == GeneratorNative {
		return b.BuildAll(ctx, targets)
	}
	return nil, p.generate(ctx, b, targets)
}

func (p *Project) generate(ctx context.Context, b *builder.Builder, targets []builder.Target) error {
	g, err := gen.New(p.opts.Generator, p.opts.Runner)
	if err != nil {
		return err
	}
	for _, t := range targets {
		plan, err := b.Plan(t)
		if err != nil {
			return err
		}
		g.AddPlan(plan)
	}

	// compile_commands.json is looked up next to the sources
	dir := p.cacheRoot()
	if p.opts.Generator == gen.GeneratorCompDB {
		dir = p.basedir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	out, err := g.Generate(dir)
	if err != nil {
		return err
	}
	buildFile := filepath.Join(dir, g.BuildFile())
	if err := os.WriteFile(buildFile, []byte(out), 0o644); err != nil {
		return err
	}
	msg.Info("wrote %s", p.rel(buildFile))

	return g.Invoke(ctx, dir)
}

// runnable picks the selected target, or the first executable
func (p *Project) runnable() (builder.Target, error) {
	targets, err := p.Targets()
	if err != nil {
		return builder.Target{}, err
	}
	if p.opts.Target != "" {
		if targets[0].Type != toolchain.Executable {
			return builder.Target{}, fmt.Errorf("%w (%s is a %s)", errCantRunLib, targets[0].Name, targets[0].Type)
		}
		return targets[0], nil
	}
	for _, t := range targets {
		if t.Type == toolchain.Executable {
			return t, nil
		}
	}
	return builder.Target{}, errNoExecutable
}

// BuildAndRun builds the project and runs its executable with args
func (p *Project) BuildAndRun(ctx context.Context, args []string) (RunResult, error) {
	target, err := p.runnable()
	if err != nil {
		return RunResult{}, err
	}
	if p.opts.Generator == gen.GeneratorCompDB {
		return RunResult{}, fmt.Errorf("the %s generator does not build anything to run", gen.GeneratorCompDB)
	}

	if _, err := p.Build(ctx); err != nil {
		return RunResult{}, err
	}

	artifact := target.ArtifactPath(runtime.GOOS)
	msg.Status("Running", "%s", p.rel(artifact))
	return Run(ctx, p.opts.Runner, RunRequest{
		Artifact: artifact,
		Args:     args,
		Dir:      p.basedir,
		Prefix:   "[" + p.rel(artifact) + "]: ",
		Stdin:    p.opts.Stdin,
		Stdout:   p.opts.Stdout,
		Stderr:   p.opts.Stderr,
	})
}

func (p *Project) rel(path string) string {
	if rel, err := filepath.Rel(p.basedir, path); err == nil && filepath.IsLocal(rel) {
		return filepath.ToSlash(rel)
	}
	return path
}
