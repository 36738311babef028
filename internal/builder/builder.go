// Package builder turns a target into an artifact: it discovers the sources,
// compiles the stale ones in parallel and links the result when needed.
package builder

import (
	"context"
	"io"
	"os"
	"runtime"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/qobs-build/cbuild/internal/proc"
)

type Builder struct {
	runner proc.Runner
	jobs   int
	goos   string
	log    hclog.Logger

	stdout, stderr io.Writer
}

type Option func(*Builder)

// WithRunner replaces the process runner used for compilers and linkers
func WithRunner(r proc.Runner) Option {
	return func(b *Builder) { b.runner = r }
}

// WithJobs caps the number of concurrent compilations. Zero or less means no
// cap.
func WithJobs(n int) Option {
	return func(b *Builder) { b.jobs = n }
}

// WithGOOS sets the host OS that decides artifact extensions
func WithGOOS(goos string) Option {
	return func(b *Builder) { b.goos = goos }
}

func WithLogger(l hclog.Logger) Option {
	return func(b *Builder) { b.log = l }
}

// WithOutput redirects the output of compilers and linkers
func WithOutput(stdout, stderr io.Writer) Option {
	return func(b *Builder) { b.stdout, b.stderr = stdout, stderr }
}

func New(opts ...Option) *Builder {
	b := &Builder{
		runner: proc.Exec{},
		goos:   runtime.GOOS,
		log:    hclog.NewNullLogger(),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Result describes what a build did
type Result struct {
	Target   string
	Artifact string
	Compiled []string
	Skipped  []string
	Linked   bool
}

// UpToDate reports whether the build had nothing to do
func (r Result) UpToDate() bool {
	return len(r.Compiled) == 0 && !r.Linked
}

// Plan resolves t without building it
func (b *Builder) Plan(t Target) (*Plan, error) {
	return NewPlan(t, b.goos)
}

// Build compiles every stale source of t and links the artifact if it is
// missing or older than one of its objects. When a compilation fails the
// link step does not run, objects produced by sibling jobs stay on disk.
func (b *Builder) Build(ctx context.Context, t Target) (Result, error) {
	p, err := b.Plan(t)
	if err != nil {
		return Result{}, err
	}
	return b.Execute(ctx, p)
}

// Execute runs a plan produced by Plan
func (b *Builder) Execute(ctx context.Context, p *Plan) (Result, error) {
	res := Result{Target: p.Target.displayName(), Artifact: p.Link.Artifact}
	log := b.log.With("target", res.Target)
	log.Debug("planned", "sources", len(p.Inputs), "artifact", p.Link.Artifact)

	if err := prepareDirs(p); err != nil {
		return res, err
	}

	outputs, err := b.compileAll(ctx, p)
	if err != nil {
		return res, err
	}
	for i, out := range outputs {
		if out.Compiled {
			res.Compiled = append(res.Compiled, p.Inputs[i].Source)
		} else {
			res.Skipped = append(res.Skipped, p.Inputs[i].Source)
		}
	}

	res.Linked, err = b.link(ctx, p, outputs)
	return res, err
}

// BuildAll builds independent targets concurrently and returns their results
// in the same order. Every target runs to completion, the first error wins.
func (b *Builder) BuildAll(ctx context.Context, targets []Target) ([]Result, error) {
	results := make([]Result, len(targets))
	var eg errgroup.Group
	for i, t := range targets {
		eg.Go(func() error {
			res, err := b.Build(ctx, t)
			results[i] = res
			return err
		})
	}
	return results, eg.Wait()
}
