package gen

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qobs-build/cbuild/internal/builder"
	"github.com/qobs-build/cbuild/internal/proc"
)

// NinjaGen writes one edge per object and one link edge per target. Every
// edge carries its full command line and ninja is started in the project
// directory, so relative flags resolve the same way as in a native build.
// Its log and deps files go to the directory holding build.ninja.
type NinjaGen struct {
	runner proc.Runner
	goos   string
	plans  []*builder.Plan
}

func (g *NinjaGen) BuildFile() string { return "build.ninja" }

var ninjaPathEscaper = strings.NewReplacer("$", "$$", ":", "$:", " ", "$ ", "\n", "$\n")

func quote(s string) string { return ninjaPathEscaper.Replace(s) }

var ninjaVarEscaper = strings.NewReplacer("$", "$$", "\n", "$\n")

func (g *NinjaGen) AddPlan(p *builder.Plan) {
	g.plans = append(g.plans, p)
}

// workDir is the directory every command of the added plans runs in. Plans
// with different working directories cannot share one build.ninja.
func (g *NinjaGen) workDir() (string, error) {
	var dir string
	for _, p := range g.plans {
		for _, in := range p.Inputs {
			if err := sameDir(&dir, in.Command.Dir); err != nil {
				return "", err
			}
		}
		if err := sameDir(&dir, p.Link.Command.Dir); err != nil {
			return "", err
		}
	}
	return dir, nil
}

func sameDir(dir *string, d string) error {
	if *dir == "" {
		*dir = d
	} else if d != *dir {
		return fmt.Errorf("commands run in both %s and %s, ninja needs a single working directory", *dir, d)
	}
	return nil
}

func (g *NinjaGen) Generate(dir string) (string, error) {
	if _, err := g.workDir(); err != nil {
		return "", err
	}

	var sb strings.Builder

	writeln(&sb, "ninja_required_version = 1.1")
	writeln(&sb, "builddir = ", ninjaVarEscaper.Replace(dir))
	writeln(&sb)

	write(&sb,
		`rule compile
  command = $cmd
  description = Compiling $in
`)
	write(&sb,
		`rule link
  command = $cmd
  description = Linking $out
`)
	writeln(&sb)

	var defaults []string
	for _, p := range g.plans {
		for _, in := range p.Inputs {
			writeln(&sb, "build ", quote(in.Object), ": compile ", quote(in.Source))
			writeln(&sb, "  cmd = ", ninjaVarEscaper.Replace(commandLine(in.Command.Path, in.Command.Args, g.goos)))
		}

		link := p.Link
		write(&sb, "build ", quote(link.Artifact), ": link")
		for _, obj := range link.Objects {
			write(&sb, " ", quote(obj))
		}
		writeln(&sb)
		writeln(&sb, "  cmd = ", ninjaVarEscaper.Replace(commandLine(link.Command.Path, link.Command.Args, g.goos)))
		writeln(&sb)

		defaults = append(defaults, quote(link.Artifact))
	}

	if len(defaults) > 0 {
		writeln(&sb, "default ", strings.Join(defaults, " "))
	}
	return sb.String(), nil
}

func (g *NinjaGen) Invoke(ctx context.Context, dir string) error {
	wd, err := g.workDir()
	if err != nil {
		return err
	}
	if wd == "" {
		wd = dir
	}
	return g.runner.Run(ctx, &proc.Command{
		Path: "ninja",
		Args: []string{"-f", filepath.Join(dir, g.BuildFile())},
		Dir:  wd,
	})
}
