// Package gen writes build plans out for other build tools.
package gen

import (
	"context"
	"fmt"
	"runtime"

	"github.com/qobs-build/cbuild/internal/builder"
	"github.com/qobs-build/cbuild/internal/proc"
)

const (
	GeneratorNinja  = "ninja"
	GeneratorCompDB = "compdb"
)

// Generator collects plans and renders them into BuildFile. dir is the
// directory the build file is written to.
type Generator interface {
	AddPlan(p *builder.Plan)
	Generate(dir string) (string, error)
	BuildFile() string
	Invoke(ctx context.Context, dir string) error
}

// New creates the generator called name. Invoking it runs external tools
// through r.
func New(name string, r proc.Runner) (Generator, error) {
	switch name {
	case GeneratorNinja:
		return &NinjaGen{runner: r, goos: runtime.GOOS}, nil
	case GeneratorCompDB:
		return &CompDBGen{}, nil
	default:
		return nil, fmt.Errorf("unknown generator %q", name)
	}
}
