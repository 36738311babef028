package gen

import (
	"context"
	"encoding/json"

	"github.com/qobs-build/cbuild/internal/builder"
)

// compileCommand is one entry of a JSON compilation database
type compileCommand struct {
	Directory string   `json:"directory"`
	Arguments []string `json:"arguments"`
	File      string   `json:"file"`
	Output    string   `json:"output"`
}

// CompDBGen writes compile_commands.json for editors and language servers.
// There is nothing to invoke.
type CompDBGen struct {
	entries []compileCommand
}

func (g *CompDBGen) BuildFile() string { return "compile_commands.json" }

func (g *CompDBGen) AddPlan(p *builder.Plan) {
	for _, in := range p.Inputs {
		args := make([]string, 0, len(in.Command.Args)+1)
		args = append(args, in.Command.Path)
		args = append(args, in.Command.Args...)
		g.entries = append(g.entries, compileCommand{
			Directory: in.Command.Dir,
			Arguments: args,
			File:      in.Source,
			Output:    in.Object,
		})
	}
}

func (g *CompDBGen) Generate(string) (string, error) {
	entries := g.entries
	if entries == nil {
		entries = []compileCommand{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

func (g *CompDBGen) Invoke(context.Context, string) error { return nil }
