package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// hclFile is the top-level structure of cbuild.hcl. Conditions are plain HCL
// expressions over target_os, target_arch, profile and env.
type hclFile struct {
	Project *hclProject  `hcl:"project,block"`
	Build   *hclBuild    `hcl:"build,block"`
	Targets []*hclTarget `hcl:"target,block"`
}

type hclProject struct {
	Name        string   `hcl:"name,optional"`
	Description string   `hcl:"description,optional"`
	Authors     []string `hcl:"authors,optional"`
	Build       string   `hcl:"build,optional"`
}

type hclBuild struct {
	CacheDir string `hcl:"cache_dir,optional"`
	Jobs     int    `hcl:"jobs,optional"`
}

type hclTarget struct {
	Name      string `hcl:"name,label"`
	Toolchain string `hcl:"toolchain,optional"`
	Compiler  string `hcl:"compiler,optional"`
	Linker    string `hcl:"linker,optional"`
	OptLevel  string `hcl:"opt_level,optional"`
	Type      string `hcl:"type,optional"`

	Files    []string `hcl:"files,optional"`
	Excludes []string `hcl:"excludes,optional"`
	Output   string   `hcl:"output,optional"`
	SrcDir   string   `hcl:"src_dir,optional"`

	Includes  []string `hcl:"includes,optional"`
	LibDirs   []string `hcl:"lib_dirs,optional"`
	Libs      []string `hcl:"libs,optional"`
	LinkFlags []string `hcl:"link_flags,optional"`

	Flags *hclFlags `hcl:"flags,block"`
}

type hclFlags struct {
	Warnings   []string `hcl:"warnings,optional"`
	NoWarnings []string `hcl:"no_warnings,optional"`
	Custom     []string `hcl:"custom,optional"`
}

func (env ConfigEnv) evalContext() *hcl.EvalContext {
	environ := cty.MapValEmpty(cty.String)
	if len(env.Environ) > 0 {
		vals := make(map[string]cty.Value, len(env.Environ))
		for k, v := range env.Environ {
			vals[k] = cty.StringVal(v)
		}
		environ = cty.MapVal(vals)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"target_os":   cty.StringVal(env.TargetOS),
			"target_arch": cty.StringVal(env.TargetArch),
			"profile":     cty.StringVal(env.Profile),
			"env":         environ,
		},
		Functions: map[string]function.Function{
			"concat":   stdlib.ConcatFunc,
			"contains": stdlib.ContainsFunc,
			"format":   stdlib.FormatFunc,
			"join":     stdlib.JoinFunc,
			"lower":    stdlib.LowerFunc,
			"upper":    stdlib.UpperFunc,
		},
	}
}

// ParseHCL parses a cbuild.hcl document. filename is only used in diagnostics.
func ParseHCL(src []byte, filename string, env ConfigEnv) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, env.evalContext(), &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	cfg := new(Config)
	if p := parsed.Project; p != nil {
		cfg.Project = ProjectSection{Name: p.Name, Description: p.Description, Authors: p.Authors, Build: p.Build}
	}
	if b := parsed.Build; b != nil {
		cfg.Build = BuildSection{CacheDir: b.CacheDir, Jobs: b.Jobs}
	}
	for _, t := range parsed.Targets {
		section := TargetSection{
			Name:      t.Name,
			Toolchain: t.Toolchain,
			Compiler:  t.Compiler,
			Linker:    t.Linker,
			Type:      t.Type,
			Files:     t.Files,
			Excludes:  t.Excludes,
			Output:    t.Output,
			SrcDir:    t.SrcDir,
			Includes:  t.Includes,
			LibDirs:   t.LibDirs,
			Libs:      t.Libs,
			LinkFlags: t.LinkFlags,
		}
		if t.OptLevel != "" {
			section.OptLevel = t.OptLevel
		}
		if f := t.Flags; f != nil {
			section.Flags = FlagsSection{Warnings: f.Warnings, NoWarnings: f.NoWarnings, Custom: f.Custom}
		}
		cfg.Targets = append(cfg.Targets, section)
	}
	return cfg, nil
}
