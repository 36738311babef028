package config

import (
	"fmt"
	"path/filepath"

	"github.com/qobs-build/cbuild/internal/builder"
	"github.com/qobs-build/cbuild/internal/toolchain"
)

// Options are command line overrides applied while turning sections into
// targets
type Options struct {
	BaseDir     string
	Release     bool
	FullRebuild bool
	// Toolchain overrides every target's toolchain unless empty or "auto"
	Toolchain string
}

// BuildTargets turns the [[target]] sections into builder targets. With more
// than one target each one gets its own directory inside the cache so their
// objects cannot collide.
func (cfg *Config) BuildTargets(opts Options) ([]builder.Target, error) {
	if len(cfg.Targets) == 0 {
		return nil, &toolchain.ConfigError{Op: "config", Detail: "no targets defined"}
	}

	cacheDir := cfg.Build.CacheDir
	if cacheDir == "" {
		cacheDir = builder.DefaultCacheDir
	}

	targets := make([]builder.Target, 0, len(cfg.Targets))
	seen := make(map[string]bool, len(cfg.Targets))
	for i, section := range cfg.Targets {
		t, err := section.target(opts)
		if err != nil {
			return nil, err
		}
		if t.Name == "" {
			t.Name = cfg.Project.Name
		}
		if t.Name == "" {
			t.Name = fmt.Sprintf("target%d", i+1)
		}
		if seen[t.Name] {
			return nil, &toolchain.ConfigError{Op: "config", Detail: fmt.Sprintf("duplicate target %q", t.Name)}
		}
		seen[t.Name] = true

		t.CacheDir = cacheDir
		if len(cfg.Targets) > 1 {
			t.CacheDir = filepath.Join(cacheDir, t.Name)
		}
		targets = append(targets, t)
	}
	return targets, nil
}

func (s TargetSection) target(opts Options) (builder.Target, error) {
	tc, err := s.toolchain(opts.Toolchain)
	if err != nil {
		return builder.Target{}, err
	}

	opt := toolchain.Debug
	if opts.Release {
		opt = toolchain.Release
	}
	if s.OptLevel != nil {
		if opt, err = toolchain.ParseOptLevel(fmt.Sprint(s.OptLevel)); err != nil {
			return builder.Target{}, err
		}
	}

	bt, err := toolchain.ParseBinaryType(s.Type)
	if err != nil {
		return builder.Target{}, err
	}

	flags := toolchain.CompilerFlags{Custom: s.Flags.Custom}
	if flags.Warnings, err = parseWarnings(s.Flags.Warnings); err != nil {
		return builder.Target{}, err
	}
	if flags.NoWarnings, err = parseWarnings(s.Flags.NoWarnings); err != nil {
		return builder.Target{}, err
	}

	files := s.Files
	if len(files) == 0 {
		files = []string{builder.DefaultSrcDir}
		if s.SrcDir != "" {
			files = []string{s.SrcDir}
		}
	}

	return builder.Target{
		Name:        s.Name,
		Toolchain:   tc,
		OptLevel:    opt,
		Type:        bt,
		Files:       files,
		Excludes:    s.Excludes,
		Output:      s.Output,
		SrcDir:      s.SrcDir,
		Includes:    s.Includes,
		LibDirs:     s.LibDirs,
		Libs:        s.Libs,
		LinkFlags:   s.LinkFlags,
		Flags:       flags,
		FullRebuild: opts.FullRebuild,
		BaseDir:     opts.BaseDir,
	}, nil
}

// toolchain picks the family named by the override, the section or its
// compiler, falling back to detection. A configured compiler path is always
// the executable that runs.
func (s TargetSection) toolchain(override string) (toolchain.ToolChain, error) {
	name := s.Toolchain
	if override != "" && override != "auto" {
		name = override
	}

	if name == "" || name == "auto" {
		switch {
		case s.Compiler != "" && s.Linker != "":
			return toolchain.NewCustom(s.Compiler, s.Linker), nil
		case s.Compiler != "":
			return toolchain.FromCompiler(s.Compiler), nil
		}
		return toolchain.Detect(), nil
	}

	family, err := toolchain.ParseFamily(name)
	if err != nil {
		return toolchain.ToolChain{}, err
	}
	if family != toolchain.Custom {
		tc := toolchain.New(family)
		if s.Compiler != "" {
			tc = tc.WithCompiler(s.Compiler)
		}
		return tc, nil
	}
	if s.Compiler == "" {
		return toolchain.ToolChain{}, &toolchain.ConfigError{Op: "config", Detail: fmt.Sprintf("target %q: custom toolchain needs a compiler", s.Name)}
	}
	return toolchain.NewCustom(s.Compiler, s.Linker), nil
}

func parseWarnings(names []string) ([]toolchain.WarningFlag, error) {
	var out []toolchain.WarningFlag
	for _, name := range names {
		w, err := toolchain.ParseWarning(name)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}
