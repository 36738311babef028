package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qobs-build/cbuild/internal/builder"
	"github.com/qobs-build/cbuild/internal/toolchain"
)

func testEnv(dir string) ConfigEnv {
	return ConfigEnv{
		TargetOS:   "linux",
		TargetArch: "amd64",
		Profile:    "debug",
		Environ:    map[string]string{"LDFLAGS": "-Wl,--as-needed", "HOME": "/home/me"},
		basedir:    dir,
	}
}

const tomlConfig = `
[project]
name = "demo"
build = 'target_os == "linux"'

[build]
cache-dir = "out"

[build.'profile == "release"']
jobs = 2

[[target]]
name = "app"
files = ["src"]
opt-level = 2
libs = ["m"]
link-flags = ["{{ environ.LDFLAGS }}"]

[target.flags]
warnings = ["all"]

[target.'target_os == "linux"']
libs = ["pthread"]
flags = { custom = ["-DLINUX"] }

[target.'target_os == "windows"']
libs = ["ws2_32"]

[[target]]
name = "lib"
type = "static"
output = "build/libx.a"
`

func TestParseTOML(t *testing.T) {
	cfg, err := ParseTOML(strings.NewReader(tomlConfig), testEnv(t.TempDir()))
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Project.Name)
	assert.Equal(t, "out", cfg.Build.CacheDir)
	assert.Zero(t, cfg.Build.Jobs)
	require.Len(t, cfg.Targets, 2)

	app := cfg.Targets[0]
	assert.Equal(t, "app", app.Name)
	assert.Equal(t, []string{"src"}, app.Files)
	assert.Equal(t, int64(2), app.OptLevel)
	assert.Equal(t, []string{"m", "pthread"}, app.Libs)
	assert.Equal(t, []string{"-Wl,--as-needed"}, app.LinkFlags)
	assert.Equal(t, []string{"all"}, app.Flags.Warnings)
	assert.Equal(t, []string{"-DLINUX"}, app.Flags.Custom)

	lib := cfg.Targets[1]
	assert.Equal(t, "static", lib.Type)
	assert.Equal(t, "build/libx.a", lib.Output)
	assert.Nil(t, lib.OptLevel)
}

func TestParseTOMLConditionalBuildSection(t *testing.T) {
	env := testEnv(t.TempDir())
	env.Profile = "release"
	cfg, err := ParseTOML(strings.NewReader(tomlConfig), env)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Build.Jobs)
}

func TestParseTOMLErrors(t *testing.T) {
	_, err := ParseTOML(strings.NewReader("[project\n"), testEnv(""))
	assert.Error(t, err)

	_, err = ParseTOML(strings.NewReader(`[[target]]
files = ["{{ nope( }}"]
`), testEnv(""))
	assert.ErrorContains(t, err, "expression")
}

func TestParseYAML(t *testing.T) {
	src := `
project:
  name: demo
build:
  jobs: 4
target:
  - name: app
    files: [src]
    opt-level: 3
    libs: [m]
    'target_os == "linux"':
      libs: [pthread]
    'target_os == "darwin"':
      libs: [objc]
    flags:
      warnings: [extra]
      custom: ["-DHOME={{ environ.HOME }}"]
`
	cfg, err := ParseYAML(strings.NewReader(src), testEnv(t.TempDir()))
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Project.Name)
	assert.Equal(t, 4, cfg.Build.Jobs)
	require.Len(t, cfg.Targets, 1)
	app := cfg.Targets[0]
	assert.Equal(t, []string{"m", "pthread"}, app.Libs)
	assert.Equal(t, []string{"extra"}, app.Flags.Warnings)
	assert.Equal(t, []string{"-DHOME=/home/me"}, app.Flags.Custom)
	assert.Equal(t, "3", fmt.Sprint(app.OptLevel))
}

func TestParseYAMLEmpty(t *testing.T) {
	cfg, err := ParseYAML(strings.NewReader(""), testEnv(""))
	require.NoError(t, err)
	assert.Empty(t, cfg.Targets)
}

func TestParseHCL(t *testing.T) {
	src := `
project {
  name = "demo"
}

build {
  cache_dir = "out"
}

target "app" {
  opt_level = 2
  files     = concat(["src"], target_os == "windows" ? ["win"] : ["posix"])
  libs      = target_os == "linux" ? ["m"] : ["c"]

  flags {
    warnings = ["all"]
    custom   = ["-DHOME=${env.HOME}"]
  }
}

target "tool" {
  type   = "static"
  output = "build/libtool.a"
}
`
	cfg, err := ParseHCL([]byte(src), "cbuild.hcl", testEnv(t.TempDir()))
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Project.Name)
	assert.Equal(t, "out", cfg.Build.CacheDir)
	require.Len(t, cfg.Targets, 2)

	app := cfg.Targets[0]
	assert.Equal(t, "app", app.Name)
	assert.Equal(t, "2", app.OptLevel)
	assert.Equal(t, []string{"src", "posix"}, app.Files)
	assert.Equal(t, []string{"m"}, app.Libs)
	assert.Equal(t, []string{"all"}, app.Flags.Warnings)
	assert.Equal(t, []string{"-DHOME=/home/me"}, app.Flags.Custom)

	assert.Nil(t, cfg.Targets[1].OptLevel)
	assert.Equal(t, "static", cfg.Targets[1].Type)
}

func TestParseHCLError(t *testing.T) {
	_, err := ParseHCL([]byte(`target "app" { bogus = 1 }`), "cbuild.hcl", testEnv(""))
	assert.ErrorContains(t, err, "cbuild.hcl")
}

func TestMergeStructs(t *testing.T) {
	dst := TargetSection{Name: "a", Libs: []string{"m"}, Flags: FlagsSection{Custom: []string{"-DA"}}}
	src := TargetSection{Output: "out", Libs: []string{"z"}, Flags: FlagsSection{Custom: []string{"-DB"}}}
	require.NoError(t, mergeStructs(&dst, src))

	assert.Equal(t, "a", dst.Name)
	assert.Equal(t, "out", dst.Output)
	assert.Equal(t, []string{"m", "z"}, dst.Libs)
	assert.Equal(t, []string{"-DA", "-DB"}, dst.Flags.Custom)

	assert.Error(t, mergeStructs(dst, src))
	assert.Error(t, mergeStructs(&dst, FlagsSection{}))
}

func TestBuildTargets(t *testing.T) {
	dir := t.TempDir()
	cfg, err := ParseTOML(strings.NewReader(tomlConfig), testEnv(dir))
	require.NoError(t, err)

	targets, err := cfg.BuildTargets(Options{BaseDir: dir, Toolchain: "clang", FullRebuild: true})
	require.NoError(t, err)
	require.Len(t, targets, 2)

	app := targets[0]
	assert.Equal(t, "app", app.Name)
	assert.Equal(t, toolchain.New(toolchain.Clang), app.Toolchain)
	assert.Equal(t, toolchain.O2, app.OptLevel)
	assert.Equal(t, toolchain.Executable, app.Type)
	assert.Equal(t, []toolchain.WarningFlag{toolchain.WarnAll}, app.Flags.Warnings)
	assert.Equal(t, filepath.Join("out", "app"), app.CacheDir)
	assert.Equal(t, dir, app.BaseDir)
	assert.True(t, app.FullRebuild)

	lib := targets[1]
	assert.Equal(t, toolchain.StaticLibrary, lib.Type)
	assert.Equal(t, toolchain.Debug, lib.OptLevel)
	assert.Equal(t, []string{builder.DefaultSrcDir}, lib.Files)
	assert.Equal(t, filepath.Join("out", "lib"), lib.CacheDir)
}

func TestBuildTargetsDefaults(t *testing.T) {
	cfg := &Config{
		Project: ProjectSection{Name: "demo"},
		Targets: []TargetSection{{Compiler: "/opt/bin/gcc"}},
	}
	targets, err := cfg.BuildTargets(Options{BaseDir: "/proj", Release: true})
	require.NoError(t, err)
	require.Len(t, targets, 1)

	tgt := targets[0]
	assert.Equal(t, "demo", tgt.Name)
	assert.Equal(t, toolchain.Release, tgt.OptLevel)
	assert.Equal(t, toolchain.New(toolchain.GCC).WithCompiler("/opt/bin/gcc"), tgt.Toolchain)
	assert.Equal(t, "/opt/bin/gcc", tgt.Toolchain.Compiler())
	assert.Equal(t, builder.DefaultCacheDir, tgt.CacheDir)
}

func TestBuildTargetsToolchains(t *testing.T) {
	cases := []struct {
		name    string
		section TargetSection
		want    toolchain.ToolChain
	}{
		{"family", TargetSection{Toolchain: "zig"}, toolchain.New(toolchain.Zig)},
		{"compiler and linker", TargetSection{Compiler: "tcc", Linker: "tcc-ld"}, toolchain.NewCustom("tcc", "tcc-ld")},
		{"custom", TargetSection{Toolchain: "custom", Compiler: "tcc"}, toolchain.NewCustom("tcc", "tcc")},
		{"unknown compiler", TargetSection{Compiler: "tcc"}, toolchain.NewCustom("tcc", "tcc")},
		{"compiler path", TargetSection{Compiler: "/opt/llvm-18/bin/clang"}, toolchain.New(toolchain.Clang).WithCompiler("/opt/llvm-18/bin/clang")},
		{"family with compiler", TargetSection{Toolchain: "gcc", Compiler: "/opt/gcc-13/bin/gcc"}, toolchain.New(toolchain.GCC).WithCompiler("/opt/gcc-13/bin/gcc")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.section.toolchain("auto")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCompilerPathIsKept(t *testing.T) {
	dir := t.TempDir()
	cfg, err := ParseTOML(strings.NewReader(`[[target]]
name = "app"
compiler = "/opt/llvm-18/bin/clang"
`), testEnv(dir))
	require.NoError(t, err)

	targets, err := cfg.BuildTargets(Options{BaseDir: dir})
	require.NoError(t, err)
	require.Len(t, targets, 1)
	tc := targets[0].Toolchain
	assert.Equal(t, toolchain.Clang, tc.Family)
	assert.Equal(t, "/opt/llvm-18/bin/clang", tc.Compiler())

	linker, err := tc.Linker(toolchain.Executable)
	require.NoError(t, err)
	assert.Equal(t, "/opt/llvm-18/bin/clang", linker)
}

func TestBuildTargetsErrors(t *testing.T) {
	cases := map[string]*Config{
		"no targets":        {},
		"duplicate names":   {Targets: []TargetSection{{Name: "a"}, {Name: "a"}}},
		"bad warning":       {Targets: []TargetSection{{Flags: FlagsSection{Warnings: []string{"everything"}}}}},
		"bad opt-level":     {Targets: []TargetSection{{OptLevel: "fast"}}},
		"bad type":          {Targets: []TargetSection{{Type: "plugin"}}},
		"bad toolchain":     {Targets: []TargetSection{{Toolchain: "tcc"}}},
		"custom no compile": {Targets: []TargetSection{{Toolchain: "custom"}}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := cfg.BuildTargets(Options{BaseDir: "/proj"})
			require.Error(t, err)
			assert.Equal(t, builder.KindConfiguration, builder.KindOf(err))
		})
	}
}

func TestRunBuildScript(t *testing.T) {
	env := testEnv(t.TempDir())
	assert.NoError(t, Config{}.RunBuildScript(env))
	assert.NoError(t, Config{Project: ProjectSection{Build: `target_os == "linux"`}}.RunBuildScript(env))
	assert.ErrorContains(t, Config{Project: ProjectSection{Name: "x", Build: `target_os == "plan9"`}}.RunBuildScript(env), "returned false")
	assert.Error(t, Config{Project: ProjectSection{Build: `nope(`}}.RunBuildScript(env))
}

func TestConfigEnvFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "version.txt"), []byte("hello world\n"), 0o644))
	env := testEnv(dir)

	data, err := env.ReadFile("version.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", data)

	_, err = env.ReadFile("../secret")
	assert.Error(t, err)

	dmp := diffmatchpatch.New()
	patch := dmp.PatchToText(dmp.PatchMake("hello world\n", "hello there\n"))
	applied, err := env.Patch("version.txt", patch)
	require.NoError(t, err)
	assert.True(t, applied)

	data, err = env.ReadFile("version.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello there\n", data)

	cfg := Config{Project: ProjectSection{Build: `ReadFile("version.txt") == "hello there\n"`}}
	assert.NoError(t, cfg.RunBuildScript(env))
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	_, err := Find(dir)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "cbuild.yaml"), nil, 0o644))
	path, err := Find(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cbuild.yaml"), path)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cbuild.toml"), nil, 0o644))
	path, err = Find(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Cbuild.toml"), path)
}

func TestParseConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"Cbuild.toml": "[project]\nname = \"from-toml\"\n",
		"cbuild.hcl":  "project {\n  name = \"from-hcl\"\n}\n",
		"cbuild.yml":  "project:\n  name: from-yaml\n",
	}
	want := map[string]string{"Cbuild.toml": "from-toml", "cbuild.hcl": "from-hcl", "cbuild.yml": "from-yaml"}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		cfg, err := ParseConfigFromFile(path, testEnv(dir))
		require.NoError(t, err, name)
		assert.Equal(t, want[name], cfg.Project.Name)
	}
}

func TestInterpolate(t *testing.T) {
	env := testEnv("")
	env.Profile = "release"

	out, err := env.interpolate(`{{ profile }}-{{ 1 + 2 }} {{profile == "release"}}`)
	require.NoError(t, err)
	assert.Equal(t, "release-3 true", out)

	out, err = env.interpolate("no placeholders")
	require.NoError(t, err)
	assert.Equal(t, "no placeholders", out)

	_, err = env.interpolate("{{ missing_var }}")
	assert.Error(t, err)

	ok, err := env.holds(`"x"`)
	require.NoError(t, err)
	assert.False(t, ok)
}
