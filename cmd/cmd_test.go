package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qobs-build/cbuild/internal/builder"
	"github.com/qobs-build/cbuild/internal/config"
	"github.com/qobs-build/cbuild/internal/toolchain"
)

func TestEnumValue(t *testing.T) {
	e := NewEnumValue("b", map[string]string{"a": "first", "b": "", "c": "third"})
	assert.Equal(t, []string{"b", "a", "c"}, e.AllowedKeys())
	assert.Equal(t, "[b, a, c]", e.HelpString())

	require.NoError(t, e.Set("c"))
	assert.Equal(t, "c", e.Value())
	assert.ErrorContains(t, e.Set("d"), "must be one of: b, a, c")
	assert.Equal(t, "c", e.String())

	items, _ := e.CompletionFunc()(nil, nil, "")
	assert.Equal(t, []string{"b", "a\tfirst", "c\tthird"}, items)
	items, _ = e.CompletionFunc()(nil, nil, "c")
	assert.Equal(t, []string{"c\tthird"}, items)

	assert.Panics(t, func() { NewEnumValue("x", map[string]string{"a": ""}) })
}

func TestToolchainFlagNamesParse(t *testing.T) {
	for _, name := range flagToolchain.AllowedKeys() {
		if name == "auto" {
			continue
		}
		_, err := toolchain.ParseFamily(name)
		assert.NoError(t, err, name)
	}
}

func TestConfigTemplate(t *testing.T) {
	dir := t.TempDir()
	env := config.NewConfigEnv(dir, "debug")
	env.TargetOS = "linux"

	cases := []struct {
		lib    bool
		typ    toolchain.BinaryType
		output string
	}{
		{false, toolchain.Executable, "build/hello"},
		{true, toolchain.StaticLibrary, "build/libhello.a"},
	}
	for _, tc := range cases {
		cfg, err := config.ParseTOML(strings.NewReader(configTemplate("hello", tc.lib)), env)
		require.NoError(t, err)
		assert.Equal(t, "hello", cfg.Project.Name)

		targets, err := cfg.BuildTargets(config.Options{BaseDir: dir, Toolchain: "gcc"})
		require.NoError(t, err)
		require.Len(t, targets, 1)
		assert.Equal(t, tc.typ, targets[0].Type)
		assert.Equal(t, tc.output, targets[0].Output)
		assert.Equal(t, []string{"m"}, targets[0].Libs)
		assert.Equal(t, []toolchain.WarningFlag{toolchain.WarnAll, toolchain.WarnExtra}, targets[0].Flags.Warnings)
	}
}

func TestInitIn(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, initIn(dir, "hello", false))

	for _, name := range []string{config.FileNames[0], "src/main.c", ".gitignore"} {
		assert.FileExists(t, filepath.Join(dir, filepath.FromSlash(name)))
	}
	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(data), builder.DefaultCacheDir+"/")

	// existing files are left alone
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "main.c"), []byte("keep"), 0o644))
	require.NoError(t, initIn(dir, "hello", false))
	data, err = os.ReadFile(filepath.Join(dir, "src", "main.c"))
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}

func TestInitLibrary(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "lib")
	require.NoError(t, initIn(dir, "lib", true))
	for _, name := range []string{"src/hello_world.c", "src/hello_world.h"} {
		assert.FileExists(t, filepath.Join(dir, filepath.FromSlash(name)))
	}
	assert.NoFileExists(t, filepath.Join(dir, "src", "main.c"))
}

func TestAllUpToDate(t *testing.T) {
	fresh := builder.Result{Target: "a", Skipped: []string{"x.o"}}
	assert.True(t, allUpToDate([]builder.Result{fresh}))
	assert.False(t, allUpToDate([]builder.Result{fresh, {Target: "b", Linked: true}}))
}
