package toolchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileArgsUnix(t *testing.T) {
	args := New(Clang).CompileArgs("src/a.c", ".cbuild/obj/a.o", CompileOptions{
		OptLevel: O2,
		Flags: CompilerFlags{
			Warnings:   []WarningFlag{WarnAll, WarnExtra},
			NoWarnings: []WarningFlag{WarnDeprecatedDeclarations},
			Custom:     []string{"-std=c11"},
		},
		Includes: []string{"include", "vendor"},
	})
	assert.Equal(t, []string{
		"-c", "src/a.c",
		"-o", ".cbuild/obj/a.o",
		"-O2",
		"-Wall", "-Wextra",
		"-Wno-deprecated-declarations",
		"-std=c11",
		"-I", "include", "-I", "vendor",
	}, args)
}

func TestCompileArgsMSVC(t *testing.T) {
	args := New(MSVC).CompileArgs(`src\a.c`, `obj\a.obj`, CompileOptions{
		OptLevel: Debug,
		Flags: CompilerFlags{
			Warnings:   []WarningFlag{WarnAll},
			NoWarnings: []WarningFlag{WarnPedantic},
		},
		Includes: []string{"include"},
	})
	// warnings have no MSVC spelling and are dropped
	assert.Equal(t, []string{
		"/c", `src\a.c`,
		`/Foobj\a.obj`, "/nologo",
		"/Od", "/Zi",
		"/I", "include",
	}, args)
}

func TestCompileArgsZigLeadingCC(t *testing.T) {
	args := New(Zig).CompileArgs("a.c", "a.o", CompileOptions{OptLevel: Release})
	require.NotEmpty(t, args)
	assert.Equal(t, []string{"cc", "-c", "a.c", "-o", "a.o", "-O3"}, args)
}

func TestCompileArgsDynamicLibraryPIC(t *testing.T) {
	args := New(GCC).CompileArgs("a.c", "a.o", CompileOptions{OptLevel: O0, Type: DynamicLibrary})
	assert.Contains(t, args, "-fPIC")

	args = New(MSVC).CompileArgs("a.c", "a.obj", CompileOptions{OptLevel: O0, Type: DynamicLibrary})
	assert.NotContains(t, args, "-fPIC")
}

func TestOptFlags(t *testing.T) {
	gcc := New(GCC)
	assert.Equal(t, []string{"-O0", "-g"}, gcc.OptFlags(Debug))
	assert.Equal(t, []string{"-O3"}, gcc.OptFlags(Release))
	assert.Equal(t, []string{"-Os"}, gcc.OptFlags(OSize))

	msvc := New(MSVC)
	assert.Equal(t, []string{"/Ox"}, msvc.OptFlags(O3))
	assert.Equal(t, []string{"/Os"}, msvc.OptFlags(OSize))
}

func TestParseOptLevel(t *testing.T) {
	cases := map[string]OptLevel{
		"debug":   Debug,
		"Release": Release,
		"o1":      O1,
		"2":       O2,
		"3":       O3,
		"s":       OSize,
		"osize":   OSize,
	}
	for in, want := range cases {
		got, err := ParseOptLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseOptLevel("fast")
	require.Error(t, err)
}

func TestParseWarning(t *testing.T) {
	w, err := ParseWarning("deprecated-declarations")
	require.NoError(t, err)
	assert.Equal(t, WarnDeprecatedDeclarations, w)

	_, err = ParseWarning("everything")
	require.Error(t, err)
}

func TestLinkArgsExecutable(t *testing.T) {
	args, err := New(Clang).LinkArgs("build/app", []string{"a.o", "b.o"}, LinkOptions{
		Type:      Executable,
		LibDirs:   []string{"/opt/lib"},
		Libs:      []string{"m", "pthread"},
		LinkFlags: []string{"-static"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"-o", "build/app",
		"a.o", "b.o",
		"-static",
		"-L/opt/lib",
		"-lm", "-lpthread",
	}, args)
}

func TestLinkArgsSharedAndArchive(t *testing.T) {
	args, err := New(GCC).LinkArgs("libx.so", []string{"a.o"}, LinkOptions{Type: DynamicLibrary})
	require.NoError(t, err)
	assert.Equal(t, []string{"-o", "libx.so", "-shared", "a.o"}, args)

	args, err = New(GCC).LinkArgs("libx.a", []string{"a.o", "b.o"}, LinkOptions{Type: StaticLibrary, Libs: []string{"m"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"rcs", "libx.a", "a.o", "b.o"}, args)

	args, err = New(Zig).LinkArgs("libx.a", []string{"a.o"}, LinkOptions{Type: StaticLibrary})
	require.NoError(t, err)
	assert.Equal(t, []string{"ar", "rcs", "libx.a", "a.o"}, args)

	args, err = New(Zig).LinkArgs("app", []string{"a.o"}, LinkOptions{Type: Executable})
	require.NoError(t, err)
	assert.Equal(t, []string{"cc", "-o", "app", "a.o"}, args)
}

func TestLinkArgsMSVC(t *testing.T) {
	args, err := New(MSVC).LinkArgs("app.exe", []string{"a.obj"}, LinkOptions{Type: Executable})
	require.NoError(t, err)
	assert.Equal(t, []string{"/OUT:app.exe", "/nologo", "a.obj"}, args)

	args, err = New(MSVC).LinkArgs("x.dll", []string{"a.obj"}, LinkOptions{Type: DynamicLibrary})
	require.NoError(t, err)
	assert.Equal(t, []string{"/OUT:x.dll", "/nologo", "/DLL", "a.obj"}, args)

	_, err = New(MSVC).LinkArgs("app.exe", []string{"a.obj"}, LinkOptions{Type: Executable, Libs: []string{"user32"}})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)

	_, err = New(MSVC).LinkArgs("app.exe", []string{"a.obj"}, LinkOptions{Type: Executable, LibDirs: []string{"lib"}})
	require.ErrorAs(t, err, &cfgErr)
}

func TestCompilerFlagsClone(t *testing.T) {
	orig := CompilerFlags{Warnings: []WarningFlag{WarnAll}, Custom: []string{"-x"}}
	clone := orig.Clone()
	clone.Warnings[0] = WarnError
	clone.Custom[0] = "-y"
	assert.Equal(t, WarnAll, orig.Warnings[0])
	assert.Equal(t, "-x", orig.Custom[0])
}
