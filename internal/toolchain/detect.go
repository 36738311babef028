package toolchain

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
)

var commonCompilers = []string{"clang", "gcc", "cl", "zig"}

// lookPath is swapped in tests
var lookPath = exec.LookPath

// Detect attempts to find a suitable toolchain on the system: $CC first, then
// the first common compiler found in PATH. It falls back to the platform
// default when nothing is found, so the failure surfaces as a spawn error
// naming the missing compiler.
func Detect() ToolChain {
	if cc := os.Getenv("CC"); cc != "" {
		return FromCompiler(cc)
	}

	for _, compiler := range commonCompilers {
		if _, err := lookPath(compiler); err == nil {
			return FromCompiler(compiler)
		}
	}

	return PlatformDefault()
}

// PlatformDefault is MSVC on Windows and GCC elsewhere
func PlatformDefault() ToolChain {
	if runtime.GOOS == "windows" {
		return New(MSVC)
	}
	return New(GCC)
}

// FromCompiler guesses the family from a compiler executable name. A path
// (`/opt/gcc-13/bin/gcc`) is kept as the executable to run. Names it does not
// recognise (`tcc`, `arm-none-eabi-gcc`) become a Custom toolchain that links
// with the same driver.
func FromCompiler(compiler string) ToolChain {
	// both separators, so Windows paths are understood on any host
	base := compiler[strings.LastIndexAny(compiler, `/\`)+1:]
	base = strings.TrimSuffix(strings.ToLower(base), ".exe")

	var tc ToolChain
	switch base {
	case "gcc":
		tc = New(GCC)
	case "clang":
		tc = New(Clang)
	case "cl":
		tc = New(MSVC)
	case "zig":
		tc = New(Zig)
	default:
		return NewCustom(compiler, compiler)
	}
	if base != strings.ToLower(compiler) && base+".exe" != strings.ToLower(compiler) {
		tc = tc.WithCompiler(compiler)
	}
	return tc
}
