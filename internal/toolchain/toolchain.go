package toolchain

import (
	"errors"
	"fmt"
	"strings"
)

// Family is a compiler family with its own flag conventions
type Family int

const (
	GCC Family = iota
	Clang
	MSVC
	Zig
	Custom
)

func (f Family) String() string {
	switch f {
	case GCC:
		return "gcc"
	case Clang:
		return "clang"
	case MSVC:
		return "msvc"
	case Zig:
		return "zig"
	case Custom:
		return "custom"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// ParseFamily maps a config name to a family. Custom cannot be parsed on its
// own because it needs explicit binaries, see NewCustom.
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(s) {
	case "gcc":
		return GCC, nil
	case "clang":
		return Clang, nil
	case "msvc", "cl", "cl.exe":
		return MSVC, nil
	case "zig", "zig-cc":
		return Zig, nil
	case "custom":
		return Custom, nil
	}
	return 0, &ConfigError{Op: "parse toolchain", Detail: fmt.Sprintf("unknown toolchain %q, known: gcc, clang, msvc, zig, custom", s)}
}

// ToolChain identifies a compiler family. For Custom the compiler and linker
// binaries are explicit; the other families derive them from the family
// unless WithCompiler pinned an executable. ToolChain is comparable and safe
// to copy.
type ToolChain struct {
	Family   Family
	compiler string
	linker   string
}

func New(f Family) ToolChain {
	return ToolChain{Family: f}
}

func NewCustom(compiler, linker string) ToolChain {
	if linker == "" {
		linker = compiler
	}
	return ToolChain{Family: Custom, compiler: compiler, linker: linker}
}

// WithCompiler keeps the family's flag conventions but runs compiler instead
// of the family's default executable. GCC, Clang and Zig link through the
// same driver; MSVC expects link.exe and lib.exe next to cl.exe.
func (tc ToolChain) WithCompiler(compiler string) ToolChain {
	tc.compiler = compiler
	return tc
}

func (tc ToolChain) String() string {
	switch {
	case tc.Family == Custom:
		return fmt.Sprintf("custom(%s, %s)", tc.compiler, tc.linker)
	case tc.compiler != "":
		return fmt.Sprintf("%s(%s)", tc.Family, tc.compiler)
	}
	return tc.Family.String()
}

// driver is the pinned compiler or the family's default executable name
func (tc ToolChain) driver(name string) string {
	if tc.compiler != "" {
		return tc.compiler
	}
	return name
}

// sibling is name in the pinned compiler's directory, or bare name when the
// compiler was not given as a path
func (tc ToolChain) sibling(name string) string {
	if i := strings.LastIndexAny(tc.compiler, `/\`); i >= 0 {
		return tc.compiler[:i+1] + name
	}
	return name
}

func (tc ToolChain) IsMSVC() bool { return tc.Family == MSVC }

// BinaryType is the kind of artifact a target links
type BinaryType int

const (
	Executable BinaryType = iota
	DynamicLibrary
	StaticLibrary
)

func (bt BinaryType) String() string {
	switch bt {
	case Executable:
		return "executable"
	case DynamicLibrary:
		return "dynamic-library"
	case StaticLibrary:
		return "static-library"
	default:
		return fmt.Sprintf("BinaryType(%d)", int(bt))
	}
}

func ParseBinaryType(s string) (BinaryType, error) {
	switch strings.ToLower(s) {
	case "", "executable", "exe", "bin":
		return Executable, nil
	case "dynamic-library", "dynlib", "shared", "dll":
		return DynamicLibrary, nil
	case "static-library", "staticlib", "static", "lib":
		return StaticLibrary, nil
	}
	return 0, &ConfigError{Op: "parse binary type", Detail: fmt.Sprintf("unknown binary type %q", s)}
}

var errUnknownFamily = errors.New("unknown toolchain family")

// ConfigError is an unsupported toolchain/binary-type combination or a flag
// the toolchain cannot express. It is fatal for the whole target.
type ConfigError struct {
	Op     string
	Detail string
}

func (e *ConfigError) Error() string {
	return e.Op + ": " + e.Detail
}

func unsupported(tc ToolChain, op, what string) error {
	return &ConfigError{Op: op, Detail: fmt.Sprintf("%s not supported by the %s toolchain", what, tc)}
}

func unreachable(f Family) string {
	panic(fmt.Sprintf("toolchain: %v: %d", errUnknownFamily, int(f)))
}

// ObjExt is the object file extension without the dot
func (tc ToolChain) ObjExt() string {
	switch tc.Family {
	case GCC, Clang, Zig, Custom:
		return "o"
	case MSVC:
		return "obj"
	default:
		return unreachable(tc.Family)
	}
}

// Compiler is the compiler executable
func (tc ToolChain) Compiler() string {
	switch tc.Family {
	case GCC:
		return tc.driver("gcc")
	case Clang:
		return tc.driver("clang")
	case MSVC:
		return tc.driver("cl.exe")
	case Zig:
		return tc.driver("zig")
	case Custom:
		return tc.compiler
	default:
		return unreachable(tc.Family)
	}
}

// Linker is the executable that produces an artifact of type bt. For MSVC
// static libraries this is the librarian, for GCC/Clang static libraries the
// archiver.
func (tc ToolChain) Linker(bt BinaryType) (string, error) {
	if bt != Executable && bt != DynamicLibrary && bt != StaticLibrary {
		return "", unsupported(tc, "linker", bt.String())
	}
	switch tc.Family {
	case GCC:
		if bt == StaticLibrary {
			return "ar", nil
		}
		return tc.driver("gcc"), nil
	case Clang:
		if bt == StaticLibrary {
			return "ar", nil
		}
		return tc.driver("clang"), nil
	case MSVC:
		if bt == StaticLibrary {
			return tc.sibling("lib.exe"), nil
		}
		return tc.sibling("link.exe"), nil
	case Zig:
		return tc.driver("zig"), nil
	case Custom:
		return tc.linker, nil
	default:
		return unreachable(tc.Family), nil
	}
}

// CompilerLeadingArgs go before any other compiler argument
func (tc ToolChain) CompilerLeadingArgs() []string {
	switch tc.Family {
	case Zig:
		return []string{"cc"}
	case GCC, Clang, MSVC, Custom:
		return nil
	default:
		unreachable(tc.Family)
		return nil
	}
}

// LinkerLeadingArgs go before any other linker argument
func (tc ToolChain) LinkerLeadingArgs(bt BinaryType) []string {
	switch tc.Family {
	case Zig:
		if bt == StaticLibrary {
			return []string{"ar"}
		}
		return []string{"cc"}
	case GCC, Clang, MSVC, Custom:
		return nil
	default:
		unreachable(tc.Family)
		return nil
	}
}

// archives reports whether bt is produced by an `ar`-style archiver taking
// `rcs <out> <objs...>` instead of `-o <out>`
func (tc ToolChain) archives(bt BinaryType) bool {
	if bt != StaticLibrary {
		return false
	}
	switch tc.Family {
	case GCC, Clang, Zig:
		return true
	case MSVC, Custom:
		return false
	default:
		unreachable(tc.Family)
		return false
	}
}

func (tc ToolChain) CompilerInputFlag() string {
	switch tc.Family {
	case GCC, Clang, Zig, Custom:
		return "-c"
	case MSVC:
		return "/c"
	default:
		return unreachable(tc.Family)
	}
}

// CompilerOutputFlag is "-o" (separate token) or "/Fo" (glued to the path)
func (tc ToolChain) CompilerOutputFlag() string {
	switch tc.Family {
	case GCC, Clang, Zig, Custom:
		return "-o"
	case MSVC:
		return "/Fo"
	default:
		return unreachable(tc.Family)
	}
}

func (tc ToolChain) IncludeFlag() string {
	switch tc.Family {
	case GCC, Clang, Zig, Custom:
		return "-I"
	case MSVC:
		return "/I"
	default:
		return unreachable(tc.Family)
	}
}

func (tc ToolChain) WarningFlag() string {
	switch tc.Family {
	case GCC, Clang, Zig, Custom:
		return "-W"
	case MSVC:
		return ""
	default:
		return unreachable(tc.Family)
	}
}

func (tc ToolChain) NoWarningFlag() string {
	switch tc.Family {
	case GCC, Clang, Zig, Custom:
		return "-Wno-"
	case MSVC:
		return ""
	default:
		return unreachable(tc.Family)
	}
}

// LinkerOutputFlag is "-o" (separate token) or "/OUT:" (glued to the path)
func (tc ToolChain) LinkerOutputFlag() string {
	switch tc.Family {
	case GCC, Clang, Zig, Custom:
		return "-o"
	case MSVC:
		return "/OUT:"
	default:
		return unreachable(tc.Family)
	}
}

func (tc ToolChain) LibraryFlag() (string, error) {
	switch tc.Family {
	case GCC, Clang, Zig, Custom:
		return "-l", nil
	case MSVC:
		return "", unsupported(tc, "link", "library flags")
	default:
		return unreachable(tc.Family), nil
	}
}

func (tc ToolChain) LibraryDirFlag() (string, error) {
	switch tc.Family {
	case GCC, Clang, Zig, Custom:
		return "-L", nil
	case MSVC:
		return "", unsupported(tc, "link", "library search path flags")
	default:
		return unreachable(tc.Family), nil
	}
}
