package toolchain

import (
	"fmt"
	"strings"
)

type OptLevel int

const (
	Debug OptLevel = iota
	Release
	O0
	O1
	O2
	O3
	OSize
)

var optLevelNames = map[OptLevel]string{
	Debug:   "debug",
	Release: "release",
	O0:      "o0",
	O1:      "o1",
	O2:      "o2",
	O3:      "o3",
	OSize:   "osize",
}

func (o OptLevel) String() string {
	if name, ok := optLevelNames[o]; ok {
		return name
	}
	return fmt.Sprintf("OptLevel(%d)", int(o))
}

func ParseOptLevel(s string) (OptLevel, error) {
	s = strings.ToLower(s)
	for level, name := range optLevelNames {
		if s == name {
			return level, nil
		}
	}
	switch s {
	case "0", "1", "2", "3":
		return O0 + OptLevel(s[0]-'0'), nil
	case "s", "size":
		return OSize, nil
	}
	return 0, &ConfigError{Op: "parse opt-level", Detail: fmt.Sprintf("unknown optimization level %q", s)}
}

// OptFlags are the compiler flags for an optimization level
func (tc ToolChain) OptFlags(o OptLevel) []string {
	if tc.IsMSVC() {
		switch o {
		case Debug:
			return []string{"/Od", "/Zi"}
		case Release:
			return []string{"/O2"}
		case O0:
			return []string{"/Od"}
		case O1:
			return []string{"/O1"}
		case O2:
			return []string{"/O2"}
		case O3:
			return []string{"/Ox"}
		case OSize:
			return []string{"/Os"}
		}
		return nil
	}
	switch o {
	case Debug:
		return []string{"-O0", "-g"}
	case Release:
		return []string{"-O3"}
	case O0:
		return []string{"-O0"}
	case O1:
		return []string{"-O1"}
	case O2:
		return []string{"-O2"}
	case O3:
		return []string{"-O3"}
	case OSize:
		return []string{"-Os"}
	}
	return nil
}

type WarningFlag int

const (
	WarnError WarningFlag = iota
	WarnPedantic
	WarnExtra
	WarnAll
	WarnDeprecatedDeclarations
)

var warningNames = map[WarningFlag]string{
	WarnError:                  "error",
	WarnPedantic:               "pedantic",
	WarnExtra:                  "extra",
	WarnAll:                    "all",
	WarnDeprecatedDeclarations: "deprecated-declarations",
}

func (w WarningFlag) String() string {
	if name, ok := warningNames[w]; ok {
		return name
	}
	return fmt.Sprintf("WarningFlag(%d)", int(w))
}

func ParseWarning(s string) (WarningFlag, error) {
	s = strings.ToLower(s)
	for w, name := range warningNames {
		if s == name {
			return w, nil
		}
	}
	return 0, &ConfigError{Op: "parse warning", Detail: fmt.Sprintf("unknown warning %q", s)}
}

// Suffix is appended to the warning prefix of tc. MSVC has no equivalent
// spelling, so it is empty there.
func (w WarningFlag) Suffix(tc ToolChain) string {
	if tc.IsMSVC() {
		return ""
	}
	return w.String()
}

// CompilerFlags are shared by every file in a target
type CompilerFlags struct {
	Warnings   []WarningFlag
	NoWarnings []WarningFlag
	Custom     []string
}

func (f CompilerFlags) Clone() CompilerFlags {
	return CompilerFlags{
		Warnings:   append([]WarningFlag(nil), f.Warnings...),
		NoWarnings: append([]WarningFlag(nil), f.NoWarnings...),
		Custom:     append([]string(nil), f.Custom...),
	}
}

// CompileOptions is everything the compile command of a single file depends on
type CompileOptions struct {
	OptLevel OptLevel
	Type     BinaryType
	Flags    CompilerFlags
	Includes []string
}

// CompileArgs assembles the compiler arguments (without the program) that
// compile src into obj
func (tc ToolChain) CompileArgs(src, obj string, opts CompileOptions) []string {
	args := make([]string, 0, 8+len(opts.Flags.Warnings)+len(opts.Flags.NoWarnings)+len(opts.Flags.Custom)+2*len(opts.Includes))
	args = append(args, tc.CompilerLeadingArgs()...)
	args = append(args, tc.CompilerInputFlag(), src)

	if tc.IsMSVC() {
		args = append(args, tc.CompilerOutputFlag()+obj, "/nologo")
	} else {
		args = append(args, tc.CompilerOutputFlag(), obj)
	}

	args = append(args, tc.OptFlags(opts.OptLevel)...)
	if opts.Type == DynamicLibrary && !tc.IsMSVC() {
		args = append(args, "-fPIC")
	}

	args = appendWarnings(args, tc.WarningFlag(), tc, opts.Flags.Warnings)
	args = appendWarnings(args, tc.NoWarningFlag(), tc, opts.Flags.NoWarnings)
	args = append(args, opts.Flags.Custom...)

	for _, include := range opts.Includes {
		args = append(args, tc.IncludeFlag(), include)
	}
	return args
}

func appendWarnings(args []string, prefix string, tc ToolChain, warnings []WarningFlag) []string {
	for _, w := range warnings {
		if flag := prefix + w.Suffix(tc); flag != "" {
			args = append(args, flag)
		}
	}
	return args
}

// LinkOptions is everything the link command of a target depends on
type LinkOptions struct {
	Type      BinaryType
	LibDirs   []string
	Libs      []string
	LinkFlags []string
}

// LinkArgs assembles the linker arguments (without the program) producing out
// from objs. Library flags are a configuration error for MSVC.
func (tc ToolChain) LinkArgs(out string, objs []string, opts LinkOptions) ([]string, error) {
	if _, err := tc.Linker(opts.Type); err != nil {
		return nil, err
	}

	args := make([]string, 0, 4+len(objs)+len(opts.LinkFlags)+len(opts.LibDirs)+len(opts.Libs))
	args = append(args, tc.LinkerLeadingArgs(opts.Type)...)

	switch {
	case tc.archives(opts.Type):
		args = append(args, "rcs", out)
		args = append(args, objs...)
		return args, nil
	case tc.IsMSVC():
		args = append(args, tc.LinkerOutputFlag()+out, "/nologo")
		if opts.Type == DynamicLibrary {
			args = append(args, "/DLL")
		}
	default:
		args = append(args, tc.LinkerOutputFlag(), out)
		if opts.Type == DynamicLibrary {
			args = append(args, "-shared")
		}
	}

	args = append(args, objs...)
	args = append(args, opts.LinkFlags...)

	if opts.Type == StaticLibrary {
		return args, nil
	}

	if len(opts.LibDirs) > 0 {
		flag, err := tc.LibraryDirFlag()
		if err != nil {
			return nil, err
		}
		for _, dir := range opts.LibDirs {
			args = append(args, flag+dir)
		}
	}
	if len(opts.Libs) > 0 {
		flag, err := tc.LibraryFlag()
		if err != nil {
			return nil, err
		}
		for _, lib := range opts.Libs {
			args = append(args, flag+lib)
		}
	}
	return args, nil
}
