package builder

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qobs-build/cbuild/internal/toolchain"
)

const (
	DefaultCacheDir = ".cbuild"
	DefaultOutput   = "a"
	DefaultSrcDir   = "src"

	objDirName = "obj"
	extDirName = "_ext"
)

// Target is one requested artifact and everything needed to build it.
// Relative paths are resolved against BaseDir.
type Target struct {
	Name      string
	Toolchain toolchain.ToolChain
	OptLevel  toolchain.OptLevel
	Type      toolchain.BinaryType

	Files    []string
	Excludes []string
	Output   string
	SrcDir   string

	Includes  []string
	LibDirs   []string
	Libs      []string
	LinkFlags []string
	Flags     toolchain.CompilerFlags

	// FullRebuild ignores timestamps and recompiles and relinks everything
	FullRebuild bool

	BaseDir  string
	CacheDir string
}

func (t Target) displayName() string {
	if t.Name != "" {
		return t.Name
	}
	return filepath.Base(t.output())
}

func (t Target) output() string {
	if t.Output == "" {
		return DefaultOutput
	}
	return t.Output
}

// resolve makes p absolute relative to the base directory
func (t Target) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(t.BaseDir, p)
}

func (t Target) cacheRoot() string {
	if t.CacheDir == "" {
		return t.resolve(DefaultCacheDir)
	}
	return t.resolve(t.CacheDir)
}

func (t Target) objDir() string {
	return filepath.Join(t.cacheRoot(), objDirName)
}

func (t Target) srcRoot() string {
	if t.SrcDir == "" {
		return t.resolve(DefaultSrcDir)
	}
	return t.resolve(t.SrcDir)
}

// ArtifactPath is the final artifact for the given host OS. Windows gets the
// extension of the binary type, other systems use the output path unchanged.
func (t Target) ArtifactPath(goos string) string {
	out := t.resolve(t.output())
	if goos != "windows" {
		return out
	}

	var ext string
	switch t.Type {
	case toolchain.Executable:
		ext = ".exe"
	case toolchain.DynamicLibrary:
		ext = ".dll"
	case toolchain.StaticLibrary:
		ext = ".lib"
	default:
		return out
	}
	return strings.TrimSuffix(out, filepath.Ext(out)) + ext
}

// ObjectPath mirrors src, relative to the source root, under the object
// directory and swaps its extension for the toolchain's object extension.
// Sources outside the source root are mirrored by their absolute path under
// a separate directory so they can never collide with the ones inside.
func (t Target) ObjectPath(src string) string {
	src = t.resolve(src)
	rel, err := filepath.Rel(t.srcRoot(), src)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = externalRel(src)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + "." + t.Toolchain.ObjExt()
	return filepath.Join(t.objDir(), rel)
}

func externalRel(src string) string {
	vol := filepath.VolumeName(src)
	rest := strings.TrimLeft(src[len(vol):], `/\`)
	if vol == "" {
		return filepath.Join(extDirName, rest)
	}
	volDir := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, vol)
	return filepath.Join(extDirName, volDir, rest)
}

func (t Target) validate() error {
	if t.BaseDir == "" || !filepath.IsAbs(t.BaseDir) {
		return &toolchain.ConfigError{Op: "target " + t.displayName(), Detail: fmt.Sprintf("base directory %q must be absolute", t.BaseDir)}
	}
	if len(t.Files) == 0 {
		return &toolchain.ConfigError{Op: "target " + t.displayName(), Detail: "no files configured"}
	}
	if t.Toolchain.Family == toolchain.Custom && t.Toolchain.Compiler() == "" {
		return &toolchain.ConfigError{Op: "target " + t.displayName(), Detail: "custom toolchain needs a compiler"}
	}
	return nil
}
