package builder

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

func isGlob(entry string) bool {
	return strings.ContainsAny(entry, "*?[{")
}

func (t Target) excluded(entry string) bool {
	resolved := t.resolve(entry)
	return slices.ContainsFunc(t.Excludes, func(ex string) bool {
		return t.resolve(ex) == resolved
	})
}

// walkSources yields every source file named by the target's file entries.
// Directories are walked recursively, glob patterns are expanded relative to
// the base directory and excluded entries are skipped without being opened.
// The cache directory is never descended into.
func (t Target) walkSources() iter.Seq2[string, error] {
	cache := t.cacheRoot()
	return func(yield func(string, error) bool) {
		for _, entry := range t.Files {
			if t.excluded(entry) {
				continue
			}

			if isGlob(entry) {
				matches, err := t.glob(entry)
				if err != nil {
					yield("", &FSError{Op: "glob", Path: entry, Err: err})
					return
				}
				for _, m := range matches {
					if !yield(m, nil) {
						return
					}
				}
				continue
			}

			path := t.resolve(entry)
			info, err := os.Stat(path)
			if err != nil {
				yield("", &FSError{Op: "stat", Path: path, Err: err})
				return
			}
			if !info.IsDir() {
				if !yield(path, nil) {
					return
				}
				continue
			}

			stopped := false
			err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					if p == cache {
						return filepath.SkipDir
					}
					return nil
				}
				if d.Type()&fs.ModeSymlink != 0 {
					if info, err := os.Stat(p); err == nil && info.IsDir() {
						return nil
					}
				}
				if !yield(p, nil) {
					stopped = true
					return filepath.SkipAll
				}
				return nil
			})
			if stopped {
				return
			}
			if err != nil {
				yield("", &FSError{Op: "walk", Path: path, Err: err})
				return
			}
		}
	}
}

// glob expands a pattern into absolute file paths. Relative patterns are
// matched inside the base directory so its own name is never a pattern.
func (t Target) glob(pattern string) ([]string, error) {
	if !filepath.IsLocal(pattern) {
		return doublestar.FilepathGlob(t.resolve(pattern), doublestar.WithFilesOnly())
	}
	matches, err := doublestar.Glob(os.DirFS(t.BaseDir), filepath.ToSlash(filepath.Clean(pattern)), doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	for i, m := range matches {
		matches[i] = filepath.Join(t.BaseDir, filepath.FromSlash(m))
	}
	return matches, nil
}

// discoverSources collects the target's source files in discovery order with
// duplicates removed
func (t Target) discoverSources() ([]string, error) {
	var sources []string
	seen := make(map[string]struct{})
	for src, err := range t.walkSources() {
		if err != nil {
			return nil, err
		}
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		sources = append(sources, src)
	}
	return sources, nil
}
