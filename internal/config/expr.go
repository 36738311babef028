package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// ConfigEnv is what expressions in a config file can see
type ConfigEnv struct {
	TargetOS   string            `expr:"target_os"`
	TargetArch string            `expr:"target_arch"`
	Profile    string            `expr:"profile"`
	Environ    map[string]string `expr:"environ"`
	basedir    string
}

func NewConfigEnv(basedir, profile string) ConfigEnv {
	environ := make(map[string]string)
	for _, e := range os.Environ() {
		if k, v, ok := strings.Cut(e, "="); ok {
			environ[k] = v
		}
	}

	return ConfigEnv{
		TargetOS:   runtime.GOOS,
		TargetArch: runtime.GOARCH,
		Profile:    profile,
		Environ:    environ,
		basedir:    basedir,
	}
}

// isExpr reports whether s compiles against env. Sub-table keys that do are
// conditions, the rest are plain nested tables.
func (env ConfigEnv) isExpr(s string) bool {
	_, err := expr.Compile(s, expr.Env(env))
	return err == nil
}

func (env ConfigEnv) eval(expression string) (any, error) {
	program, err := expr.Compile(expression, expr.Env(env))
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expression, err)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("run %q: %w", expression, err)
	}
	return out, nil
}

// holds reports whether a condition evaluates to true. Non-boolean results
// count as false.
func (env ConfigEnv) holds(expression string) (bool, error) {
	out, err := env.eval(expression)
	if err != nil {
		return false, err
	}
	ok, _ := out.(bool)
	return ok, nil
}

var placeholderRe = regexp.MustCompile(`\{\{(.+?)\}\}`)

// interpolate replaces every {{ expression }} in s with its value
func (env ConfigEnv) interpolate(s string) (string, error) {
	var firstErr error
	out := placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		if firstErr != nil {
			return m
		}
		v, err := env.eval(strings.TrimSpace(m[2 : len(m)-2]))
		if err != nil {
			firstErr = err
			return m
		}
		return fmt.Sprint(v)
	})
	return out, firstErr
}

// interpolateAll walks a decoded document in place and interpolates every
// string in it
func (env ConfigEnv) interpolateAll(node any) (any, error) {
	var err error
	switch v := node.(type) {
	case string:
		return env.interpolate(v)
	case map[string]any:
		for k := range v {
			if v[k], err = env.interpolateAll(v[k]); err != nil {
				return nil, err
			}
		}
	case []any:
		for i := range v {
			if v[i], err = env.interpolateAll(v[i]); err != nil {
				return nil, err
			}
		}
	}
	return node, nil
}

// RunBuildScript evaluates [project] build, which has to return true
func (cfg Config) RunBuildScript(env ConfigEnv) error {
	script := cfg.Project.Build
	if script == "" {
		return nil
	}
	ok, err := env.holds(script)
	if err != nil {
		return fmt.Errorf("build script of project %q: %w", cfg.Project.Name, err)
	}
	if !ok {
		return fmt.Errorf("build script for project %q returned false\n%s", cfg.Project.Name, script)
	}
	return nil
}

func (env ConfigEnv) resolve(path string) (string, error) {
	if !filepath.IsLocal(path) {
		return "", fmt.Errorf("path %q is outside of project directory %q", path, env.basedir)
	}
	return filepath.Join(env.basedir, path), nil
}

// Patch applies a diff-match-patch patch to a file in the project and reports
// whether any hunk applied
func (env ConfigEnv) Patch(path, patchText string) (bool, error) {
	fullPath, err := env.resolve(path)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return false, err
	}

	dmp := diffmatchpatch.New()
	patches, err := dmp.PatchFromText(patchText)
	if err != nil {
		return false, err
	}
	patched, applied := dmp.PatchApply(patches, string(data))
	if !slices.Contains(applied, true) {
		return false, nil
	}
	return true, os.WriteFile(fullPath, []byte(patched), 0o644)
}

func (env ConfigEnv) ReadFile(path string) (string, error) {
	fullPath, err := env.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(fullPath)
	return string(data), err
}
