package config

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

// Config is a parsed project file. TOML and YAML documents are decoded into a
// raw tree first, so {{ }} placeholders and conditional sub-tables can be
// resolved before the typed sections are filled in.
type Config struct {
	Project ProjectSection  `toml:"project"`
	Build   BuildSection    `toml:"build"`
	Targets []TargetSection `toml:"target"`
}

// ProjectSection defines the [project] section
type ProjectSection struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Authors     []string `toml:"authors"`
	Build       string   `toml:"build"`
}

// BuildSection defines the [build(.*)] section
type BuildSection struct {
	CacheDir string `toml:"cache-dir"`
	Jobs     int    `toml:"jobs"`
}

// TargetSection defines a single [[target]] and its conditional sub-tables
type TargetSection struct {
	Name      string `toml:"name"`
	Toolchain string `toml:"toolchain"`
	Compiler  string `toml:"compiler"`
	Linker    string `toml:"linker"`
	// OptLevel is either a string ("release", "s") or a number (0-3)
	OptLevel any    `toml:"opt-level"`
	Type     string `toml:"type"`

	Files    []string `toml:"files"`
	Excludes []string `toml:"excludes"`
	Output   string   `toml:"output"`
	SrcDir   string   `toml:"src-dir"`

	Includes  []string `toml:"includes"`
	LibDirs   []string `toml:"lib-dirs"`
	Libs      []string `toml:"libs"`
	LinkFlags []string `toml:"link-flags"`

	Flags FlagsSection `toml:"flags"`
}

// FlagsSection defines [target.flags]
type FlagsSection struct {
	Warnings   []string `toml:"warnings"`
	NoWarnings []string `toml:"no-warnings"`
	Custom     []string `toml:"custom"`
}

// decodeInto re-encodes a raw table as TOML and decodes it into dst, which
// gives every input format the same field names and type coercions
func decodeInto(raw any, dst any) error {
	data, err := toml.Marshal(raw)
	if err != nil {
		return err
	}
	return toml.Unmarshal(data, dst)
}

// decodeConditional decodes the plain keys of table into dst and then merges,
// in sorted order, every sub-table whose key is an expression that holds
func decodeConditional[T any](table map[string]any, name string, dst *T, env ConfigEnv) error {
	plain := make(map[string]any, len(table))
	var conditions []string
	for key, val := range table {
		if _, isTable := val.(map[string]any); isTable && env.isExpr(key) {
			conditions = append(conditions, key)
			continue
		}
		plain[key] = val
	}

	if err := decodeInto(plain, dst); err != nil {
		return fmt.Errorf("invalid [%s] section: %w", name, err)
	}

	slices.Sort(conditions)
	for _, cond := range conditions {
		ok, err := env.holds(cond)
		if err != nil {
			return fmt.Errorf("condition [%s.%q]: %w", name, cond, err)
		}
		if !ok {
			continue
		}
		var extra T
		if err := decodeInto(table[cond], &extra); err != nil {
			return fmt.Errorf("invalid conditional section [%s.%q]: %w", name, cond, err)
		}
		if err := mergeStructs(dst, extra); err != nil {
			return fmt.Errorf("merge [%s.%q]: %w", name, cond, err)
		}
	}
	return nil
}

// tablesOf accepts a single table or an array of tables under key
func tablesOf(raw map[string]any, key string) ([]map[string]any, error) {
	switch v := raw[key].(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return []map[string]any{v}, nil
	case []map[string]any:
		return v, nil
	case []any:
		tables := make([]map[string]any, len(v))
		for i, item := range v {
			table, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid [[%s]] #%d: expected a table", key, i+1)
			}
			tables[i] = table
		}
		return tables, nil
	default:
		return nil, fmt.Errorf("invalid [%s] section: expected a table or an array of tables", key)
	}
}

// fromRaw builds a Config out of a decoded TOML or YAML document
func fromRaw(raw map[string]any, env ConfigEnv) (*Config, error) {
	if _, err := env.interpolateAll(raw); err != nil {
		return nil, fmt.Errorf("config expression: %w", err)
	}

	cfg := new(Config)
	if project, ok := raw["project"]; ok {
		if err := decodeInto(project, &cfg.Project); err != nil {
			return nil, fmt.Errorf("invalid [project] section: %w", err)
		}
	}

	builds, err := tablesOf(raw, "build")
	if err != nil {
		return nil, err
	}
	if len(builds) > 1 {
		return nil, errors.New("invalid [build] section: expected a single table")
	}
	for _, table := range builds {
		if err := decodeConditional(table, "build", &cfg.Build, env); err != nil {
			return nil, err
		}
	}

	targets, err := tablesOf(raw, "target")
	if err != nil {
		return nil, err
	}
	cfg.Targets = make([]TargetSection, len(targets))
	for i, table := range targets {
		if err := decodeConditional(table, "target", &cfg.Targets[i], env); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// ParseTOML parses a Cbuild.toml document
func ParseTOML(rdr io.Reader, env ConfigEnv) (*Config, error) {
	var raw map[string]any
	if err := toml.NewDecoder(rdr).Decode(&raw); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			return nil, errors.New(derr.String())
		}
		return nil, err
	}
	return fromRaw(raw, env)
}
