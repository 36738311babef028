package config

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ParseYAML parses a cbuild.yaml document. It has the same shape as the TOML
// file, conditional sections are mapping keys holding an expression.
func ParseYAML(rdr io.Reader, env ConfigEnv) (*Config, error) {
	var rawConfig map[string]any
	if err := yaml.NewDecoder(rdr).Decode(&rawConfig); err != nil {
		if errors.Is(err, io.EOF) {
			return new(Config), nil
		}
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return fromRaw(normalizeYAML(rawConfig).(map[string]any), env)
}

// normalizeYAML turns mappings with non-string keys into string-keyed ones so
// the document can go through the TOML encoder. Null values are dropped,
// TOML has no equivalent.
func normalizeYAML(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for key, val := range v {
			if val == nil {
				delete(v, key)
				continue
			}
			v[key] = normalizeYAML(val)
		}
		return v
	case map[any]any:
		m := make(map[string]any, len(v))
		for key, val := range v {
			if val != nil {
				m[fmt.Sprint(key)] = normalizeYAML(val)
			}
		}
		return m
	case []any:
		for i, item := range v {
			v[i] = normalizeYAML(item)
		}
		return v
	case int:
		return int64(v)
	default:
		return v
	}
}
