package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileNames are looked up in a project directory, first match wins
var FileNames = []string{"Cbuild.toml", "cbuild.hcl", "cbuild.yaml", "cbuild.yml"}

var ErrNotFound = errors.New("no config file found (tried " + strings.Join(FileNames, ", ") + ")")

// Find returns the config file of the project in dir
func Find(dir string) (string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("%s: %w", dir, ErrNotFound)
}

// ParseConfigFromFile parses a config file, picking the format by extension
func ParseConfigFromFile(path string, env ConfigEnv) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return ParseHCL(src, path, env)
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ParseYAML(bufio.NewReader(f), env)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ParseTOML(bufio.NewReader(f), env)
	}
}
