package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigName is the file FindConfig looks for.
const ConfigName = "lazyres.toml"

// FindConfig returns the nearest lazyres.toml at or above startDir.
func FindConfig(startDir string) (path string, ok bool, err error) {
	return findUp(startDir, ConfigName)
}

// Root is the directory of the loaded lazyres.toml, or "" for defaults.
// Tree paths in diagnostics are shown relative to it.
func (c Config) Root() string {
	if c.Path == "" {
		return ""
	}
	return filepath.Dir(c.Path)
}

func findUp(startDir, name string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for ; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, name)
		_, err := os.Stat(candidate)
		switch {
		case err == nil:
			return candidate, true, nil
		case !errors.Is(err, os.ErrNotExist):
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		if filepath.Dir(dir) == dir {
			return "", false, nil
		}
	}
}
