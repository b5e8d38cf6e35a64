package diagfmt

import (
	"path/filepath"

	"lazyres/internal/source"
)

func formatPath(fs *source.FileSet, id source.FileID, mode PathMode) string {
	if fs == nil {
		return ""
	}
	f := fs.Get(id)
	if f == nil {
		return ""
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return abs
		}
	case PathModeRelative, PathModeAuto:
		base := fs.BaseDir()
		if base == "" && mode == PathModeRelative {
			base = "."
		}
		if base != "" {
			if rel, err := filepath.Rel(base, f.Path); err == nil {
				return rel
			}
		}
	case PathModeBasename:
		return filepath.Base(f.Path)
	}
	return f.Path
}
