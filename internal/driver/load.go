package driver

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/singleflight"

	"lazyres/internal/decl"
	"lazyres/internal/project"
	"lazyres/internal/source"
	"lazyres/internal/treeio"
)

// Loader reads tree files. Concurrent loads of the same unchanged file
// share one parse.
type Loader struct {
	fs    *source.FileSet
	cache *TreeCache
	group singleflight.Group
}

// NewLoader returns a Loader registering files in fs. A nil cache disables
// reuse across sessions.
func NewLoader(fs *source.FileSet, cache *TreeCache) *Loader {
	if cache == nil {
		cache = NewTreeCache(0)
	}
	return &Loader{fs: fs, cache: cache}
}

// Load returns the tree of path.
func (l *Loader) Load(ctx context.Context, path string) (*decl.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tree %s: %w", path, err)
	}
	digest := project.HashContent(data)
	if f, ok := l.cache.Get(path, digest); ok {
		return f, nil
	}
	v, err, _ := l.group.Do(path+"@"+digest.String(), func() (any, error) {
		if f, ok := l.cache.Get(path, digest); ok {
			return f, nil
		}
		f, err := treeio.Parse(l.fs, path, data)
		if err != nil {
			return nil, err
		}
		l.cache.Put(path, digest, f)
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*decl.File), nil
}
