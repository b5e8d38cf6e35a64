package driver

import (
	"sync"

	"lazyres/internal/decl"
	"lazyres/internal/project"
)

// minimal per-process cache by path + content hash
type cached struct {
	content project.Digest
	file    *decl.File
}

// TreeCache keeps parsed trees so that reopening unchanged files keeps
// their resolution state.
type TreeCache struct {
	mu     sync.RWMutex
	byPath map[string]cached
}

// NewTreeCache creates a TreeCache with the given capacity hint.
func NewTreeCache(capHint int) *TreeCache {
	return &TreeCache{byPath: make(map[string]cached, capHint)}
}

// Get returns the tree of path if it was parsed from the same content.
func (c *TreeCache) Get(path string, content project.Digest) (*decl.File, bool) {
	c.mu.RLock()
	rec, ok := c.byPath[path]
	c.mu.RUnlock()
	if !ok || rec.content != content {
		return nil, false
	}
	return rec.file, true
}

// Put records the tree parsed from content.
func (c *TreeCache) Put(path string, content project.Digest, f *decl.File) {
	c.mu.Lock()
	c.byPath[path] = cached{content: content, file: f}
	c.mu.Unlock()
}

// Len returns the number of cached trees.
func (c *TreeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byPath)
}
