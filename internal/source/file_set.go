package source

import (
	"fmt"
	"path/filepath"
	"sync"
)

// File captures metadata for a single loaded tree file.
type File struct {
	ID   FileID
	Path string
}

// FileSet hands out FileIDs and maps them back to paths.
// Safe for concurrent use: batch loading registers files from many goroutines.
type FileSet struct {
	mu      sync.RWMutex
	files   []File // index = FileID-1
	byPath  map[string]FileID
	baseDir string
}

func NewFileSet() *FileSet {
	return &FileSet{byPath: make(map[string]FileID)}
}

// NewFileSetWithBase creates a FileSet that renders paths relative to baseDir.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

func (fileSet *FileSet) BaseDir() string {
	return fileSet.baseDir
}

// Add registers path and returns its ID. Adding the same path twice returns
// the existing ID.
func (fileSet *FileSet) Add(path string) FileID {
	fileSet.mu.Lock()
	defer fileSet.mu.Unlock()
	if id, ok := fileSet.byPath[path]; ok {
		return id
	}
	id := FileID(len(fileSet.files) + 1)
	fileSet.files = append(fileSet.files, File{ID: id, Path: path})
	fileSet.byPath[path] = id
	return id
}

// Get returns the file for id, or nil.
func (fileSet *FileSet) Get(id FileID) *File {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	if id == NoFile || int(id) > len(fileSet.files) {
		return nil
	}
	f := fileSet.files[id-1]
	return &f
}

// GetByPath looks up a previously added file.
func (fileSet *FileSet) GetByPath(path string) (*File, bool) {
	fileSet.mu.RLock()
	id, ok := fileSet.byPath[path]
	fileSet.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return fileSet.Get(id), true
}

// Len returns the number of registered files.
func (fileSet *FileSet) Len() int {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	return len(fileSet.files)
}

// Format renders a span as "path:line:col", relative to the base directory
// when possible.
func (fileSet *FileSet) Format(s Span) string {
	f := fileSet.Get(s.File)
	if f == nil {
		return s.String()
	}
	path := f.Path
	if fileSet.baseDir != "" {
		if rel, err := filepath.Rel(fileSet.baseDir, path); err == nil {
			path = rel
		}
	}
	if s.Empty() {
		return path
	}
	return fmt.Sprintf("%s:%d:%d", path, s.Line, s.Col)
}
