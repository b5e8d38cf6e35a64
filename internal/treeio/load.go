package treeio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"lazyres/internal/decl"
	"lazyres/internal/source"
)

// Error is a malformed tree file. Line and Col are 1-based; zero when the
// position is unknown.
type Error struct {
	Path string
	Line int
	Col  int
	Msg  string
}

func (e *Error) Error() string {
	switch {
	case e.Path == "":
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
	case e.Line == 0:
		return fmt.Sprintf("%s: %s", e.Path, e.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Col, e.Msg)
}

// Parse builds the declaration tree of one tree file. path is registered in
// fs and used for spans and error messages only.
func Parse(fs *source.FileSet, path string, data []byte) (*decl.File, error) {
	var raw rawFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &Error{Path: path, Msg: "empty tree file"}
		}
		var te *Error
		if errors.As(err, &te) {
			te.Path = path
			return nil, te
		}
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if strings.TrimSpace(raw.Package) == "" {
		return nil, &Error{Path: path, Msg: "package is required"}
	}
	b := &builder{path: path, file: fs.Add(path)}
	return b.fileDecl(&raw)
}

// Load reads and parses one tree file.
func Load(fs *source.FileSet, path string) (*decl.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tree %s: %w", path, err)
	}
	return Parse(fs, path, data)
}

// Glob returns the tree files of dir (*.yaml and *.yml), sorted.
func Glob(dir string) ([]string, error) {
	var out []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		m, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		out = append(out, m...)
	}
	sort.Strings(out)
	return out, nil
}

// Expand turns a mix of files and directories into tree file paths.
func Expand(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			out = append(out, arg)
			continue
		}
		files, err := Glob(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}
