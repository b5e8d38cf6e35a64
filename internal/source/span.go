package source

import (
	"fmt"
)

// FileID uniquely identifies a tree file within a FileSet.
type FileID uint32

// NoFile marks spans that are not tied to any file.
const NoFile FileID = 0

// Span locates a declaration in the file it was loaded from.
// Line and Col are 1-based; a zero Line means "unknown position".
type Span struct {
	File FileID
	Line uint32
	Col  uint32
}

func (s Span) Empty() bool {
	return s.Line == 0
}

func (s Span) String() string {
	if s.Empty() {
		return fmt.Sprintf("%d:?", s.File)
	}
	return fmt.Sprintf("%d:%d:%d", s.File, s.Line, s.Col)
}

// Before reports whether s starts before other within the same file.
func (s Span) Before(other Span) bool {
	if s.File != other.File {
		return s.File < other.File
	}
	if s.Line != other.Line {
		return s.Line < other.Line
	}
	return s.Col < other.Col
}
