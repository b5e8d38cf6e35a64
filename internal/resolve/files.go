package resolve

import (
	"context"

	"lazyres/internal/decl"
	"lazyres/internal/phase"
	"lazyres/internal/transform"
)

// FileResolver runs the non-lazy phases for a whole file. It is called
// with the file's lock held and must return quickly when the file is
// already at to.
type FileResolver interface {
	ResolveFile(ctx context.Context, cfg *transform.Config, f *decl.File, to phase.Phase) error
}

// EagerFiles is the default FileResolver.
type EagerFiles struct{}

func (EagerFiles) ResolveFile(ctx context.Context, cfg *transform.Config, f *decl.File, to phase.Phase) error {
	return transform.ResolveFileEagerly(ctx, cfg, f, to)
}
