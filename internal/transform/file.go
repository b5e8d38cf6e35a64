package transform

import (
	"context"

	"lazyres/internal/algo"
	"lazyres/internal/decl"
	"lazyres/internal/phase"
)

// fileAnnotations resolves annotations in the scope of a file.
type fileAnnotations struct {
	file *decl.File
	anns []*decl.Annotation
	cfg  *Config
}

// NewFileAnnotations returns the file-scoped transformer of file
// annotations. It needs no designation. With anns nil the file's own
// annotations are resolved by the configured algorithm; otherwise anns are
// resolved in the file's scope.
func NewFileAnnotations(f *decl.File, anns []*decl.Annotation, cfg *Config) Transformer {
	return &fileAnnotations{file: f, anns: anns, cfg: cfg}
}

func (t *fileAnnotations) Transform(ctx context.Context) error {
	if t.anns != nil {
		if t.cfg.Visit != nil {
			t.cfg.Visit(phase.Imports, t.file)
		}
		return algo.ResolveAnnotations(ctx, t.cfg.Env, t.file, t.anns)
	}
	if t.cfg.Algorithms.FileAnnotations == nil {
		return nil
	}
	if t.cfg.Visit != nil {
		t.cfg.Visit(phase.Imports, t.file)
	}
	return t.cfg.Algorithms.FileAnnotations.ApplyFile(ctx, t.cfg.Env, t.file)
}

// ResolveFileEagerly runs the non-lazy phases for a whole file up to to:
// the imports are resolved and every declaration of the file, local ones
// included, is stamped.
func ResolveFileEagerly(ctx context.Context, cfg *Config, f *decl.File, to phase.Phase) error {
	to = phase.Min(to, phase.LastNonLazy)
	if f.Phase() >= to {
		return nil
	}
	if to >= phase.Imports && cfg.Algorithms.Imports != nil {
		if cfg.Visit != nil {
			cfg.Visit(phase.Imports, f)
		}
		if err := cfg.Algorithms.Imports.ApplyFile(ctx, cfg.Env, f); err != nil {
			return err
		}
	}
	decl.Walk(f, func(d decl.Decl) bool {
		d.Head().AdvancePhase(to)
		if c, ok := d.(*decl.Class); ok {
			c.AdvanceHeaderPhase(to)
		}
		return true
	})
	return nil
}
