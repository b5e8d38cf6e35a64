package transform

import (
	"context"

	"lazyres/internal/decl"
	"lazyres/internal/invariant"
	"lazyres/internal/phase"
	"lazyres/internal/walk"
)

// ResolveLocal brings a local declaration and everything below it to phase
// to. Local declarations are not reachable by a designation; they are
// resolved in place by the body that owns them, under the owner's lock.
func ResolveLocal(ctx context.Context, cfg *Config, d decl.Decl, to phase.Phase) error {
	if !to.IsLazy() {
		return invariant.New(invariant.NonLazyPhase, d, to, "local declarations are resolved by lazy phases only")
	}
	start := phase.Max(decl.DeepPhase(d), phase.LastNonLazy)
	if start >= to {
		return nil
	}
	for p := start.Next(); p <= to; p = p.Next() {
		if !p.IsPlugin() {
			if err := applyTree(ctx, cfg, d, p); err != nil {
				return err
			}
		}
		if p == phase.Last {
			break
		}
	}
	return nil
}

// applyTree applies phase p to root and its whole subtree.
func applyTree(ctx context.Context, cfg *Config, root decl.Decl, p phase.Phase) error {
	alg, _ := cfg.Algorithms.For(p)
	t := &lazy{phase: p, cfg: cfg, alg: alg}
	err := walk.Run(ctx, root, walk.WholeFile{}, walk.Visitor{
		Enter: func(ctx context.Context, d decl.Decl) error {
			return t.enterTarget(ctx, d)
		},
		Leave: func(_ context.Context, d decl.Decl) error {
			if c, ok := d.(*decl.Class); ok {
				t.done.classes = append(t.done.classes, c)
			}
			return nil
		},
	})
	if err != nil {
		return err
	}
	t.done.commit(p)
	return nil
}
