package algo

import (
	"context"

	"lazyres/internal/decl"
)

func resolveBody(ctx context.Context, env *Env, d decl.Decl) error {
	switch d := d.(type) {
	case *decl.Function:
		if err := env.resolveDefaults(ctx, d, d.Params); err != nil {
			return err
		}
		return env.resolveBlock(ctx, d, d.Body)
	case *decl.Constructor:
		if err := env.resolveDefaults(ctx, d, d.Params); err != nil {
			return err
		}
		return env.resolveBlock(ctx, d, d.Body)
	case *decl.Property:
		if _, err := env.typeOf(ctx, d, d.Initializer); err != nil {
			return err
		}
		for _, acc := range []*decl.Accessor{d.Getter, d.Setter} {
			if acc == nil {
				continue
			}
			if err := env.resolveBlock(ctx, acc, acc.Body); err != nil {
				return err
			}
		}
	case *decl.Field:
		if _, err := env.typeOf(ctx, d, d.Initializer); err != nil {
			return err
		}
	case *decl.AnonymousInitializer:
		return env.resolveBlock(ctx, d, d.Body)
	}
	return nil
}

func (e *Env) resolveDefaults(ctx context.Context, site decl.Decl, ps []*decl.ValueParameter) error {
	for _, p := range ps {
		if _, err := e.typeOf(ctx, site, p.Default); err != nil {
			return err
		}
	}
	return nil
}

func (e *Env) resolveBlock(ctx context.Context, site decl.Decl, b *decl.Body) error {
	if b == nil || b.Resolved {
		return nil
	}
	for _, st := range b.Statements {
		if _, err := e.typeOf(ctx, site, st); err != nil {
			return err
		}
	}
	if _, err := e.typeOf(ctx, site, b.Result); err != nil {
		return err
	}
	b.Resolved = true
	return nil
}
