package transform

import (
	"context"

	"lazyres/internal/algo"
	"lazyres/internal/decl"
	"lazyres/internal/designation"
	"lazyres/internal/phase"
	"lazyres/internal/walk"
)

// lazy is the common shape of every lazy phase. Phase specifics plug in as
// a precondition, a fast path that may finish the step without a walk, and
// an extra step after the walk.
type lazy struct {
	phase phase.Phase
	des   *designation.Designation
	cfg   *Config
	alg   algo.Algorithm

	pre   func() error
	fast  func(ctx context.Context) (bool, error)
	after func()

	done plan
}

// plan holds the stamps earned by one step. Nothing is stamped before the
// step's postconditions hold, so a failed step leaves every stamp as it was.
type plan struct {
	headers []*decl.Class
	decls   []decl.Decl // stamped together with their sub-elements
	classes []*decl.Class
}

func (pl *plan) header(c *decl.Class) {
	pl.headers = append(pl.headers, c)
	pl.decls = append(pl.decls, decl.SubElements(c)...)
}

// commit applies the stamps. Classes come last, in leave order, so a nested
// class is stamped before its container checks its members.
func (pl *plan) commit(p phase.Phase) {
	for _, c := range pl.headers {
		c.AdvanceHeaderPhase(p)
	}
	for _, d := range pl.decls {
		stamp(d, p)
	}
	for _, c := range pl.classes {
		bumpClass(c, p)
	}
	*pl = plan{}
}

func (t *lazy) Transform(ctx context.Context) error {
	des := t.des
	if t.cfg.Strict {
		if err := des.CheckConsistency(false); err != nil {
			return err
		}
	}
	if t.pre != nil {
		if err := t.pre(); err != nil {
			return err
		}
	}
	if decl.IsCallable(des.Target) && designation.TargetPhase(des.Target) >= t.phase {
		return nil
	}
	if t.fast != nil {
		done, err := t.fast(ctx)
		if err != nil || done {
			return err
		}
	}
	t.done = plan{}
	w := designation.NewWalker(des)
	err := walk.Run(ctx, des.File, w, walk.Visitor{
		SkipRoot: true,
		Enter: func(ctx context.Context, d decl.Decl) error {
			if w.InTarget() {
				return t.enterTarget(ctx, d)
			}
			if c, ok := d.(*decl.Class); ok && des.OnPath(c) {
				return t.enterPath(ctx, c)
			}
			return nil
		},
		Leave: func(_ context.Context, d decl.Decl) error {
			if c, ok := d.(*decl.Class); ok && w.InTarget() {
				t.done.classes = append(t.done.classes, c)
			}
			return nil
		},
	})
	if err != nil {
		return err
	}
	if err := w.Passed(); err != nil {
		return err
	}
	if t.after != nil {
		t.after()
	}
	if err := t.checkPostconditions(); err != nil {
		return err
	}
	t.done.commit(t.phase)
	bumpPath(des.Path, t.phase)
	return nil
}

// enterPath resolves the header data of a class on the path.
func (t *lazy) enterPath(ctx context.Context, c *decl.Class) error {
	if c.HeaderPhase() >= t.phase {
		return nil
	}
	if err := t.apply(ctx, c); err != nil {
		return err
	}
	t.done.header(c)
	return nil
}

// enterTarget resolves a declaration of the target's subtree. Classes get
// their main stamp after their members.
func (t *lazy) enterTarget(ctx context.Context, d decl.Decl) error {
	if c, ok := d.(*decl.Class); ok {
		if c.HeaderPhase() >= t.phase {
			return nil
		}
		if err := t.apply(ctx, c); err != nil {
			return err
		}
		t.done.header(c)
		return nil
	}
	if d.Head().Phase() >= t.phase {
		return nil
	}
	if err := t.apply(ctx, d); err != nil {
		return err
	}
	if t.phase == phase.BodyResolve {
		if err := t.resolveLocals(ctx, d); err != nil {
			return err
		}
	}
	t.done.decls = append(t.done.decls, d)
	return nil
}

func (t *lazy) apply(ctx context.Context, d decl.Decl) error {
	if t.alg == nil {
		return nil
	}
	if t.cfg.Visit != nil {
		t.cfg.Visit(t.phase, d)
	}
	return t.alg.Apply(ctx, t.cfg.Env, d)
}

// resolveLocals brings the declarations nested in d's bodies to
// BodyResolve.
func (t *lazy) resolveLocals(ctx context.Context, d decl.Decl) error {
	for _, owner := range append([]decl.Decl{d}, decl.SubElements(d)...) {
		for _, l := range decl.Locals(owner) {
			if err := ResolveLocal(ctx, t.cfg, l, phase.BodyResolve); err != nil {
				return err
			}
		}
	}
	return nil
}

// stamp raises d and its sub-elements to p.
func stamp(d decl.Decl, p phase.Phase) {
	d.Head().AdvancePhase(p)
	for _, s := range decl.SubElements(d) {
		stamp(s, p)
	}
}

// bumpClass raises the main stamp of c when every member reached p.
func bumpClass(c *decl.Class, p phase.Phase) bool {
	for _, m := range c.Members {
		if m.Head().Phase() < p {
			return false
		}
	}
	return c.AdvancePhase(p)
}

// bumpPath tries the path classes deepest first and stops at the first one
// that still has a member below p.
func bumpPath(path []*decl.Class, p phase.Phase) {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i].Phase() >= p {
			continue
		}
		if !bumpClass(path[i], p) {
			return
		}
	}
}
