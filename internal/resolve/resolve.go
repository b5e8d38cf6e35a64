package resolve

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"lazyres/internal/algo"
	"lazyres/internal/decl"
	"lazyres/internal/designation"
	"lazyres/internal/invariant"
	"lazyres/internal/lock"
	"lazyres/internal/observ"
	"lazyres/internal/phase"
	"lazyres/internal/symbols"
	"lazyres/internal/trace"
	"lazyres/internal/transform"
)

// Resolve brings d to phase to. Declarations that cannot be designated on
// their own are resolved through their owner: accessors through their
// property, parameters through their callable, local declarations through
// the body that contains them.
func (r *Resolver) Resolve(ctx context.Context, d decl.Decl, to phase.Phase, opts ...RequestOption) error {
	q := newRequest(opts)
	return r.track(ctx, q, "resolve", d, to, func(ctx context.Context) error {
		return r.resolve(ctx, q, d, to)
	})
}

// ResolveAnnotations resolves anns in the scope of file f. The file is
// brought to Imports first.
func (r *Resolver) ResolveAnnotations(ctx context.Context, f *decl.File, anns []*decl.Annotation, opts ...RequestOption) error {
	q := newRequest(opts)
	return r.track(ctx, q, "annotations", f, phase.Imports, func(ctx context.Context) error {
		if err := r.resolve(ctx, q, f, phase.Imports); err != nil {
			return err
		}
		ctx, release, err := r.lock(ctx, q, f)
		if err != nil {
			return err
		}
		defer release()
		ctx, cfg := r.config(ctx, r.symbols)
		return transform.NewFileAnnotations(f, anns, cfg).Transform(ctx)
	})
}

// ResolveBody brings a non-local declaration of f to BodyResolve. Unlike
// Resolve it takes the declaration as given: there is no fast path before
// the lock and no substitution of the target.
func (r *Resolver) ResolveBody(ctx context.Context, d decl.Decl, f *decl.File, opts ...RequestOption) error {
	q := newRequest(opts)
	return r.track(ctx, q, "body", d, phase.BodyResolve, func(ctx context.Context) error {
		owner, ok := decl.ContainingFile(d)
		if !ok {
			return invariant.New(invariant.MissingFile, d, d.Head().Phase(), "no containing file")
		}
		if owner != f {
			return invariant.New(invariant.Inconsistent, d, d.Head().Phase(),
				"declaration belongs to %s, not to the given file %s", owner.Package, f.Package)
		}
		ctx, release, err := r.lock(ctx, q, f)
		if err != nil {
			return err
		}
		defer release()
		if reached(d, phase.BodyResolve) {
			return nil
		}
		return r.run(ctx, q, f, d, phase.BodyResolve, nil, r.symbols)
	})
}

// ResolveReturnType resolves just far enough to pin the return type of d:
// Types for a written type, ImplicitTypesBodyResolve for an omitted one.
// Declarations without a return type need nothing.
//
// A local declaration reached while its body is being resolved by the
// same call chain is resolved in place.
//
// The payload of d may belong to a file this chain does not hold, so it is
// never taken as proof of resolution; only the stamps are. Whether the
// type was written is fixed when the tree is built.
func (r *Resolver) ResolveReturnType(ctx context.Context, d decl.Decl) error {
	if a, ok := d.(*decl.Accessor); ok && decl.Parent(a) != nil {
		d = decl.Parent(a)
	}
	rt := decl.ReturnTypeOf(d)
	if rt == nil {
		return nil
	}
	if decl.IsLocal(d) {
		f, ok := decl.ContainingFile(d)
		if ok && lock.Held(ctx, f) {
			owner := d
			for decl.IsSubElement(owner) && decl.Parent(owner) != nil {
				owner = decl.Parent(owner)
			}
			ctx, cfg := r.config(ctx, r.symbols)
			return transform.ResolveLocal(ctx, cfg, owner, phase.ImplicitTypesBodyResolve)
		}
		return r.Resolve(ctx, d, phase.BodyResolve)
	}
	to := phase.Types
	if rt.Omitted() {
		to = phase.ImplicitTypesBodyResolve
	}
	return r.Resolve(ctx, d, to)
}

// ResolveDesignated runs the phases after from up to to for a designation
// supplied by the caller. With OnAir the target may be a declaration
// attached to the path with decl.Attach; symbol lookups then see the
// target's own declarations first.
func (r *Resolver) ResolveDesignated(ctx context.Context, des *designation.Designation, from, to phase.Phase, opts ...RequestOption) error {
	q := newRequest(opts)
	if des == nil {
		return fmt.Errorf("resolve designated: nil designation")
	}
	return r.track(ctx, q, "designated", des.Target, to, func(ctx context.Context) error {
		if des.File == nil {
			return invariant.New(invariant.MissingFile, des.Target, from, "designation without file")
		}
		if des.Local {
			return invariant.New(invariant.LocalDesignation, des.Target, from, "could not resolve local designation %s", des)
		}
		if from >= to {
			return nil
		}
		ctx, release, err := r.lock(ctx, q, des.File)
		if err != nil {
			return err
		}
		defer release()
		prov := r.symbols
		if q.onAir {
			if !des.OnAir {
				on := *des
				on.OnAir = true
				des = &on
			}
			prov = symbols.NewInterceptor(r.symbols, des.File, des.Target)
			decl.Walk(des.Target, func(d decl.Decl) bool {
				d.Head().AdvancePhase(phase.Min(to, phase.LastNonLazy))
				return true
			})
		} else if reached(des.Target, to) {
			return nil
		}
		return r.run(ctx, q, des.File, des.Target, to, des, prov, from)
	})
}

// PhaseWithSubDeclarations is the lowest phase of d and, for classes, of
// everything declared inside.
func PhaseWithSubDeclarations(d decl.Decl) phase.Phase {
	return decl.DeepPhase(d)
}

func (r *Resolver) resolve(ctx context.Context, q *request, d decl.Decl, to phase.Phase) error {
	if !to.Valid() {
		return invariant.New(invariant.PhaseOrder, d, d.Head().Phase(), "unknown phase %s", to)
	}
	if reached(d, to) {
		r.stats.fastPath.Add(1)
		return nil
	}
	target, targetTo := resolvable(d, to)
	f, ok := decl.ContainingFile(target)
	if !ok {
		return invariant.New(invariant.MissingFile, d, d.Head().Phase(), "no containing file")
	}
	ctx, release, err := r.lock(ctx, q, f)
	if err != nil {
		return err
	}
	defer release()
	// Another request may have finished the work while this one waited.
	if reached(d, to) {
		return nil
	}
	return r.run(ctx, q, f, target, targetTo, nil, r.symbols)
}

// run does the work of a request under the lock of f: the eager file pass
// up to the last non-lazy phase, then one transformer per lazy phase.
// An optional lower bound skips the phases the caller vouches for.
func (r *Resolver) run(ctx context.Context, q *request, f *decl.File, target decl.Decl, to phase.Phase, des *designation.Designation, prov symbols.Provider, from ...phase.Phase) error {
	ctx, cfg := r.config(ctx, prov)
	if err := r.files.ResolveFile(ctx, cfg, f, to); err != nil {
		return fmt.Errorf("resolve file %s: %w", f.Package, err)
	}
	if to <= phase.LastNonLazy {
		return nil
	}
	if target == decl.Decl(f) {
		return transform.NewFileAnnotations(f, nil, cfg).Transform(ctx)
	}
	if des == nil {
		var err error
		if des, err = designation.Collect(target); err != nil {
			return err
		}
	}
	if des.Local {
		return invariant.New(invariant.LocalDesignation, target, target.Head().Phase(),
			"could not resolve local designation %s", des)
	}
	start := phase.LastNonLazy
	if len(from) > 0 {
		start = phase.Max(start, from[0])
	}
	if err := r.loop(ctx, q, des, cfg, start, to); err != nil {
		return err
	}
	if got, want := decl.DeepPhase(target), effective(to); got < want {
		return invariant.New(invariant.Postcondition, target, got, "expected %s after resolution", want)
	}
	return nil
}

// loop runs the transformers of the phases after from up to to. Plugin
// phases have no transformer and are stepped over.
func (r *Resolver) loop(ctx context.Context, q *request, des *designation.Designation, cfg *transform.Config, from, to phase.Phase) error {
	for p := from; p < to; {
		p = p.Next()
		if p.IsPlugin() {
			continue
		}
		if err := q.checkCancelled(ctx); err != nil {
			return err
		}
		if err := r.step(ctx, q, des, cfg, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) step(ctx context.Context, q *request, des *designation.Designation, cfg *transform.Config, p phase.Phase) error {
	t, err := transform.New(p, des, cfg)
	if err != nil {
		return err
	}
	r.stats.steps.Add(1)
	ctx, span := trace.Start(ctx, trace.ScopePhase, "phase:"+p.String())
	r.observer.Observe(observ.Event{Kind: observ.PhaseStart, Request: q.id, Decl: des.Target, Phase: p})
	start := time.Now()
	err = t.Transform(ctx)
	dur := time.Since(start)
	r.observer.Observe(observ.Event{Kind: observ.PhaseEnd, Request: q.id, Decl: des.Target, Phase: p, Dur: dur, Err: err})
	if err != nil {
		span.WithExtra("error", err.Error())
	}
	span.End(des.String())
	return err
}

// track wraps an entry point with tracing, observer events and
// reporting. Only the outermost request of a call chain reports a failure.
func (r *Resolver) track(ctx context.Context, q *request, name string, d decl.Decl, to phase.Phase, fn func(context.Context) error) error {
	r.stats.requests.Add(1)
	nested := ctx.Value(requestKey{}) != nil
	ctx = context.WithValue(ctx, requestKey{}, q.id)

	ctx, span := trace.Start(trace.WithRequest(ctx, q.id), trace.ScopeRequest, name)
	span.WithExtra("request", q.id).WithExtra("to", to.String())

	r.observer.Observe(observ.Event{Kind: observ.RequestStart, Request: q.id, Decl: d, Phase: to})
	start := time.Now()
	err := fn(ctx)
	// A lock cycle unwinds the whole chain with nothing stamped, so the
	// outermost request can start over once the other chain got through.
	for attempt := 1; !nested && errors.Is(err, lock.ErrDeadlock) && attempt <= deadlockRetries; attempt++ {
		r.stats.retries.Add(1)
		span.WithExtra("retry", strconv.Itoa(attempt))
		if err = backoff(ctx, q, attempt); err != nil {
			break
		}
		err = fn(ctx)
	}
	r.observer.Observe(observ.Event{Kind: observ.RequestEnd, Request: q.id, Decl: d, Phase: to, Dur: time.Since(start), Err: err})

	if err != nil {
		span.WithExtra("error", err.Error())
		if !nested {
			r.report(err)
		}
	}
	span.End(decl.Describe(d))
	return err
}

type requestKey struct{}

const deadlockRetries = 8

// backoff waits a little longer after every failed attempt.
func backoff(ctx context.Context, q *request, attempt int) error {
	t := time.NewTimer(time.Duration(attempt*attempt) * 50 * time.Microsecond)
	defer t.Stop()
	if !q.cancellable {
		<-t.C
		return nil
	}
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return cancelled(ctx)
	}
}

// lock takes the lock of f for q and reports the wait.
func (r *Resolver) lock(ctx context.Context, q *request, f *decl.File) (context.Context, func(), error) {
	if err := q.checkCancelled(ctx); err != nil {
		return ctx, nil, err
	}
	held := lock.Held(ctx, f)
	start := time.Now()
	lctx, release, err := r.locker.Acquire(ctx, f, q.cancellable)
	if err != nil {
		if q.cancellable && ctx.Err() != nil {
			return ctx, nil, cancelled(ctx)
		}
		return ctx, nil, err
	}
	if !held {
		r.observer.Observe(observ.Event{Kind: observ.LockWait, Request: q.id, Decl: f, Dur: time.Since(start)})
	}
	return lctx, release, nil
}

// config builds the transformer configuration of one request. The scope
// cache and the recursion guard come from ctx when an outer request of the
// same chain already made them.
func (r *Resolver) config(ctx context.Context, prov symbols.Provider) (context.Context, *transform.Config) {
	sess, ok := algo.SessionFrom(ctx)
	if !ok {
		sess = algo.NewSession()
		ctx = algo.WithSession(ctx, sess)
	}
	env := &algo.Env{
		Symbols:     prov,
		Scopes:      sess.Scopes,
		Computation: sess.Computation,
		ReturnTypes: algo.ReturnTypeFunc(r.ResolveReturnType),
		Reporter:    r.reporter,
	}
	tracer := trace.FromContext(ctx)
	cfg := &transform.Config{
		Env:        env,
		Algorithms: r.algorithms,
		Strict:     r.strict,
	}
	if tracer.Enabled() && tracer.Level().ShouldEmit(trace.ScopeDecl) {
		parent := trace.CurrentSpan(ctx)
		cfg.Visit = func(p phase.Phase, d decl.Decl) {
			trace.Point(tracer, trace.ScopeDecl, p.String(), parent, decl.Describe(d))
		}
	}
	return ctx, cfg
}

// resolvable returns the declaration a request for d is carried out on and
// the phase it must reach.
func resolvable(d decl.Decl, to phase.Phase) (decl.Decl, phase.Phase) {
	if _, ok := d.(*decl.File); ok {
		return d, to
	}
	target, ok := decl.NonLocalContainer(d)
	if !ok {
		return d, to
	}
	if decl.IsLocal(d) {
		return target, phase.BodyResolve
	}
	return target, to
}

// reached reports whether d and everything declared inside it are at to.
// A file is at to once its own stamp is; a file never goes past the last
// non-lazy phase.
func reached(d decl.Decl, to phase.Phase) bool {
	if _, ok := d.(*decl.File); ok && to > phase.LastNonLazy {
		return false
	}
	return decl.DeepPhase(d) >= effective(to)
}

// effective is the phase a declaration is stamped with once resolution to
// p finished: plugin phases are never stamped.
func effective(p phase.Phase) phase.Phase {
	for p.IsPlugin() {
		p--
	}
	return p
}

// IsCancelled reports whether err comes from an abandoned request.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
