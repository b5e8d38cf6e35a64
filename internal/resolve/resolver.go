// Package resolve is the lazy declaration resolver.
//
// Resolve brings one declaration to a requested phase, touching only the
// declarations on the path from its file to it. All mutation of a file's
// declarations happens under that file's lock; the phase read before the
// lock is a fast path only and is repeated once the lock is held.
package resolve

import (
	"sync/atomic"

	"lazyres/internal/algo"
	"lazyres/internal/diag"
	"lazyres/internal/lock"
	"lazyres/internal/observ"
	"lazyres/internal/symbols"
)

// Resolver drives the phase transformers. It is safe for concurrent use.
type Resolver struct {
	locker     lock.Locker
	files      FileResolver
	algorithms algo.Set
	symbols    symbols.Provider
	reporter   diag.Reporter
	observer   observ.Observer
	strict     bool

	stats counters
}

type counters struct {
	requests atomic.Int64
	fastPath atomic.Int64
	steps    atomic.Int64
	retries  atomic.Int64
}

// Stats is a snapshot of the resolver's counters.
type Stats struct {
	Requests int64 // calls into an entry point
	FastPath int64 // requests answered without taking a lock
	Steps    int64 // phase transformers run
	Retries  int64 // outermost requests restarted after a lock cycle
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLocker replaces the per-file lock registry.
func WithLocker(l lock.Locker) Option {
	return func(r *Resolver) { r.locker = l }
}

// WithFileResolver replaces the eager whole-file pass.
func WithFileResolver(f FileResolver) Option {
	return func(r *Resolver) { r.files = f }
}

// WithAlgorithms sets the phase algorithms; nil entries fall back to the
// reference ones.
func WithAlgorithms(set algo.Set) Option {
	return func(r *Resolver) { r.algorithms = set.WithDefaults() }
}

// WithSymbols sets the symbol provider.
func WithSymbols(p symbols.Provider) Option {
	return func(r *Resolver) { r.symbols = p }
}

// WithReporter sets where semantic diagnostics and invariant violations go.
func WithReporter(rep diag.Reporter) Option {
	return func(r *Resolver) { r.reporter = rep }
}

// WithObserver sets the lifecycle observer.
func WithObserver(o observ.Observer) Option {
	return func(r *Resolver) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithStrictChecks checks designation consistency before every phase step.
func WithStrictChecks(on bool) Option {
	return func(r *Resolver) { r.strict = on }
}

// New builds a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		locker:     lock.NewRegistry(),
		files:      EagerFiles{},
		algorithms: algo.Default(),
		reporter:   diag.NopReporter{},
		observer:   observ.Nop,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.symbols == nil {
		idx, _ := symbols.NewIndex()
		r.symbols = idx
	}
	return r
}

// Stats returns the resolver's counters.
func (r *Resolver) Stats() Stats {
	return Stats{
		Requests: r.stats.requests.Load(),
		FastPath: r.stats.fastPath.Load(),
		Steps:    r.stats.steps.Load(),
		Retries:  r.stats.retries.Load(),
	}
}
