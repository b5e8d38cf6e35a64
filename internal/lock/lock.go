// Package lock provides the per-file locks of the lazy resolver.
//
// A file's declarations are mutated only while its lock is held. Locks are
// re-entrant along one call chain: the context returned by Acquire remembers
// which files the chain holds, and nested requests for the same file pass
// straight through.
//
// A chain that holds one file and asks for another can close a cycle with
// a chain doing the opposite. The Registry refuses the acquisition that
// would close the cycle with ErrDeadlock instead of blocking forever.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"lazyres/internal/decl"
)

// ErrDeadlock is returned by Acquire when waiting would never end. The
// caller is expected to give up every lock of its chain and retry.
var ErrDeadlock = errors.New("lock cycle between files")

// Locker serializes work on a file.
type Locker interface {
	// Acquire takes the lock of f. When cancellable is set the wait is
	// abandoned once ctx is done; otherwise the wait ignores ctx.
	// The returned context must be used for nested work under the lock.
	Acquire(ctx context.Context, f *decl.File, cancellable bool) (context.Context, func(), error)
}

// Registry is a Locker with one weighted semaphore per file.
type Registry struct {
	mu      sync.Mutex
	files   map[*decl.File]*semaphore.Weighted
	holders map[*decl.File]*owner
	waiting map[*owner]*decl.File

	acquired  atomic.Int64
	reentered atomic.Int64
	deadlocks atomic.Int64
}

func NewRegistry() *Registry {
	return &Registry{
		files:   make(map[*decl.File]*semaphore.Weighted),
		holders: make(map[*decl.File]*owner),
		waiting: make(map[*owner]*decl.File),
	}
}

// owner identifies one call chain.
type owner struct{ id uint64 }

var ownerSeq atomic.Uint64

func (r *Registry) semLocked(f *decl.File) *semaphore.Weighted {
	s, ok := r.files[f]
	if !ok {
		s = semaphore.NewWeighted(1)
		r.files[f] = s
	}
	return s
}

func (r *Registry) Acquire(ctx context.Context, f *decl.File, cancellable bool) (context.Context, func(), error) {
	if Held(ctx, f) {
		r.reentered.Add(1)
		return ctx, func() {}, nil
	}
	me := ownerOf(ctx)

	r.mu.Lock()
	if r.closesCycleLocked(me, f) {
		r.mu.Unlock()
		r.deadlocks.Add(1)
		return ctx, nil, fmt.Errorf("lock %s: %w", f.Package, ErrDeadlock)
	}
	s := r.semLocked(f)
	r.waiting[me] = f
	r.mu.Unlock()

	waitCtx := ctx
	if !cancellable {
		waitCtx = context.WithoutCancel(ctx)
	}
	err := s.Acquire(waitCtx, 1)

	r.mu.Lock()
	delete(r.waiting, me)
	if err == nil {
		r.holders[f] = me
	}
	r.mu.Unlock()
	if err != nil {
		return ctx, nil, fmt.Errorf("lock %s: %w", f.Package, err)
	}

	r.acquired.Add(1)
	var once sync.Once
	release := func() {
		once.Do(func() {
			r.mu.Lock()
			if r.holders[f] == me {
				delete(r.holders, f)
			}
			r.mu.Unlock()
			s.Release(1)
		})
	}
	return withHeld(ctx, f, me), release, nil
}

// closesCycleLocked follows holder -> awaited file -> holder starting at f
// and reports whether the walk comes back to me.
func (r *Registry) closesCycleLocked(me *owner, f *decl.File) bool {
	cur := f
	for i, n := 0, len(r.holders)+1; i < n; i++ {
		h, ok := r.holders[cur]
		if !ok {
			return false
		}
		if h == me {
			return true
		}
		next, ok := r.waiting[h]
		if !ok {
			return false
		}
		cur = next
	}
	return false
}

// Stats reports how many locks were taken and how many nested requests
// reused a held lock.
func (r *Registry) Stats() (acquired, reentered int64) {
	return r.acquired.Load(), r.reentered.Load()
}

// Deadlocks reports how many acquisitions were refused with ErrDeadlock.
func (r *Registry) Deadlocks() int64 { return r.deadlocks.Load() }

type heldKey struct{}

type held struct {
	file  *decl.File
	owner *owner
	next  *held
}

func ownerOf(ctx context.Context) *owner {
	if h, _ := ctx.Value(heldKey{}).(*held); h != nil {
		return h.owner
	}
	return &owner{id: ownerSeq.Add(1)}
}

func withHeld(ctx context.Context, f *decl.File, me *owner) context.Context {
	prev, _ := ctx.Value(heldKey{}).(*held)
	return context.WithValue(ctx, heldKey{}, &held{file: f, owner: me, next: prev})
}

// Held reports whether the call chain of ctx holds the lock of f.
func Held(ctx context.Context, f *decl.File) bool {
	for h, _ := ctx.Value(heldKey{}).(*held); h != nil; h = h.next {
		if h.file == f {
			return true
		}
	}
	return false
}
