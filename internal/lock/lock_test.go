package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lazyres/internal/decl"
)

func TestAcquireIsExclusive(t *testing.T) {
	r := NewRegistry()
	f := &decl.File{Package: "demo"}
	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, release, err := r.Acquire(context.Background(), f, false)
			if err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			release()
		}()
	}
	wg.Wait()
	if got := maxInside.Load(); got != 1 {
		t.Fatalf("max holders = %d, want 1", got)
	}
	if acq, _ := r.Stats(); acq != 16 {
		t.Fatalf("acquired = %d, want 16", acq)
	}
}

func TestAcquireIsReentrant(t *testing.T) {
	r := NewRegistry()
	f := &decl.File{Package: "demo"}
	ctx, release, err := r.Acquire(context.Background(), f, false)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer release()
	if !Held(ctx, f) {
		t.Fatalf("Held = false under the lock")
	}
	done := make(chan error, 1)
	go func() {
		_, inner, err := r.Acquire(ctx, f, false)
		if err == nil {
			inner()
		}
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("nested Acquire: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("nested Acquire blocked")
	}
	if _, re := r.Stats(); re != 1 {
		t.Fatalf("reentered = %d, want 1", re)
	}
}

func TestCancellableAcquire(t *testing.T) {
	r := NewRegistry()
	f := &decl.File{Package: "demo"}
	_, release, err := r.Acquire(context.Background(), f, false)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, _, err = r.Acquire(ctx, f, true)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestNonCancellableIgnoresContext(t *testing.T) {
	r := NewRegistry()
	f := &decl.File{Package: "demo"}
	_, release, _ := r.Acquire(context.Background(), f, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got := make(chan error, 1)
	go func() {
		_, rel, err := r.Acquire(ctx, f, false)
		if err == nil {
			rel()
		}
		got <- err
	}()
	time.Sleep(5 * time.Millisecond)
	release()
	if err := <-got; err != nil {
		t.Fatalf("non-cancellable Acquire failed: %v", err)
	}
}

func (r *Registry) waiters() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.waiting)
}

func TestCrossedAcquireReportsDeadlock(t *testing.T) {
	r := NewRegistry()
	a := &decl.File{Package: "a"}
	b := &decl.File{Package: "b"}

	ctxA, releaseA, err := r.Acquire(context.Background(), a, false)
	if err != nil {
		t.Fatalf("Acquire(a): %v", err)
	}
	ctxB, releaseB, err := r.Acquire(context.Background(), b, false)
	if err != nil {
		t.Fatalf("Acquire(b): %v", err)
	}

	// chain A waits for b
	got := make(chan error, 1)
	go func() {
		_, rel, err := r.Acquire(ctxA, b, false)
		if err == nil {
			rel()
		}
		got <- err
	}()
	deadline := time.Now().Add(time.Second)
	for r.waiters() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("chain A never started waiting")
		}
		time.Sleep(time.Millisecond)
	}

	// chain B asking for a would close the cycle
	if _, _, err := r.Acquire(ctxB, a, false); !errors.Is(err, ErrDeadlock) {
		t.Fatalf("err = %v, want ErrDeadlock", err)
	}
	if r.Deadlocks() != 1 {
		t.Fatalf("deadlocks = %d, want 1", r.Deadlocks())
	}

	// the victim backs off and chain A proceeds
	releaseB()
	if err := <-got; err != nil {
		t.Fatalf("chain A: %v", err)
	}
	releaseA()
}

func TestUnrelatedWaitIsNotDeadlock(t *testing.T) {
	r := NewRegistry()
	a := &decl.File{Package: "a"}
	b := &decl.File{Package: "b"}

	_, releaseA, _ := r.Acquire(context.Background(), a, false)
	ctxB, releaseB, _ := r.Acquire(context.Background(), b, false)
	defer releaseB()

	got := make(chan error, 1)
	go func() {
		_, rel, err := r.Acquire(ctxB, a, false)
		if err == nil {
			rel()
		}
		got <- err
	}()
	time.Sleep(5 * time.Millisecond)
	releaseA()
	if err := <-got; err != nil {
		t.Fatalf("Acquire(a) from chain B: %v", err)
	}
}
