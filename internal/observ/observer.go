// Package observ collects timings and lifecycle events of resolve requests.
package observ

import (
	"sync"
	"time"

	"lazyres/internal/decl"
	"lazyres/internal/phase"
)

// EventKind is the lifecycle point an Event reports.
type EventKind uint8

const (
	RequestStart EventKind = iota + 1
	RequestEnd
	PhaseStart
	PhaseEnd
	LockWait
)

func (k EventKind) String() string {
	switch k {
	case RequestStart:
		return "request-start"
	case RequestEnd:
		return "request-end"
	case PhaseStart:
		return "phase-start"
	case PhaseEnd:
		return "phase-end"
	case LockWait:
		return "lock-wait"
	}
	return "unknown"
}

// Event is one lifecycle notification of the resolver.
type Event struct {
	Kind    EventKind
	Request string
	Decl    decl.Decl
	Phase   phase.Phase
	Dur     time.Duration
	Err     error
}

// Observer receives resolver events. Implementations must be safe for
// concurrent use.
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev Event)

func (f ObserverFunc) Observe(ev Event) { f(ev) }

// Nop discards events.
var Nop Observer = ObserverFunc(func(Event) {})

// Multi fans events out.
func Multi(obs ...Observer) Observer {
	var list []Observer
	for _, o := range obs {
		if o != nil {
			list = append(list, o)
		}
	}
	if len(list) == 1 {
		return list[0]
	}
	return ObserverFunc(func(ev Event) {
		for _, o := range list {
			o.Observe(ev)
		}
	})
}

// Recorder keeps every event; meant for tests and the CLI timings table.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Observe(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// TotalsObserver feeds phase durations into Totals.
func TotalsObserver(t *Totals) Observer {
	return ObserverFunc(func(ev Event) {
		switch ev.Kind {
		case PhaseEnd:
			t.Add(ev.Phase.String(), ev.Dur)
		case LockWait:
			t.Add("lock wait", ev.Dur)
		}
	})
}
