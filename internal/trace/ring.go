package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the last N events in memory. It backs post-mortem
// dumps: on a panic or a failed request the tail of the trace is printed
// instead of a full stream.
type RingTracer struct {
	mu     sync.Mutex
	events []Event
	total  uint64 // events ever stored; total % len(events) is the next slot
	level  Level
}

// NewRingTracer creates a ring of the given capacity (4096 when <= 0).
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{events: make([]Event, capacity), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	stored := *ev
	t.mu.Lock()
	stored.Seq = NextSeq()
	t.events[t.total%uint64(len(t.events))] = stored
	t.total++
	t.mu.Unlock()
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	return t.collect(nil)
}

// Request returns the stored events of one resolve request, oldest first.
func (t *RingTracer) Request(id string) []Event {
	return t.collect(func(ev *Event) bool { return ev.Request == id })
}

// Dropped reports how many events were overwritten.
func (t *RingTracer) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n := uint64(len(t.events)); t.total > n {
		return t.total - n
	}
	return 0
}

func (t *RingTracer) collect(keep func(*Event) bool) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := uint64(len(t.events))
	first := uint64(0)
	if t.total > n {
		first = t.total - n
	}
	out := make([]Event, 0, t.total-first)
	for i := first; i < t.total; i++ {
		ev := &t.events[i%n]
		if keep == nil || keep(ev) {
			out = append(out, *ev)
		}
	}
	return out
}

// Dump writes the stored events to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	return writeEvents(w, t.Snapshot(), format)
}

func writeEvents(w io.Writer, events []Event, format Format) error {
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
