package trace

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Heartbeat periodically emits heartbeat events. Heartbeats without span
// ends usually mean a request is stuck waiting on a file lock; the status
// callback lets the owner put resolver counters into each beat.
type Heartbeat struct {
	tracer   Tracer
	interval time.Duration
	status   atomic.Pointer[func() string]
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// StartHeartbeat starts emitting at interval. It returns nil when the
// tracer is disabled; a nil Heartbeat is safe to use.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer:   tracer,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.run()
	return h
}

// SetStatus installs a callback whose result becomes the detail of every
// later beat.
func (h *Heartbeat) SetStatus(fn func() string) {
	if h == nil {
		return
	}
	h.status.Store(&fn)
}

func (h *Heartbeat) run() {
	defer close(h.done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var beat uint64
	for {
		select {
		case <-ticker.C:
			beat++
			detail := fmt.Sprintf("#%d", beat)
			if fn := h.status.Load(); fn != nil && *fn != nil {
				detail += " " + (*fn)()
			}
			h.tracer.Emit(&Event{
				Time:   time.Now(),
				Seq:    NextSeq(),
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				Name:   "heartbeat",
				Detail: detail,
			})
		case <-h.stopCh:
			return
		}
	}
}

// Stop ends the heartbeat goroutine and waits for it. Safe to call twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.stopOnce.Do(func() { close(h.stopCh) })
	<-h.done
}
