package observ

import (
	"strings"
	"sync"
	"testing"
	"time"

	"lazyres/internal/phase"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	i := tm.Begin("Types")
	time.Sleep(time.Millisecond)
	tm.End(i, "demo.Box")
	tm.End(42, "ignored")
	r := tm.Report()
	if len(r.Steps) != 1 || r.Steps[0].Note != "demo.Box" || r.Steps[0].DurationMS <= 0 {
		t.Fatalf("report = %+v", r)
	}
	if s := tm.Summary(); !strings.Contains(s, "Types") || !strings.Contains(s, "total") {
		t.Fatalf("summary:\n%s", s)
	}
}

func TestTotalsFromObserver(t *testing.T) {
	totals := NewTotals()
	obs := Multi(TotalsObserver(totals), nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			obs.Observe(Event{Kind: PhaseEnd, Phase: phase.Types, Dur: time.Millisecond})
			obs.Observe(Event{Kind: RequestEnd})
		}()
	}
	wg.Wait()
	r := totals.Report()
	if len(r.Steps) != 1 || r.Steps[0].Count != 8 || r.Steps[0].Name != "Types" {
		t.Fatalf("totals = %+v", r)
	}
}

func TestRecorder(t *testing.T) {
	var rec Recorder
	obs := Multi(&rec, Nop)
	obs.Observe(Event{Kind: RequestStart})
	obs.Observe(Event{Kind: PhaseStart})
	obs.Observe(Event{Kind: PhaseEnd})
	if rec.Count(PhaseEnd) != 1 || len(rec.Events()) != 3 {
		t.Fatalf("recorded %v", rec.Events())
	}
}
