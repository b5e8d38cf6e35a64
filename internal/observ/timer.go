package observ

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Step records the duration and metadata of one timed step.
type Step struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer tracks the execution time of the steps of one request. Safe for
// concurrent use: nested requests of one chain share their parent's timer.
type Timer struct {
	mu    sync.Mutex
	steps []Step
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{steps: make([]Step, 0, 8)} }

// Begin starts a new step and returns its index.
func (t *Timer) Begin(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.steps = append(t.steps, Step{Name: name, Start: time.Now()})
	return len(t.steps) - 1
}

// End finishes a step by its index.
func (t *Timer) End(idx int, note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.steps) {
		return
	}
	s := &t.steps[idx]
	s.Dur = time.Since(s.Start)
	s.Note = note
}

// Summary returns a human-readable string summarizing all tracked steps.
func (t *Timer) Summary() string {
	return t.Report().String()
}

// StepReport представляет сжатую информацию о шаге таймера для сериализации.
type StepReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Count      int     `json:"count,omitempty"`
	Note       string  `json:"note,omitempty"`
}

// Report описывает агрегированные данные таймера.
type Report struct {
	TotalMS float64      `json:"total_ms"`
	Steps   []StepReport `json:"steps"`
}

// Report формирует срез шагов и общую длительность в миллисекундах.
func (t *Timer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.steps) == 0 {
		return Report{}
	}
	report := Report{Steps: make([]StepReport, len(t.steps))}
	var total time.Duration
	for i, s := range t.steps {
		total += s.Dur
		report.Steps[i] = StepReport{Name: s.Name, DurationMS: durationToMillis(s.Dur), Note: s.Note}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

func (r Report) String() string {
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, s := range r.Steps {
		fmt.Fprintf(&sb, "  %-28s %9.3f ms", s.Name, s.DurationMS)
		if s.Count > 0 {
			fmt.Fprintf(&sb, "  x%d", s.Count)
		}
		if s.Note != "" {
			sb.WriteString("  // " + s.Note)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "  %-28s %9.3f ms\n", "total", r.TotalMS)
	return sb.String()
}

// Totals sums step durations by name across many requests.
type Totals struct {
	mu    sync.Mutex
	dur   map[string]time.Duration
	count map[string]int
}

func NewTotals() *Totals {
	return &Totals{dur: make(map[string]time.Duration), count: make(map[string]int)}
}

// Add accounts one step.
func (t *Totals) Add(name string, d time.Duration) {
	t.mu.Lock()
	t.dur[name] += d
	t.count[name]++
	t.mu.Unlock()
}

// Report returns the totals sorted by descending duration.
func (t *Totals) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	var r Report
	var total time.Duration
	for name, d := range t.dur {
		total += d
		r.Steps = append(r.Steps, StepReport{Name: name, DurationMS: durationToMillis(d), Count: t.count[name]})
	}
	sort.Slice(r.Steps, func(i, j int) bool {
		if r.Steps[i].DurationMS != r.Steps[j].DurationMS {
			return r.Steps[i].DurationMS > r.Steps[j].DurationMS
		}
		return r.Steps[i].Name < r.Steps[j].Name
	})
	r.TotalMS = durationToMillis(total)
	return r
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
