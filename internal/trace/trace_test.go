package trace

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLevelFiltersScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeRequest, false},
		{LevelRequest, ScopeRequest, true},
		{LevelRequest, ScopePhase, false},
		{LevelPhase, ScopePhase, true},
		{LevelPhase, ScopeDecl, false},
		{LevelDebug, ScopeDecl, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%v.ShouldEmit(%v) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestStreamTextSpan(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	ctx := WithRequest(WithTracer(context.Background(), tr), "r1")

	ctx, req := Start(ctx, ScopeRequest, "resolve")
	pctx, ph := Start(ctx, ScopePhase, "phase:Types")
	Mark(pctx, ScopeDecl, "decl:demo.Box", "")
	ph.End("")
	req.WithExtra("target", "demo.Box").WithExtra("to", "Types").End("ok")

	out := buf.String()
	if strings.Contains(out, "decl:demo.Box") {
		t.Fatalf("decl scope leaked at phase level:\n%s", out)
	}
	if got := strings.Count(out, "\n"); got != 4 {
		t.Fatalf("lines = %d, want 4:\n%s", got, out)
	}
	if !strings.Contains(out, "resolve #r1 (ok) {target=demo.Box, to=Types}") {
		t.Fatalf("end event lacks detail or sorted extras:\n%s", out)
	}
}

func TestMsgpackRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatMsgpack)
	sp := Begin(tr, ScopeRequest, "resolve", SpanContext{Request: "q7"})
	Point(tr, ScopePhase, "lock", SpanContext{SpanID: sp.ID(), Request: "q7"}, "demo")
	sp.WithExtra("phase", "BodyResolve").End("done")

	events, err := ReadMsgpack(&buf)
	if err != nil {
		t.Fatalf("ReadMsgpack: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	if events[1].Kind != KindPoint || events[1].ParentID != sp.ID() || events[1].Request != "q7" {
		t.Fatalf("point event = %+v", events[1])
	}
	end := events[2]
	if end.Kind != KindSpanEnd || end.Detail != "done" || end.Extra["phase"] != "BodyResolve" {
		t.Fatalf("end event = %+v", end)
	}
}

func TestRingKeepsLastEvents(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for i := 0; i < 5; i++ {
		Point(r, ScopeDecl, "visit", SpanContext{Request: string(rune('a' + i%2))}, string(rune('a'+i)))
	}
	snap := r.Snapshot()
	if len(snap) != 3 || snap[0].Detail != "c" || snap[2].Detail != "e" {
		t.Fatalf("snapshot = %+v", snap)
	}
	if got := r.Request("a"); len(got) != 2 || got[0].Detail != "c" || got[1].Detail != "e" {
		t.Fatalf("request a = %+v", got)
	}
	if r.Dropped() != 2 {
		t.Fatalf("dropped = %d", r.Dropped())
	}
	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatNDJSON); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("dump:\n%s", buf.String())
	}
}

func TestMultiTracerFindsRing(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{Level: LevelRequest, Mode: ModeBoth, Output: &buf, RingSize: 8}
	tr, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Begin(tr, ScopeRequest, "resolve", SpanContext{}).End("")
	m, ok := tr.(*MultiTracer)
	if !ok {
		t.Fatalf("ModeBoth tracer = %T", tr)
	}
	ring, ok := m.Ring()
	if !ok || len(ring.Snapshot()) != 2 {
		t.Fatalf("ring not fed")
	}
	if buf.Len() == 0 {
		t.Fatalf("stream not fed")
	}
}

func TestHeartbeat(t *testing.T) {
	r := NewRingTracer(16, LevelRequest)
	h := StartHeartbeat(r, time.Millisecond)
	h.SetStatus(func() string { return "steps=3" })
	time.Sleep(10 * time.Millisecond)
	h.Stop()
	h.Stop()
	snap := r.Snapshot()
	if len(snap) == 0 {
		t.Fatalf("no heartbeats recorded")
	}
	if last := snap[len(snap)-1]; !strings.HasSuffix(last.Detail, "steps=3") {
		t.Fatalf("heartbeat detail = %q", last.Detail)
	}
	var nilBeat *Heartbeat
	nilBeat.SetStatus(nil)
	nilBeat.Stop()
}

func TestParseHelpers(t *testing.T) {
	if l, err := ParseLevel("PHASE"); err != nil || l != LevelPhase {
		t.Fatalf("ParseLevel = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("ParseLevel accepted junk")
	}
	if f := DetectFormat("out.msgpack"); f != FormatMsgpack {
		t.Fatalf("DetectFormat = %v", f)
	}
	if f, err := ParseFormat("ndjson"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat = %v, %v", f, err)
	}
}

func TestNewStreamToFileFlushesOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.ndjson")
	tr, err := New(Config{Level: LevelPhase, Mode: ModeStream, OutputPath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Mark(WithTracer(context.Background(), tr), ScopePhase, "phase:Types", "")
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `"phase:Types"`) {
		t.Fatalf("trace file:\n%s", data)
	}
	if _, err := New(Config{Level: LevelPhase, Mode: StorageMode(8)}); err == nil {
		t.Fatalf("expected an error for an unknown mode")
	}
}
