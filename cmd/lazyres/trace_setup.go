package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lazyres/internal/driver"
	"lazyres/internal/trace"
)

// activeTracer is kept for dumpTraceOnPanic.
var (
	activeTracer    trace.Tracer = trace.Nop
	activeHeartbeat *trace.Heartbeat
)

// setupTracing builds the tracer from the merged trace settings and
// attaches it to the command context. The returned cleanup flushes it.
func setupTracing(cmd *cobra.Command) (func(), error) {
	tc := cliConfig.Trace

	level, err := trace.ParseLevel(tc.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}

	// If level is off and no output specified, skip tracing
	if level == trace.LevelOff && tc.Output == "" {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}
	if level == trace.LevelOff {
		level = trace.LevelPhase
	}

	mode, err := trace.ParseMode(tc.Mode)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: tc.Output,
		RingSize:   tc.RingSize,
		Heartbeat:  tc.Heartbeat.Duration,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	activeTracer = tracer

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)

	var heartbeat *trace.Heartbeat
	if tc.Heartbeat.Duration > 0 {
		heartbeat = trace.StartHeartbeat(tracer, tc.Heartbeat.Duration)
	}
	activeHeartbeat = heartbeat

	cleanup := func() {
		// Stop heartbeat first
		if heartbeat != nil {
			heartbeat.Stop()
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
		activeTracer = trace.Nop
		activeHeartbeat = nil
	}
	return cleanup, nil
}

// watchSession puts the session's resolver counters into heartbeats.
func watchSession(s *driver.Session) {
	activeHeartbeat.SetStatus(func() string {
		st := s.Resolver.Stats()
		return fmt.Sprintf("requests=%d fast=%d steps=%d retries=%d", st.Requests, st.FastPath, st.Steps, st.Retries)
	})
}

// dumpTraceOnPanic writes the ring buffer to stderr before re-panicking.
func dumpTraceOnPanic() {
	r := recover()
	if r == nil {
		return
	}
	if rt, ok := ringOf(activeTracer); ok {
		fmt.Fprintln(os.Stderr, "--- last trace events ---")
		_ = rt.Dump(os.Stderr, trace.FormatText)
	}
	panic(r)
}

func ringOf(t trace.Tracer) (*trace.RingTracer, bool) {
	switch v := t.(type) {
	case *trace.RingTracer:
		return v, true
	case *trace.MultiTracer:
		return v.Ring()
	}
	return nil, false
}
