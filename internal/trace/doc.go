// Package trace records what the resolver does and how long it takes.
//
// Every resolve request opens a request span, every phase step a phase span
// below it, and at debug level every algorithm application a decl point.
// Events carry the id of the outermost request, so the ring can replay one
// request after the fact.
// Tracing is off unless a tracer is attached to the context.
//
// # Usage
//
//	lazyres resolve --trace=- --trace-level=phase tree.yaml --decl demo.Box
//
// # Tracers
//
//   - Nop: no-op tracer when tracing is disabled
//   - StreamTracer: writes every event immediately (text, NDJSON or msgpack)
//   - RingTracer: keeps the last N events for post-mortem dumps
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
//   - LevelRequest: ScopeDriver and ScopeRequest events
//   - LevelPhase: plus ScopePhase (one event pair per phase step)
//   - LevelDebug: plus ScopeDecl (one event pair per algorithm application)
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(trace.WithRequest(ctx, id), trace.ScopeRequest, "resolve")
//	defer span.End("")
package trace
