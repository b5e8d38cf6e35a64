package trace

import "context"

type ctxKey struct{}

// FromContext returns the context's Tracer, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(ctxKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches a Tracer to context.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

// SpanContext is what a child span inherits: the parent span and the
// resolve request the work belongs to.
type SpanContext struct {
	SpanID  uint64
	Request string
}

type spanCtxKey struct{}

// CurrentSpan returns the active span context, zero outside any span.
func CurrentSpan(ctx context.Context) SpanContext {
	if ctx == nil {
		return SpanContext{}
	}
	sc, _ := ctx.Value(spanCtxKey{}).(SpanContext)
	return sc
}

func withSpanContext(ctx context.Context, sc SpanContext) context.Context {
	return context.WithValue(ctx, spanCtxKey{}, sc)
}

// WithRequest tags everything traced under ctx with a request id. Nested
// requests keep the outermost id.
func WithRequest(ctx context.Context, id string) context.Context {
	sc := CurrentSpan(ctx)
	if sc.Request != "" {
		return ctx
	}
	sc.Request = id
	return withSpanContext(ctx, sc)
}

// Start begins a child of the current span with the context's tracer and
// returns a context in which the new span is current.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	parent := CurrentSpan(ctx)
	sp := Begin(FromContext(ctx), scope, name, parent)
	if sp.id == 0 {
		return ctx, sp
	}
	return withSpanContext(ctx, SpanContext{SpanID: sp.id, Request: parent.Request}), sp
}

// Mark emits a point event under the current span.
func Mark(ctx context.Context, scope Scope, name, detail string) {
	Point(FromContext(ctx), scope, name, CurrentSpan(ctx), detail)
}
