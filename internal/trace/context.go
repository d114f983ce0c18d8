package trace

import "context"

// binding is what a context carries: the tracer of the check and the
// innermost open span.
type binding struct {
	tracer Tracer
	span   uint64
}

type ctxKey struct{}

func bindingOf(ctx context.Context) binding {
	if ctx != nil {
		if b, ok := ctx.Value(ctxKey{}).(binding); ok {
			return b
		}
	}
	return binding{tracer: Nop}
}

// FromContext returns the tracer of ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return bindingOf(ctx).tracer
}

// WithTracer attaches t to ctx; the current span is kept.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	b := bindingOf(ctx)
	b.tracer = t
	return context.WithValue(ctx, ctxKey{}, b)
}

// SpanContext identifies the innermost open span of a context.
type SpanContext struct {
	SpanID uint64
}

// CurrentSpan returns the span context of ctx; zero when none.
func CurrentSpan(ctx context.Context) SpanContext {
	return SpanContext{SpanID: bindingOf(ctx).span}
}

// WithSpanContext makes sc the current span of ctx.
func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	b := bindingOf(ctx)
	b.span = sc.SpanID
	return context.WithValue(ctx, ctxKey{}, b)
}

// Start opens a span under the current span of ctx and returns a context
// carrying it. Inert spans leave the parent current.
func Start(ctx context.Context, scope Scope, name string) (*Span, context.Context) {
	b := bindingOf(ctx)
	span := Begin(b.tracer, scope, name, b.span)
	return span, WithSpanContext(ctx, SpanContext{SpanID: span.ID()})
}
