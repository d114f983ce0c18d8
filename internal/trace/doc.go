// Package trace records what the compiler is doing while it runs: driver
// steps, passes such as loading, parsing and each fixpoint repetition,
// per-library work and, at debug level, single declarations.
//
// Tracers travel through the pipeline in a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span, ctx := trace.Start(ctx, trace.ScopePass, "resolve")
//	defer span.End("")
//
// StreamTracer writes events as they happen (text or NDJSON), RingTracer
// keeps the most recent ones for a dump after a failure, MultiTracer fans
// out to several tracers. Nop is used when tracing is off.
package trace
