// Package trace records spans for the driver, each pass and each
// function so slow or stuck compilations can be located.
//
// Enable it from the command line:
//
//	kabi run --trace=- --trace-level=detail module.yaml
//
// Tracers: Nop when disabled, StreamTracer writing text or NDJSON,
// RingTracer keeping the last events for a dump on failure, and
// MultiTracer combining them.
//
// Levels map to scopes: phase emits driver and pass spans, detail adds
// per-function spans, debug adds per-access decisions.
//
// Passes receive the tracer through the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span, ctx := trace.Start(ctx, trace.ScopePass, "promote")
//	defer span.End("")
package trace
