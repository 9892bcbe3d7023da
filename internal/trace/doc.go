// Package trace records what a twigblock run did and how long it took:
// run and phase spans, one span per template and one event per block.
//
// Tracing is off unless --trace or --trace-level is given:
//
//	twigblock validate --trace=- --trace-level=detail -c @Theme:views
//	twigblock annotate --trace=run.ndjson --trace-level=debug
//
// Events are written as they happen (stream mode), kept in a bounded
// in-memory Ring that is dumped when the command exits (ring mode), or
// both. At LevelError the ring is dumped only for failed runs.
//
// Packages pick up the tracer from the context:
//
//	tracer := trace.FromContext(ctx)
//	span := trace.BeginTemplate(tracer, name, trace.CurrentSpan(ctx).SpanID)
//	defer span.End("")
package trace
