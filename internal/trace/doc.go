// Package trace records what a lowering run is doing, at four scopes: the
// CLI invocation, one manifest, one drain round and one interned item.
//
// Events go to a StreamTracer (written as they happen), a RingTracer (kept
// in memory and dumped when a unit fails) or both. The level bounds the
// deepest scope recorded:
//
//	phase   driver and unit spans
//	detail  plus drain rounds
//	debug   plus single instances, ADTs, traits and vtables
//
// Tracers travel in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeUnit, "unit", trace.CurrentSpan(ctx).SpanID)
//	defer span.End("")
package trace
