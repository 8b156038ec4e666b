// Package lower turns host types, instances and constants into IR.
//
// A Session owns the type table and the three used sets of one unit. Lowering
// is synchronous and demand driven: every call may intern more types and
// record more reachable instances, traits and ADTs, but never iterates the
// used sets itself. Draining them to a fixed point is the caller's job.
//
// Internal-consistency violations panic with *FatalError; drivers install
// Recover at the unit boundary.
package lower
