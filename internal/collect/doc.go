// Package collect drives a lowering session to a fixed point.
//
// Collect resolves the roots, then repeatedly drains whatever the session's
// used sets gained since the previous round: every new instance is lowered
// and, when it has a body, walked; every new trait and ADT instance is
// lowered. Walking a body and lowering an entry may record further entries,
// so rounds continue until a round adds nothing.
package collect
