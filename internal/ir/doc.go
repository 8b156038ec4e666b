// Package ir defines the lowered document. Every variant family (type nodes,
// instances, literals, predicates, discriminants, body uses) is a closed sum:
// an interface with an unexported marker method, implemented only by the
// structs in this package. Each variant marshals as a JSON object whose first
// field is its "kind" tag.
package ir
