// Package host models the program being lowered: definitions, types, constants,
// ADTs, traits and impls, together with the oracles the lowering engine consults
// (definition lookup, substitution and normalization, instance resolution,
// constant evaluation and vtable layout).
//
// Program is an in-memory implementation of every oracle. It is what the CLI
// builds from a manifest and what tests build directly.
package host
