// Package manifest loads host program descriptions.
//
// A manifest lists crates, traits, ADTs, functions, impls, constants and
// statics, plus the roots of the unit. Types are written as type
// expressions (see ParseType); paths are crate::name[::name...], with an
// optional [n] sibling index per segment. TOML is the primary format; YAML
// files with the same schema are accepted as well.
//
//	version = 1
//	roots = ["app::main"]
//
//	[[crate]]
//	name = "app"
//	disambiguator = "0123456789abcdef"
//
//	[[fn]]
//	path = "app::main"
//	uses = [{ kind = "call", callee = "app::helper", args = ["i32"] }]
package manifest
