// Package naming produces stable textual names for definitions and their
// instantiations.
//
// A definition's name is <crate>/<disambiguator[:8]><path>. Instantiations that
// must stay distinct append ::<tag><hash>[0], where hash is a 64-bit structural
// hash of a region-erased payload (usually a substitution list) rendered as 16
// lowercase hex digits.
package naming
