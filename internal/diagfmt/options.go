package diagfmt

import "tyjson/internal/diag"

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	ShowNotes bool
	// Summary appends an "N errors, M warnings" line.
	Summary bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	Max          int // caps printed items; the bags keep everything
	IncludeNotes bool
}

// Unit pairs a unit's file with the diagnostics it produced.
type Unit struct {
	File  string
	Items []diag.Diagnostic
}
