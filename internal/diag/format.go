package diag

import (
	"fmt"
	"slices"
	"strings"
)

// FormatShortDiagnostics renders diagnostics one per line in Less order:
// "<severity> <code> <subject>: <message>". Notes follow their diagnostic
// when includeNotes is set.
func FormatShortDiagnostics(diags []Diagnostic, includeNotes bool) string {
	sorted := slices.Clone(diags)
	slices.SortStableFunc(sorted, compare)

	var b strings.Builder
	for i, d := range sorted {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s %s: %s", d.Severity.Label(), d.Code.ID(), d.Subject, oneLine(d.Message))
		if includeNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(&b, "\nnote %s %s: %s", d.Code.ID(), n.Subject, oneLine(n.Msg))
			}
		}
	}
	return b.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func compare(a, b Diagnostic) int {
	switch {
	case Less(a, b):
		return -1
	case Less(b, a):
		return 1
	}
	return 0
}
