package diagfmt

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"tyjson/internal/diag"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	noteColor    = color.New(color.FgBlue)
	subjectColor = color.New(color.Bold)
)

// Pretty prints diagnostics for humans, one per line:
//
//	<file>: <severity>[<code>] <subject>: <message>
//	    note: <subject>: <message>
func Pretty(w io.Writer, units []Unit, opts PrettyOpts) error {
	var errs, warns int
	for _, u := range units {
		for _, d := range sorted(u.Items) {
			switch d.Severity {
			case diag.SevError:
				errs++
			case diag.SevWarning:
				warns++
			}
			sev := paint(opts.Color, severityColor(d.Severity), strings.ToLower(d.Severity.String()))
			subject := paint(opts.Color, subjectColor, d.Subject)
			if _, err := fmt.Fprintf(w, "%s: %s[%s] %s: %s\n", u.File, sev, d.Code.ID(), subject, oneLine(d.Message)); err != nil {
				return err
			}
			if !opts.ShowNotes {
				continue
			}
			for _, n := range d.Notes {
				if _, err := fmt.Fprintf(w, "    %s: %s: %s\n", paint(opts.Color, noteColor, "note"), n.Subject, oneLine(n.Msg)); err != nil {
					return err
				}
			}
		}
	}
	if opts.Summary && errs+warns > 0 {
		if _, err := fmt.Fprintf(w, "%s, %s\n", plural(errs, "error"), plural(warns, "warning")); err != nil {
			return err
		}
	}
	return nil
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warningColor
	default:
		return infoColor
	}
}

func paint(enabled bool, c *color.Color, s string) string {
	if !enabled || s == "" {
		return s
	}
	// color.NoColor is process-wide; the caller's choice wins here.
	c.EnableColor()
	return c.Sprint(s)
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func sorted(items []diag.Diagnostic) []diag.Diagnostic {
	out := make([]diag.Diagnostic, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i], out[j]
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		if di.Subject != dj.Subject {
			return di.Subject < dj.Subject
		}
		return di.Code < dj.Code
	})
	return out
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
