package diagfmt

import (
	"encoding/json"
	"io"

)

// NoteJSON is one note of a diagnostic.
type NoteJSON struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// DiagnosticJSON is one diagnostic tagged with its manifest.
type DiagnosticJSON struct {
	File     string     `json:"file"`
	Severity string     `json:"severity"`
	Code     string     `json:"code"`
	Subject  string     `json:"subject"`
	Message  string     `json:"message"`
	Notes    []NoteJSON `json:"notes,omitempty"`
}

// DiagnosticsOutput is the top-level object of --diag-format=json.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// BuildDiagnosticsOutput assembles the output without encoding it.
// Units keep their order; diagnostics within a unit are sorted.
func BuildDiagnosticsOutput(units []Unit, opts JSONOpts) DiagnosticsOutput {
	diagnostics := make([]DiagnosticJSON, 0)
	for _, u := range units {
		for _, d := range sorted(u.Items) {
			if opts.Max > 0 && len(diagnostics) >= opts.Max {
				break
			}
			dj := DiagnosticJSON{
				File:     u.File,
				Severity: d.Severity.String(),
				Code:     d.Code.ID(),
				Subject:  d.Subject,
				Message:  d.Message,
			}
			if opts.IncludeNotes && len(d.Notes) > 0 {
				dj.Notes = make([]NoteJSON, len(d.Notes))
				for j, note := range d.Notes {
					dj.Notes[j] = NoteJSON{Subject: note.Subject, Message: note.Msg}
				}
			}
			diagnostics = append(diagnostics, dj)
		}
	}
	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
	}
}

// JSON writes the diagnostics of units as one indented JSON object.
func JSON(w io.Writer, units []Unit, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(units, opts))
}
