package diag

// Reporter receives diagnostics from manifest loading and lowering.
type Reporter interface {
	Report(code Code, sev Severity, subject, msg string, notes []Note)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(code Code, sev Severity, subject, msg string, notes []Note)

func (f ReporterFunc) Report(code Code, sev Severity, subject, msg string, notes []Note) {
	f(code, sev, subject, msg, notes)
}

// BagReporter stores diagnostics in Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, subject, msg string, notes []Note) {
	if r.Bag != nil {
		r.Bag.Add(Diagnostic{Severity: sev, Code: code, Subject: subject, Message: msg, Notes: notes})
	}
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, string, string, []Note) {}

// ReportBuilder collects notes for one diagnostic until Emit.
type ReportBuilder struct {
	to      Reporter
	d       Diagnostic
	emitted bool
}

func NewReportBuilder(r Reporter, sev Severity, code Code, subject, msg string) *ReportBuilder {
	return &ReportBuilder{to: r, d: New(sev, code, subject, msg)}
}

func ReportError(r Reporter, code Code, subject, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, subject, msg)
}

func ReportWarning(r Reporter, code Code, subject, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, subject, msg)
}

func ReportInfo(r Reporter, code Code, subject, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevInfo, code, subject, msg)
}

func (b *ReportBuilder) WithNote(subject, msg string) *ReportBuilder {
	if b != nil {
		b.d = b.d.WithNote(subject, msg)
	}
	return b
}

// Emit hands the diagnostic to the reporter. Later calls do nothing.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	b.emitted = true
	if b.to != nil {
		b.to.Report(b.d.Code, b.d.Severity, b.d.Subject, b.d.Message, b.d.Notes)
	}
}

// Diagnostic returns what Emit would report.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.d
}
