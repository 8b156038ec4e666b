// Package diag defines the diagnostic model shared by manifest loading, the
// lowering engine and the driver.
//
// # Purpose
//
//   - Provide deterministic data structures for non-fatal findings: an
//     instance that could not be resolved, a type kind without an IR form, a
//     constant that failed to evaluate.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error).
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Subject – what the diagnostic is about, usually a stable name.
//   - Notes – optional secondary subjects/messages.
//
// Fatal conditions never travel through this package; the lowering engine
// aborts the unit instead.
//
// # Emitting diagnostics
//
// Producers construct a ReportBuilder via NewReportBuilder (or ReportError /
// ReportWarning / ReportInfo), chain WithNote and call Emit. BagReporter
// aggregates diagnostics into a Bag; wrap it in NewDedupReporter to drop
// repeats raised by the drain.
package diag
