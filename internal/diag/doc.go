// Package diag defines the diagnostic model shared by the kernel ABI passes.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced
//     by the argument, frame and promotion passes.
//   - Offer light-weight utilities (Reporter, Bag) that let passes emit
//     diagnostics without coupling to storage or formatting.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with a stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary – the Loc (function plus optional instruction index) at fault.
//   - Notes – optional secondary locations for additional context.
//
// Notes should be used sparingly: each note must add new context (e.g. “called
// from here”) rather than repeating the diagnostic message.
//
// # Emitting diagnostics
//
// Passes receive a diag.Reporter. A ReportBuilder (NewReportBuilder or the
// ReportError/ReportWarning/ReportInfo helpers) chains WithNote before Emit.
// When no notes are needed a pass may call Reporter.Report directly.
// BagReporter aggregates into a Bag, which supports sorting and deduplication.
//
// Keep the data model deterministic: the driver serialises bags into the
// on-disk cache and golden tests compare FormatShort output verbatim.
package diag
