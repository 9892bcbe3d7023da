// Package diag defines the diagnostic model shared by the loader, resolver,
// validator and annotator.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for per-item failures
//     (missing templates, inheritance cycles, source drift, write errors).
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Scope
//
// Package diag does not perform any formatting, IO or CLI integration.
// Rendering lives in internal/report, orchestration in internal/pipeline.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Template / Path / Line – where the problem was observed. Line is 1-based,
//     zero when the diagnostic concerns a whole template or path.
//   - Notes – optional secondary locations, e.g. the members of a cycle.
//
// A batch never aborts on a per-item diagnostic. Callers decide whether
// HasErrors escalates to a failing exit status.
//
// # Bag
//
// Bag is bounded: Add returns false once the limit is reached, which keeps
// runaway template trees from flooding the output. Sort orders entries by
// template, line, severity (desc) and code so output is stable between runs.
package diag
