// Package diag defines the diagnostic model shared by every phase of quill.
//
// A Diagnostic carries a Severity, a stable numeric Code (rendered as LEX1xxx,
// SYN2xxx, SEM3xxx, IO4xxx, PRJ5xxx), a message, a primary span and optional
// notes. Duplicate and ambiguous name errors attach one note per conflicting
// definition.
//
// Phases emit through a Reporter, usually via ReportError(...).WithNote(...).Emit().
// BagReporter collects into a Bag that the driver sorts and deduplicates before
// rendering in internal/diagfmt.
package diag
