// Package logging assembles structured slog loggers and formatting helpers used
// across bdnav.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so decoders and catalog scans
// tag log lines with the scan correlation ID automatically. The package also
// provides a no-op logger for tests and library callers that do not want
// diagnostics.
//
// Decoders report soft anomalies (unexpected codec tags, unknown extension
// blocks, misaligned structures) through these loggers rather than through
// their return values, so always prefer these constructors over hand-rolled
// slog setup.
package logging
