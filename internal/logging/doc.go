// Package logging assembles structured slog loggers and formatting helpers used
// across wordglow.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code can automatically
// tag log lines with queue job IDs, stages, and correlation IDs. The package
// also provides a no-op logger for tests and a retention sweep for old files.
package logging
