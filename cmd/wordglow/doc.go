// Package main hosts the wordglow CLI entrypoint and command graph.
//
// The Cobra-based command tree covers one-off caption generation from audio
// or transcript JSON, repair of legacy subtitle files, queue maintenance
// against the SQLite store, a foreground daemon, and configuration
// scaffolding. It centralizes configuration resolution and logger setup so
// subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
