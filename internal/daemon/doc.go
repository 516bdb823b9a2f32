// Package daemon coordinates the long-running wordglow process.
//
// It wires configuration, queue storage and the workflow manager into a
// single lifecycle with flock-based locking to prevent multiple instances.
// Startup runs the preflight checks, resets jobs a previous process left in
// a processing state and sweeps stale or orphaned staging directories before
// the manager begins polling.
//
// Keep orchestration logic here: individual workflow steps should live in their
// respective packages while the daemon focuses on startup, shutdown, and high
// level coordination.
package daemon
