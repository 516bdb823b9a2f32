// Package preflight provides readiness checks for the filesystem paths and
// external services wordglow depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll on startup and refuses to start the workflow
//     manager while any check fails.
//   - The CLI "queue health" command prints every result alongside the
//     binary checks from CheckSystemDeps.
//
// Checks for services the configuration does not select are skipped.
package preflight
