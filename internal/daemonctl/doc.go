// Package daemonctl inspects and stops a running wordglow daemon from another
// process.
//
// The daemon's flock on wordglow.lock is the source of truth for whether it
// is alive; the pid file next to it only names the process to signal.
package daemonctl
