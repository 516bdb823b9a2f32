// Package stageexec runs workflow stages for a single job in the foreground,
// applying the same queue transitions and failure classification as the
// daemon's workflow manager.
package stageexec
