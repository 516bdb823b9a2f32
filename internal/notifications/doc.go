// Package notifications delivers workflow events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// the [notifications] section and degrades to a no-op when no topic is set.
// Completed jobs, finished queue runs and errors reach the topic; queued and
// queue-started events are accepted and dropped.
package notifications
