// Package queue persists caption jobs in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, stats queries,
// heartbeat tracking, stuck-job recovery, and status transitions that mirror
// the workflow stages (transcribing, then captioning). Jobs record the audio
// source, the destination subtitle path, the audio fingerprint used for
// duplicate detection, and progress text so the daemon and CLI share one view
// of the work.
//
// The database is treated as transient storage for in-flight jobs rather than
// a long-term archive. Schema changes bump the version in schema.go; users
// clear the database to adopt the new schema.
package queue
