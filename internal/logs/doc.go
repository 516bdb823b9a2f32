// Package logs reads the daemon log for `wordglow logs`.
//
// Reads only ever return complete lines, and every read reports the offset
// to resume from, so a follower never prints half a JSON record.
package logs
