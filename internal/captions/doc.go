// Package captions turns timed words into karaoke-style Advanced SubStation
// Alpha (ASS) subtitle documents.
//
// The flow is BuildChunks to group words into cues, EncodeCue to produce
// per-word highlight markup, and Assemble to write a single-style document
// and confirm the file on disk carries the requested style. Patch and Repair
// fix up documents produced by serialisers that cannot express the style
// fields directly.
//
// Encoded cues light each word in the style's secondary colour at the moment
// it is spoken. Words not yet spoken use the primary colour.
package captions
