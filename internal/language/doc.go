// Package language normalizes the language hints handed to transcription
// engines and renders detected languages for CLI output.
//
// Engines accept ISO 639-1 codes; users tend to type "eng" or "English", and
// the OpenAI API reports detected languages by English name. Codes resolve
// through golang.org/x/text and names come from its CLDR display tables.
package language
