// Package openaiwhisper transcribes audio through the OpenAI audio
// transcription endpoint using go-openai.
//
// Requests ask for verbose_json with word and segment timestamp
// granularities. The API returns words as one flat list, so the service
// regroups them into the returned segments by time before handing the
// transcript to the caption pipeline.
package openaiwhisper
