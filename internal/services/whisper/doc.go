// Package whisper adapts the whisper CLI for audio transcription. The CLI
// writes JSON output which is post-processed into a Transcript: joined full
// text, last-segment-end duration, and word count.
package whisper
