// Package language provides unified language code normalization and mapping.
//
// All language-related conversions (ISO 639-1, ISO 639-2, display names,
// BCP-47 tag parsing) are consolidated here so the transcription and report
// packages agree on how video language metadata is interpreted.
package language
