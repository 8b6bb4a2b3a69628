// Package services defines shared utilities consumed by the analysis pipeline
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, step names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification (fatal vs transient vs rate limited) consistent.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability, retries) stays uniform across steps.
package services
