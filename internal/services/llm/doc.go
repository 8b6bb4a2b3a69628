// Package llm wraps an OpenRouter-compatible chat completion API behind a
// small JSON-only client. Responses are requested with response_format
// json_object and decoded tolerantly: code fences, streaming deltas, and
// tool-call argument payloads all resolve to the embedded JSON document.
//
// Transient HTTP failures (408, 429, 5xx) are retried with exponential
// backoff, honoring Retry-After when the server provides one.
package llm
