// Package youtube extracts video metadata, comment threads, and audio for
// analysis jobs. Metadata and comments come from the Data API v3; audio is
// fetched through a yt-dlp exec adapter.
//
// Quota exhaustion and throttling map to services.RateLimitError with the
// retry delay the API implies. Disabled or missing comments yield an empty
// list rather than an error.
package youtube
