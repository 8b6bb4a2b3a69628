// Package jobs persists analysis jobs in SQLite and exposes the lifecycle
// operations the workflow manager and CLI rely on: enqueue, claim, progress
// ticks, completion, cancellation, retry, and heartbeat reclaim.
//
// Progress writes are monotonic; a slower writer can never move a job's
// progress backwards. Completed results are written exactly once when a job
// transitions out of processing.
package jobs
