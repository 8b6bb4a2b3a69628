// Package workflow polls the job queue and drives claimed jobs through the
// analysis pipeline.
//
// The manager runs a single background loop: reclaim jobs whose heartbeats
// expired, pick the oldest pending job, claim it, and hand it to the runner
// while a heartbeat goroutine keeps the claim fresh. Jobs interrupted by
// shutdown are marked failed with a stable reason so operators can retry them.
package workflow
