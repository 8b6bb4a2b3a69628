// Package daemon hosts the long-running vidscope worker process.
//
// A file lock in the data directory guarantees a single instance; the daemon
// owns the workflow manager lifecycle and exposes job maintenance operations
// used by the CLI.
package daemon
