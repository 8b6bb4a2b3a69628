// Command vidscope is the CLI for the vidscope video analysis service: queue
// videos for analysis, inspect and manage jobs, and run the worker daemon in
// the foreground.
package main
