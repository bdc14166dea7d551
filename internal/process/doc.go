// Package process exposes the prepare, run, and query workflow over a single process-wide
// execshell.Process for callers that want call-and-query ergonomics without holding a value.
//
// The shared state is one slot: a second Prepare or Run before the first result is read
// silently replaces it. Command sequences must not be interleaved across goroutines without
// external locking; code that needs concurrent runs should construct its own execshell.Process.
package process
