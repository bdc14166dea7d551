// Package run provides the command that executes a single shell command through the process executor
// and reports its output and exit status.
package run
