// Package execshell runs shell command strings and reports their exit status and output.
//
// ShellExecutor wraps a CommandRunner with validation, zap logging, event
// observers, and retry of launch failures. OSCommandRunner launches commands
// through a POSIX shell either in the foreground, with an optional timeout that
// kills the whole process group, or in the background, where the exit status is
// recovered from a randomized trailer marker. Process keeps the prepare, run,
// and query workflow as an explicit value that also returns each result.
package execshell
