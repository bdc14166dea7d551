// Package cli constructs the procexec command-line interface, wiring the
// Cobra command hierarchy, the layered configuration loader, and zap logging.
// The run subcommand executes a shell command and exits with its status; the
// config subcommand prints the effective configuration.
package cli
