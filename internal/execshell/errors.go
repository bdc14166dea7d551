package execshell

import (
	"errors"
	"fmt"
)

const (
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	emptyCommandMessageConstant               = "command must not be empty"
	negativeTimeoutMessageConstant            = "timeout must not be negative"
	noCompletedRunMessageConstant             = "no command has been run yet"
	commandExecutionErrorTemplateConstant     = "%s: %v"
)

var (
	// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
	// ErrEmptyCommand indicates an attempt to run a blank command string.
	ErrEmptyCommand = errors.New(emptyCommandMessageConstant)
	// ErrNegativeTimeout indicates a timeout below zero was configured.
	ErrNegativeTimeout = errors.New(negativeTimeoutMessageConstant)
	// ErrNoCompletedRun indicates a result was requested before any command ran.
	ErrNoCompletedRun = errors.New(noCompletedRunMessageConstant)
)

// CommandExecutionError reports a runner failure that prevented a result from being produced.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the failure.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, executionError.Command.Command, executionError.Cause)
}

// Unwrap exposes the underlying cause.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}
