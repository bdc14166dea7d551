package execshell

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

const (
	executorNotConfiguredMessageConstant = "process requires a shell executor"
	runArgumentsSeparatorConstant        = " "
)

// ErrExecutorNotConfigured indicates a Process was constructed without a ShellExecutor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// Process holds a prepared command, its dispatch settings, and the result of the last run.
//
// Each Run returns its result directly; the accessors are views over the most recent stored result.
// A Process may be shared between goroutines, but interleaved runs overwrite each other's stored result.
type Process struct {
	mutex           sync.Mutex
	executor        *ShellExecutor
	sanitizer       CommandSanitizer
	preparedCommand string
	background      bool
	timeout         time.Duration
	lastResult      ExecutionResult
	hasResult       bool
}

// NewProcess constructs a Process that dispatches through executor.
func NewProcess(executor *ShellExecutor) (*Process, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Process{executor: executor}, nil
}

// Prepare sanitizes and stores the command for the next Run.
func (process *Process) Prepare(rawCommand string) {
	process.mutex.Lock()
	defer process.mutex.Unlock()
	process.preparedCommand = process.sanitizer.Sanitize(rawCommand)
}

// SetBackground selects the background dispatch path for subsequent runs.
func (process *Process) SetBackground(background bool) {
	process.mutex.Lock()
	defer process.mutex.Unlock()
	process.background = background
}

// SetTimeout sets the foreground timeout in seconds. Nil or zero disables the timeout.
func (process *Process) SetTimeout(timeoutSeconds *int) error {
	if timeoutSeconds != nil && *timeoutSeconds < 0 {
		return ErrNegativeTimeout
	}

	process.mutex.Lock()
	defer process.mutex.Unlock()
	if timeoutSeconds == nil {
		process.timeout = 0
		return nil
	}
	process.timeout = time.Duration(*timeoutSeconds) * time.Second
	return nil
}

// Run executes the prepared command. When nothing is prepared, the supplied arguments are joined
// with spaces and prepared first. The prepared command is consumed by every call.
// Any non-empty prepared command wins over the arguments, so a whitespace-only preparation
// ignores them and fails with ErrEmptyCommand.
func (process *Process) Run(executionContext context.Context, command ...string) (ExecutionResult, error) {
	process.mutex.Lock()
	if len(process.preparedCommand) == 0 && len(command) > 0 {
		process.preparedCommand = process.sanitizer.Sanitize(strings.Join(command, runArgumentsSeparatorConstant))
	}
	shellCommand := ShellCommand{
		Command:    process.preparedCommand,
		Background: process.background,
		Timeout:    process.timeout,
	}
	process.preparedCommand = emptyStringConstant
	process.mutex.Unlock()

	result, executionError := process.executor.Execute(executionContext, shellCommand)
	if executionError != nil {
		var commandExecutionError CommandExecutionError
		if !errors.As(executionError, &commandExecutionError) {
			return ExecutionResult{}, executionError
		}
		result = launchFailureResult()
	}

	process.mutex.Lock()
	process.lastResult = result
	process.hasResult = true
	process.mutex.Unlock()

	return result, executionError
}

// IsSuccess reports whether the last run exited with ExitCodeSuccess.
func (process *Process) IsSuccess() bool {
	process.mutex.Lock()
	defer process.mutex.Unlock()
	return process.hasResult && process.lastResult.Success()
}

// IsError reports whether the last run did not succeed, including when nothing has run yet.
func (process *Process) IsError() bool {
	return !process.IsSuccess()
}

// Output returns a copy of the lines captured by the last run, or nil when capture failed or nothing ran.
func (process *Process) Output() []string {
	process.mutex.Lock()
	defer process.mutex.Unlock()
	if !process.lastResult.OutputCaptured() {
		return nil
	}
	return append([]string{}, process.lastResult.Output...)
}

// OutputString joins the captured lines with newlines. The boolean is false when no output was captured.
func (process *Process) OutputString() (string, bool) {
	process.mutex.Lock()
	defer process.mutex.Unlock()
	return process.lastResult.OutputString()
}

// Code returns the exit code of the last run, or ExitCodeSuccess when nothing has run yet.
func (process *Process) Code() int {
	process.mutex.Lock()
	defer process.mutex.Unlock()
	return process.lastResult.Code
}

// LastResult returns the stored result of the last run.
func (process *Process) LastResult() (ExecutionResult, error) {
	process.mutex.Lock()
	defer process.mutex.Unlock()
	if !process.hasResult {
		return ExecutionResult{}, ErrNoCompletedRun
	}
	return process.lastResult, nil
}
