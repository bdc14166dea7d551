package execshell

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"time"
)

const (
	defaultShellPathConstant      = "/bin/sh"
	shellCommandFlagConstant      = "-c"
	defaultMaxOutputBytesConstant = 1 << 20
	defaultWaitDelayConstant      = 2 * time.Second
)

// CommandRunner executes a shell command and reports its outcome.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// OSCommandRunnerOption customizes an OSCommandRunner.
type OSCommandRunnerOption func(runner *OSCommandRunner)

// WithShell selects the shell binary used to interpret command strings.
func WithShell(shellPath string) OSCommandRunnerOption {
	return func(runner *OSCommandRunner) {
		if len(shellPath) > 0 {
			runner.shellPath = shellPath
		}
	}
}

// WithMaxOutputBytes bounds the captured standard output. Zero or a negative value disables the bound.
func WithMaxOutputBytes(maxOutputBytes int) OSCommandRunnerOption {
	return func(runner *OSCommandRunner) {
		runner.maxOutputBytes = maxOutputBytes
	}
}

// WithStandardError forwards the command's standard error to writer instead of discarding it.
func WithStandardError(writer io.Writer) OSCommandRunnerOption {
	return func(runner *OSCommandRunner) {
		runner.standardError = writer
	}
}

// WithWaitDelay bounds how long output pipes are drained after the process is killed.
func WithWaitDelay(waitDelay time.Duration) OSCommandRunnerOption {
	return func(runner *OSCommandRunner) {
		if waitDelay > 0 {
			runner.waitDelay = waitDelay
		}
	}
}

// OSCommandRunner executes commands through a shell using os/exec.
type OSCommandRunner struct {
	shellPath      string
	maxOutputBytes int
	standardError  io.Writer
	waitDelay      time.Duration
}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner(options ...OSCommandRunnerOption) *OSCommandRunner {
	runner := &OSCommandRunner{
		shellPath:      defaultShellPathConstant,
		maxOutputBytes: defaultMaxOutputBytesConstant,
		waitDelay:      defaultWaitDelayConstant,
	}
	for _, option := range options {
		if option != nil {
			option(runner)
		}
	}
	return runner
}

// Run executes the command in the foreground or background according to command.Background.
// Failing commands are reported through the result; the error is reserved for runner faults.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}
	if command.Background {
		return runner.runBackground(executionContext, command), nil
	}
	return runner.runForeground(executionContext, command), nil
}

func (runner *OSCommandRunner) runForeground(parentContext context.Context, command ShellCommand) ExecutionResult {
	startTime := time.Now()

	var (
		executionContext context.Context
		cancelExecution  context.CancelFunc
	)
	if command.Timeout > 0 {
		executionContext, cancelExecution = context.WithTimeout(parentContext, command.Timeout)
	} else {
		executionContext, cancelExecution = context.WithCancel(parentContext)
	}
	defer cancelExecution()

	outputBuffer := newBoundedOutputBuffer(runner.maxOutputBytes, 0)
	executable := runner.buildExecutable(executionContext, command.Command, outputBuffer)
	runError := executable.Run()

	if executable.ProcessState == nil {
		result := launchFailureResult()
		result.Duration = time.Since(startTime)
		return result
	}

	result := ExecutionResult{
		Code:      exitStatusCode(executable.ProcessState),
		Output:    ParseOutputLines(outputBuffer.String()),
		Truncated: outputBuffer.Truncated(),
		Duration:  time.Since(startTime),
	}

	switch {
	case runError != nil && parentContext.Err() != nil:
		result.Code = ExitCodeExited
	case runError != nil && command.Timeout > 0 && errors.Is(executionContext.Err(), context.DeadlineExceeded):
		result.Code = ExitCodeTimeout
		result.TimedOut = true
	}

	return result
}

func (runner *OSCommandRunner) runBackground(parentContext context.Context, command ShellCommand) ExecutionResult {
	startTime := time.Now()

	executionContext, cancelExecution := context.WithCancel(parentContext)
	defer cancelExecution()

	statusMarker := NewStatusMarker()
	outputBuffer := newBoundedOutputBuffer(runner.maxOutputBytes, len(statusMarker)+statusTrailerTailSlackConstant)
	executable := runner.buildExecutable(executionContext, BuildBackgroundScript(command.Command, statusMarker), outputBuffer)
	runError := executable.Run()

	if executable.ProcessState == nil {
		result := launchFailureResult()
		result.Duration = time.Since(startTime)
		return result
	}

	commandOutput, exitCode, truncated := outputBuffer.splitStatusTrailer(statusMarker)
	result := ExecutionResult{
		Code:      exitCode,
		Output:    ParseOutputLines(commandOutput),
		Truncated: truncated,
		Duration:  time.Since(startTime),
	}
	if runError != nil && parentContext.Err() != nil {
		result.Code = ExitCodeExited
	}

	return result
}

func (runner *OSCommandRunner) buildExecutable(executionContext context.Context, script string, standardOutput io.Writer) *exec.Cmd {
	executable := exec.CommandContext(executionContext, runner.shellPath, shellCommandFlagConstant, script)
	executable.Stdout = standardOutput
	executable.Stderr = runner.standardError
	executable.WaitDelay = runner.waitDelay
	configureProcessGroup(executable)
	return executable
}
