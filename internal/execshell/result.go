package execshell

import (
	"strings"
	"time"
)

// Exit codes reported by ExecutionResult. The sentinel values are part of the public contract.
const (
	ExitCodeSuccess = 0
	ExitCodeFailure = 1
	ExitCodeExited  = 255
	ExitCodeTimeout = 254
)

const (
	outputLineSeparatorConstant = "\n"
)

// ShellCommand describes a single command string submitted to a shell.
type ShellCommand struct {
	Command    string
	Background bool
	Timeout    time.Duration
}

// ExecutionResult captures the observable outcome of one command execution.
type ExecutionResult struct {
	RunID     string
	Code      int
	Output    []string
	TimedOut  bool
	Truncated bool
	Duration  time.Duration
}

// Success reports whether the command exited with ExitCodeSuccess.
func (result ExecutionResult) Success() bool {
	return result.Code == ExitCodeSuccess
}

// OutputCaptured reports whether any output channel was obtained for the command.
func (result ExecutionResult) OutputCaptured() bool {
	return result.Output != nil
}

// OutputString joins the captured lines with newlines. The boolean is false when no output was captured.
func (result ExecutionResult) OutputString() (string, bool) {
	if !result.OutputCaptured() {
		return "", false
	}
	return strings.Join(result.Output, outputLineSeparatorConstant), true
}

func (result ExecutionResult) isLaunchFailure() bool {
	return result.Code == ExitCodeExited && !result.OutputCaptured() && !result.TimedOut
}

func launchFailureResult() ExecutionResult {
	return ExecutionResult{Code: ExitCodeExited, Output: nil}
}
