package process

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/temirov/procexec/internal/execshell"
)

// Exit codes mirrored from execshell for callers of the compatibility surface.
const (
	SUCCESS = execshell.ExitCodeSuccess
	FAILURE = execshell.ExitCodeFailure
	EXITED  = execshell.ExitCodeExited
	TIMEOUT = execshell.ExitCodeTimeout
)

var (
	defaultProcessMutex sync.Mutex
	defaultProcess      *execshell.Process
)

// SetDefault replaces the shared process, for example to inject a logger or a custom runner.
func SetDefault(replacement *execshell.Process) {
	defaultProcessMutex.Lock()
	defer defaultProcessMutex.Unlock()
	defaultProcess = replacement
}

// Reset discards the shared process and any stored result.
func Reset() {
	SetDefault(nil)
}

func sharedProcess() *execshell.Process {
	defaultProcessMutex.Lock()
	defer defaultProcessMutex.Unlock()

	if defaultProcess != nil {
		return defaultProcess
	}

	shellExecutor, executorError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner())
	if executorError != nil {
		panic(executorError)
	}
	createdProcess, processError := execshell.NewProcess(shellExecutor)
	if processError != nil {
		panic(processError)
	}
	defaultProcess = createdProcess
	return defaultProcess
}

// Prepare sanitizes and stores the command for the next Run.
func Prepare(command string) {
	sharedProcess().Prepare(command)
}

// Background selects the background dispatch path for subsequent runs.
func Background(background bool) {
	sharedProcess().SetBackground(background)
}

// Timeout sets the foreground timeout in seconds; nil disables it.
func Timeout(timeoutSeconds *int) error {
	return sharedProcess().SetTimeout(timeoutSeconds)
}

// Run executes the prepared command, preparing command first when nothing is prepared.
// Failing commands are reported through the accessors; the error signals misuse such as an empty command.
func Run(command ...string) error {
	_, runError := sharedProcess().Run(context.Background(), command...)
	return runError
}

// IsError reports whether the last run did not succeed.
func IsError() bool {
	return sharedProcess().IsError()
}

// IsSuccess reports whether the last run exited with SUCCESS.
func IsSuccess() bool {
	return sharedProcess().IsSuccess()
}

// GetOutput returns the captured lines of the last run, or nil when capture failed.
func GetOutput() []string {
	return sharedProcess().Output()
}

// GetOutputAsString returns the captured lines joined with newlines, or nil when capture failed.
func GetOutputAsString() *string {
	joinedOutput, outputCaptured := sharedProcess().OutputString()
	if !outputCaptured {
		return nil
	}
	return &joinedOutput
}

// GetCode returns the exit code of the last run.
func GetCode() int {
	return sharedProcess().Code()
}
