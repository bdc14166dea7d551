package execshell

import (
	"context"
	"sync"
)

// BackgroundExecution is a handle to a command started with ShellExecutor.Start.
type BackgroundExecution struct {
	runID          string
	done           chan struct{}
	completionOnce sync.Once
	result         ExecutionResult
	executionError error
}

func newBackgroundExecution(runID string) *BackgroundExecution {
	return &BackgroundExecution{runID: runID, done: make(chan struct{})}
}

// RunID identifies the execution; it matches the RunID of the eventual result.
func (execution *BackgroundExecution) RunID() string {
	return execution.runID
}

// Done is closed once the command has finished.
func (execution *BackgroundExecution) Done() <-chan struct{} {
	return execution.done
}

// Wait blocks until the command finishes or waitContext ends. Cancelling waitContext does not stop the command.
func (execution *BackgroundExecution) Wait(waitContext context.Context) (ExecutionResult, error) {
	if waitContext == nil {
		waitContext = context.Background()
	}
	select {
	case <-execution.done:
		return execution.result, execution.executionError
	case <-waitContext.Done():
		return ExecutionResult{}, waitContext.Err()
	}
}

func (execution *BackgroundExecution) complete(result ExecutionResult, executionError error) {
	execution.completionOnce.Do(func() {
		execution.result = result
		execution.executionError = executionError
		close(execution.done)
	})
}
