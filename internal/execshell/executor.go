package execshell

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	executionStartedLogMessageConstant   = "shell command started"
	executionCompletedLogMessageConstant = "shell command completed"
	executionFailedLogMessageConstant    = "shell command failed"
	executionRetryLogMessageConstant     = "shell command launch failed, retrying"
	logFieldRunIDConstant                = "run_id"
	logFieldCommandConstant              = "command"
	logFieldBackgroundConstant           = "background"
	logFieldTimeoutConstant              = "timeout"
	logFieldExitCodeConstant             = "exit_code"
	logFieldTimedOutConstant             = "timed_out"
	logFieldTruncatedConstant            = "truncated"
	logFieldDurationConstant             = "duration"
	logFieldLineCountConstant            = "line_count"
	logFieldAttemptConstant              = "attempt"
	logFieldRetryDelayConstant           = "retry_delay"
	defaultRetryInitialIntervalConstant  = 200 * time.Millisecond
)

var errLaunchFailed = errors.New("command launch failed")

// RetryPolicy controls how launch failures are retried. Attempts counts retries beyond the first try.
type RetryPolicy struct {
	Attempts        int
	InitialInterval time.Duration
}

// ExecutorOption customizes a ShellExecutor.
type ExecutorOption func(executor *ShellExecutor)

// WithCommandEventObserver registers an observer notified about every command lifecycle event.
func WithCommandEventObserver(observer CommandEventObserver) ExecutorOption {
	return func(executor *ShellExecutor) {
		if observer != nil {
			executor.observer = observer
		}
	}
}

// WithRetryPolicy enables retrying commands whose shell could not be launched.
func WithRetryPolicy(policy RetryPolicy) ExecutorOption {
	return func(executor *ShellExecutor) {
		executor.retryPolicy = policy
	}
}

// ShellExecutor validates, logs, and dispatches shell commands to a CommandRunner.
type ShellExecutor struct {
	logger      *zap.Logger
	runner      CommandRunner
	observer    CommandEventObserver
	retryPolicy RetryPolicy
}

// NewShellExecutor constructs a ShellExecutor.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, options ...ExecutorOption) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	executor := &ShellExecutor{
		logger:   logger,
		runner:   runner,
		observer: noopCommandEventObserver{},
	}
	for _, option := range options {
		if option != nil {
			option(executor)
		}
	}
	return executor, nil
}

// Execute runs the command and blocks until it finishes, times out, or the context is cancelled.
// A command that fails, times out, or cannot be launched is reported through the result, not the error.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if validationError := validateCommand(command); validationError != nil {
		return ExecutionResult{}, validationError
	}
	if executionContext == nil {
		executionContext = context.Background()
	}
	return executor.execute(executionContext, command, uuid.NewString())
}

// Start launches the command without blocking and returns a handle for its eventual result.
func (executor *ShellExecutor) Start(executionContext context.Context, command ShellCommand) (*BackgroundExecution, error) {
	if validationError := validateCommand(command); validationError != nil {
		return nil, validationError
	}
	if executionContext == nil {
		executionContext = context.Background()
	}

	execution := newBackgroundExecution(uuid.NewString())
	go func() {
		result, executionError := executor.execute(executionContext, command, execution.runID)
		execution.complete(result, executionError)
	}()
	return execution, nil
}

func (executor *ShellExecutor) execute(executionContext context.Context, command ShellCommand, runID string) (ExecutionResult, error) {
	commandLogger := executor.logger.With(
		zap.String(logFieldRunIDConstant, runID),
		zap.String(logFieldCommandConstant, command.Command),
		zap.Bool(logFieldBackgroundConstant, command.Background),
		zap.Duration(logFieldTimeoutConstant, command.Timeout),
	)

	commandLogger.Debug(executionStartedLogMessageConstant)
	executor.observer.CommandStarted(command)

	result, runError := executor.runWithRetry(executionContext, command, commandLogger)
	if runError != nil {
		commandLogger.Error(executionFailedLogMessageConstant, zap.Error(runError))
		executor.observer.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	result.RunID = runID

	completionFields := []zap.Field{
		zap.Int(logFieldExitCodeConstant, result.Code),
		zap.Bool(logFieldTimedOutConstant, result.TimedOut),
		zap.Bool(logFieldTruncatedConstant, result.Truncated),
		zap.Duration(logFieldDurationConstant, result.Duration),
		zap.Int(logFieldLineCountConstant, len(result.Output)),
	}
	if result.Success() {
		commandLogger.Info(executionCompletedLogMessageConstant, completionFields...)
	} else {
		commandLogger.Warn(executionCompletedLogMessageConstant, completionFields...)
	}
	executor.observer.CommandCompleted(command, result)

	return result, nil
}

func (executor *ShellExecutor) runWithRetry(executionContext context.Context, command ShellCommand, commandLogger *zap.Logger) (ExecutionResult, error) {
	if executor.retryPolicy.Attempts <= 0 {
		return executor.runner.Run(executionContext, command)
	}

	var lastResult ExecutionResult
	attempt := 0
	operation := func() error {
		attempt++
		result, runError := executor.runner.Run(executionContext, command)
		if runError != nil {
			return backoff.Permanent(runError)
		}
		lastResult = result
		if result.isLaunchFailure() {
			return errLaunchFailed
		}
		return nil
	}

	notify := func(_ error, retryDelay time.Duration) {
		commandLogger.Warn(executionRetryLogMessageConstant, zap.Int(logFieldAttemptConstant, attempt), zap.Duration(logFieldRetryDelayConstant, retryDelay))
	}

	retryError := backoff.RetryNotify(operation, executor.retryBackOff(executionContext), notify)
	if retryError != nil && !errors.Is(retryError, errLaunchFailed) && !errors.Is(retryError, executionContext.Err()) {
		return ExecutionResult{}, retryError
	}
	return lastResult, nil
}

func (executor *ShellExecutor) retryBackOff(executionContext context.Context) backoff.BackOff {
	exponentialBackOff := backoff.NewExponentialBackOff()
	exponentialBackOff.InitialInterval = executor.retryPolicy.InitialInterval
	if exponentialBackOff.InitialInterval <= 0 {
		exponentialBackOff.InitialInterval = defaultRetryInitialIntervalConstant
	}
	exponentialBackOff.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exponentialBackOff, uint64(executor.retryPolicy.Attempts)), executionContext)
}

func validateCommand(command ShellCommand) error {
	if len(strings.TrimSpace(command.Command)) == 0 {
		return ErrEmptyCommand
	}
	if command.Timeout < 0 {
		return ErrNegativeTimeout
	}
	return nil
}
