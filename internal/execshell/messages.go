package execshell

import (
	"fmt"
	"strings"
)

const (
	startedMessageTemplateConstant          = "Running %s"
	completedMessageTemplateConstant        = "Completed %s"
	failedMessageTemplateConstant           = "%s failed with exit code %d"
	timedOutMessageTemplateConstant         = "%s timed out after %s"
	launchFailedMessageTemplateConstant     = "%s could not be launched"
	executionFailureMessageTemplateConstant = "%s failed: %s"
	backgroundLabelSuffixConstant           = " (background)"
	commandLabelTemplateConstant            = "%q%s"
	truncatedSuffixConstant                 = " (output truncated)"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
)

// CommandMessageFormatter builds human-readable messages describing command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message emitted before a command runs.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return fmt.Sprintf(startedMessageTemplateConstant, formatter.formatCommandLabel(command))
}

// BuildCompletedMessage formats the message describing a finished command, covering success, exit failures,
// timeouts, and launch failures.
func (formatter CommandMessageFormatter) BuildCompletedMessage(command ShellCommand, result ExecutionResult) string {
	commandLabel := formatter.formatCommandLabel(command)

	var message string
	switch {
	case result.TimedOut:
		message = fmt.Sprintf(timedOutMessageTemplateConstant, commandLabel, command.Timeout)
	case result.isLaunchFailure():
		message = fmt.Sprintf(launchFailedMessageTemplateConstant, commandLabel)
	case result.Success():
		message = fmt.Sprintf(completedMessageTemplateConstant, commandLabel)
	default:
		message = fmt.Sprintf(failedMessageTemplateConstant, commandLabel, result.Code)
	}

	if result.Truncated {
		message += truncatedSuffixConstant
	}
	return message
}

// BuildExecutionFailureMessage formats the message describing a runner failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(executionFailureMessageTemplateConstant, formatter.formatCommandLabel(command), failureMessage)
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	backgroundSuffix := emptyStringConstant
	if command.Background {
		backgroundSuffix = backgroundLabelSuffixConstant
	}
	return fmt.Sprintf(commandLabelTemplateConstant, strings.TrimSpace(command.Command), backgroundSuffix)
}
