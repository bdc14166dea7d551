package run

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/procexec/internal/execshell"
	"github.com/temirov/procexec/internal/ui"
	"github.com/temirov/procexec/internal/utils"
	flagutils "github.com/temirov/procexec/internal/utils/flags"
)

const (
	commandUseConstant                        = "run [flags] -- <command...>"
	commandShortDescriptionConstant           = "Run a shell command and report its exit code and output"
	commandLongDescriptionConstant            = "run joins its arguments into a single command line, escapes shell metacharacters, executes it through the configured shell in the foreground (optionally with a timeout) or on the background path, prints the captured standard output, and exits with the command's exit code."
	commandArgumentSeparatorConstant          = " "
	missingCommandErrorTemplateConstant       = "command required, pass it after --: %w"
	executorCreationErrorTemplateConstant     = "unable to construct shell executor: %w"
	processCreationErrorTemplateConstant      = "unable to construct process: %w"
	timeoutConfigurationErrorTemplateConstant = "invalid timeout: %w"
	configurationErrorTemplateConstant        = "invalid run configuration: %w"
	executionErrorTemplateConstant            = "unable to execute command: %w"
	reportErrorTemplateConstant               = "unable to write execution report: %w"
	exitStatusErrorTemplateConstant           = "command exited with code %d"
	runCompletedMessageConstant               = "run command completed"
	logFieldRunIdentifierConstant             = "run_id"
	logFieldExitCodeConstant                  = "exit_code"
	logFieldOutputFormatConstant              = "output_format"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// RunnerFactory constructs the command runner for the resolved configuration.
type RunnerFactory func(configuration CommandConfiguration, standardError io.Writer) execshell.CommandRunner

// ExitStatusError reports a command that ran to completion with a non-zero exit code.
type ExitStatusError struct {
	Code int
}

// Error describes the exit status.
func (exitError ExitStatusError) Error() string {
	return fmt.Sprintf(exitStatusErrorTemplateConstant, exitError.Code)
}

// ExitCode returns the process exit status the CLI should terminate with.
func (exitError ExitStatusError) ExitCode() int {
	return exitError.Code
}

// CommandBuilder assembles the run command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConsoleLoggerProvider        LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	RunnerFactory                RunnerFactory
}

// Build constructs the run command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flagValues := flagutils.BindExecutionFlags(command)
	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, arguments, flagValues)
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string, flagValues *flagutils.ExecutionFlagValues) error {
	commandLine := strings.TrimSpace(strings.Join(arguments, commandArgumentSeparatorConstant))
	if len(commandLine) == 0 {
		if helpError := command.Help(); helpError != nil {
			return helpError
		}
		return fmt.Errorf(missingCommandErrorTemplateConstant, execshell.ErrEmptyCommand)
	}

	configuration := builder.resolveConfiguration(command, flagValues)
	if validationError := configuration.validate(); validationError != nil {
		return fmt.Errorf(configurationErrorTemplateConstant, validationError)
	}
	logger := resolveLogger(builder.LoggerProvider)

	executorOptions := []execshell.ExecutorOption{
		execshell.WithRetryPolicy(execshell.RetryPolicy{
			Attempts:        configuration.Retry.Attempts,
			InitialInterval: configuration.Retry.InitialInterval,
		}),
	}
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		consoleObserver := ui.NewConsoleCommandEventLogger(resolveLogger(builder.ConsoleLoggerProvider))
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(consoleObserver))
	}

	runner := builder.resolveRunner(configuration, command.ErrOrStderr())
	shellExecutor, executorError := execshell.NewShellExecutor(logger, runner, executorOptions...)
	if executorError != nil {
		return fmt.Errorf(executorCreationErrorTemplateConstant, executorError)
	}

	process, processError := execshell.NewProcess(shellExecutor)
	if processError != nil {
		return fmt.Errorf(processCreationErrorTemplateConstant, processError)
	}

	process.SetBackground(configuration.Background)
	if timeoutError := process.SetTimeout(timeoutArgument(configuration)); timeoutError != nil {
		return fmt.Errorf(timeoutConfigurationErrorTemplateConstant, timeoutError)
	}

	result, runError := process.Run(command.Context(), commandLine)
	if runError != nil {
		return fmt.Errorf(executionErrorTemplateConstant, runError)
	}

	logger.Debug(
		runCompletedMessageConstant,
		zap.String(logFieldRunIdentifierConstant, result.RunID),
		zap.Int(logFieldExitCodeConstant, result.Code),
		zap.String(logFieldOutputFormatConstant, configuration.OutputFormat),
	)

	report := NewExecutionReport(commandLine, configuration.Background, result)
	if reportError := writeReport(utils.NewFlushingWriter(command.OutOrStdout()), configuration.OutputFormat, report); reportError != nil {
		return fmt.Errorf(reportErrorTemplateConstant, reportError)
	}

	if process.IsError() {
		return ExitStatusError{Code: process.Code()}
	}
	return nil
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command, flagValues *flagutils.ExecutionFlagValues) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	if command != nil && flagValues != nil {
		flagSet := command.Flags()
		if flagSet.Changed(flagutils.BackgroundFlagName) {
			configuration.Background = flagValues.Background
		}
		if flagSet.Changed(flagutils.TimeoutFlagName) {
			configuration.Timeout = secondsToDuration(flagValues.TimeoutSeconds)
		}
		if flagSet.Changed(flagutils.ShellFlagName) {
			configuration.Shell = flagValues.Shell
		}
		if flagSet.Changed(flagutils.OutputFormatFlagName) {
			configuration.OutputFormat = flagValues.OutputFormat
		}
		if flagSet.Changed(flagutils.MaxOutputBytesFlagName) {
			configuration.MaxOutputBytes = flagValues.MaxOutputBytes
		}
		if flagSet.Changed(flagutils.RetriesFlagName) {
			configuration.Retry.Attempts = flagValues.RetryAttempts
		}
	}

	return configuration.sanitize()
}

func (builder *CommandBuilder) resolveRunner(configuration CommandConfiguration, standardError io.Writer) execshell.CommandRunner {
	if builder.RunnerFactory != nil {
		if runner := builder.RunnerFactory(configuration, standardError); runner != nil {
			return runner
		}
	}
	return execshell.NewOSCommandRunner(
		execshell.WithShell(configuration.Shell),
		execshell.WithMaxOutputBytes(configuration.MaxOutputBytes),
		execshell.WithStandardError(standardError),
	)
}

func timeoutArgument(configuration CommandConfiguration) *int {
	timeoutSeconds := configuration.TimeoutSeconds()
	if timeoutSeconds == 0 {
		return nil
	}
	return &timeoutSeconds
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
