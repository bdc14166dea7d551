package run_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	runcmd "github.com/temirov/procexec/cmd/cli/run"
	"github.com/temirov/procexec/internal/execshell"
	flagutils "github.com/temirov/procexec/internal/utils/flags"
)

const (
	runTestHelloOutputConstant  = "hello"
	runTestUsageSnippetConstant = "Usage:"
)

type stubCommandRunner struct {
	mutex            sync.Mutex
	result           execshell.ExecutionResult
	recordedCommands []execshell.ShellCommand
	standardError    io.Writer
}

func (runner *stubCommandRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.mutex.Lock()
	defer runner.mutex.Unlock()
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.result, nil
}

func (runner *stubCommandRunner) lastCommand(testInstance *testing.T) execshell.ShellCommand {
	testInstance.Helper()
	runner.mutex.Lock()
	defer runner.mutex.Unlock()
	require.NotEmpty(testInstance, runner.recordedCommands)
	return runner.recordedCommands[len(runner.recordedCommands)-1]
}

type runCommandHarness struct {
	runner       *stubCommandRunner
	output       bytes.Buffer
	errorOutput  bytes.Buffer
	observedLogs *observer.ObservedLogs
}

func executeRunCommand(testInstance *testing.T, configuration runcmd.CommandConfiguration, humanReadable bool, result execshell.ExecutionResult, arguments ...string) (*runCommandHarness, error) {
	testInstance.Helper()

	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	harness := &runCommandHarness{
		runner:       &stubCommandRunner{result: result},
		observedLogs: observedLogs,
	}

	builder := runcmd.CommandBuilder{
		LoggerProvider:               func() *zap.Logger { return zap.NewNop() },
		ConsoleLoggerProvider:        func() *zap.Logger { return zap.New(observerCore) },
		HumanReadableLoggingProvider: func() bool { return humanReadable },
		ConfigurationProvider:        func() runcmd.CommandConfiguration { return configuration },
		RunnerFactory: func(_ runcmd.CommandConfiguration, standardError io.Writer) execshell.CommandRunner {
			harness.runner.standardError = standardError
			return harness.runner
		},
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetOut(&harness.output)
	command.SetErr(&harness.errorOutput)
	command.SetContext(context.Background())
	normalizedArguments := flagutils.NormalizeToggleArguments(arguments)
	if normalizedArguments == nil {
		normalizedArguments = []string{}
	}
	command.SetArgs(normalizedArguments)

	return harness, command.Execute()
}

func successfulResult(lines ...string) execshell.ExecutionResult {
	return execshell.ExecutionResult{Code: execshell.ExitCodeSuccess, Output: lines, Duration: time.Millisecond}
}

func TestRunCommandConfigurationPrecedence(testInstance *testing.T) {
	testCases := []struct {
		name               string
		configuration      runcmd.CommandConfiguration
		arguments          []string
		expectedBackground bool
		expectedTimeout    time.Duration
	}{
		{
			name:               "configuration_applies_without_flags",
			configuration:      runcmd.CommandConfiguration{Background: true, Timeout: 2 * time.Second},
			arguments:          []string{"--", "echo", "hello"},
			expectedBackground: true,
			expectedTimeout:    2 * time.Second,
		},
		{
			name:               "flags_override_configuration",
			configuration:      runcmd.CommandConfiguration{Background: true, Timeout: 2 * time.Second},
			arguments:          []string{"--background", "no", "--timeout", "5", "--", "echo", "hello"},
			expectedBackground: false,
			expectedTimeout:    5 * time.Second,
		},
		{
			name:               "sub_second_timeout_rounds_up",
			configuration:      runcmd.CommandConfiguration{Timeout: 1500 * time.Millisecond},
			arguments:          []string{"--", "echo", "hello"},
			expectedBackground: false,
			expectedTimeout:    2 * time.Second,
		},
		{
			name:               "zero_timeout_flag_disables_configured_timeout",
			configuration:      runcmd.CommandConfiguration{Timeout: 3 * time.Second},
			arguments:          []string{"--timeout", "0", "--", "echo", "hello"},
			expectedBackground: false,
			expectedTimeout:    0,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			harness, executionError := executeRunCommand(testInstance, testCase.configuration, false, successfulResult(runTestHelloOutputConstant), testCase.arguments...)
			require.NoError(testInstance, executionError)

			recordedCommand := harness.runner.lastCommand(testInstance)
			require.Equal(testInstance, "echo hello", recordedCommand.Command)
			require.Equal(testInstance, testCase.expectedBackground, recordedCommand.Background)
			require.Equal(testInstance, testCase.expectedTimeout, recordedCommand.Timeout)
			require.Equal(testInstance, runTestHelloOutputConstant+"\n", harness.output.String())
		})
	}
}

func TestRunCommandEscapesMetacharacters(testInstance *testing.T) {
	harness, executionError := executeRunCommand(testInstance, runcmd.DefaultCommandConfiguration(), false, successfulResult(), "--", "echo", "a;", "echo", "b")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, `echo a\; echo b`, harness.runner.lastCommand(testInstance).Command)
	require.Empty(testInstance, harness.output.String())
}

func TestRunCommandReportsExitStatus(testInstance *testing.T) {
	failedResult := execshell.ExecutionResult{Code: 7, Output: []string{"partial"}}

	harness, executionError := executeRunCommand(testInstance, runcmd.DefaultCommandConfiguration(), false, failedResult, "--", "exit", "7")
	require.Error(testInstance, executionError)

	var exitStatusError runcmd.ExitStatusError
	require.True(testInstance, errors.As(executionError, &exitStatusError))
	require.Equal(testInstance, 7, exitStatusError.ExitCode())
	require.Equal(testInstance, "partial\n", harness.output.String())
}

func TestRunCommandStructuredOutput(testInstance *testing.T) {
	timedOutResult := execshell.ExecutionResult{Code: execshell.ExitCodeTimeout, Output: []string{"started"}, TimedOut: true, Duration: time.Second}

	testCases := []struct {
		name      string
		format    string
		unmarshal func(data []byte, target any) error
	}{
		{name: "json", format: flagutils.OutputFormatJSON, unmarshal: json.Unmarshal},
		{name: "yaml", format: flagutils.OutputFormatYAML, unmarshal: yaml.Unmarshal},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			harness, executionError := executeRunCommand(testInstance, runcmd.DefaultCommandConfiguration(), false, timedOutResult, "--output-format", testCase.format, "--timeout", "1", "--", "sleep", "5")

			var exitStatusError runcmd.ExitStatusError
			require.True(testInstance, errors.As(executionError, &exitStatusError))
			require.Equal(testInstance, execshell.ExitCodeTimeout, exitStatusError.Code)

			var report runcmd.ExecutionReport
			require.NoError(testInstance, testCase.unmarshal(harness.output.Bytes(), &report))
			require.NotEmpty(testInstance, report.RunID)
			report.RunID = ""
			require.Equal(testInstance, runcmd.ExecutionReport{
				Command:  "sleep 5",
				Code:     execshell.ExitCodeTimeout,
				TimedOut: true,
				Duration: "1s",
				Output:   []string{"started"},
			}, report)
		})
	}
}

func TestRunCommandLaunchFailureReportsEmptyOutput(testInstance *testing.T) {
	launchFailure := execshell.ExecutionResult{Code: execshell.ExitCodeExited}

	harness, executionError := executeRunCommand(testInstance, runcmd.DefaultCommandConfiguration(), false, launchFailure, "--output-format", "json", "--", "true")

	var exitStatusError runcmd.ExitStatusError
	require.True(testInstance, errors.As(executionError, &exitStatusError))
	require.Equal(testInstance, execshell.ExitCodeExited, exitStatusError.Code)
	require.Contains(testInstance, harness.output.String(), `"output": []`)
}

func TestRunCommandRejectsInvalidInput(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectedError error
		expectUsage   bool
	}{
		{name: "missing_command", arguments: []string{}, expectedError: execshell.ErrEmptyCommand, expectUsage: true},
		{name: "blank_command", arguments: []string{"--", "  "}, expectedError: execshell.ErrEmptyCommand, expectUsage: true},
		{name: "negative_timeout", arguments: []string{"--timeout", "-1", "--", "echo", "hello"}, expectedError: execshell.ErrNegativeTimeout},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			harness, executionError := executeRunCommand(testInstance, runcmd.DefaultCommandConfiguration(), false, successfulResult(), testCase.arguments...)
			require.ErrorIs(testInstance, executionError, testCase.expectedError)
			require.Empty(testInstance, harness.runner.recordedCommands)
			if testCase.expectUsage {
				require.Contains(testInstance, harness.output.String(), runTestUsageSnippetConstant)
			}
		})
	}
}

func TestRunCommandUnsupportedConfiguredOutputFormat(testInstance *testing.T) {
	configuration := runcmd.DefaultCommandConfiguration()
	configuration.OutputFormat = "xml"

	harness, executionError := executeRunCommand(testInstance, configuration, false, successfulResult(runTestHelloOutputConstant), "--", "echo", "hello")
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "xml")
	require.Empty(testInstance, harness.runner.recordedCommands)
	require.Empty(testInstance, harness.output.String())

	var exitStatusError runcmd.ExitStatusError
	require.False(testInstance, errors.As(executionError, &exitStatusError))
}

func TestRunCommandHumanReadableEvents(testInstance *testing.T) {
	testCases := []struct {
		name             string
		humanReadable    bool
		expectedMessages []string
	}{
		{name: "console_events_enabled", humanReadable: true, expectedMessages: []string{`Running "echo hello"`, `Completed "echo hello"`}},
		{name: "console_events_disabled", humanReadable: false, expectedMessages: []string{}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			harness, executionError := executeRunCommand(testInstance, runcmd.DefaultCommandConfiguration(), testCase.humanReadable, successfulResult(runTestHelloOutputConstant), "--", "echo", "hello")
			require.NoError(testInstance, executionError)

			messages := []string{}
			for _, entry := range harness.observedLogs.All() {
				messages = append(messages, entry.Message)
			}
			require.Equal(testInstance, testCase.expectedMessages, messages)
		})
	}
}

func TestRunCommandPassesStandardErrorToRunner(testInstance *testing.T) {
	harness, executionError := executeRunCommand(testInstance, runcmd.DefaultCommandConfiguration(), false, successfulResult(), "--", "true")
	require.NoError(testInstance, executionError)
	require.Same(testInstance, &harness.errorOutput, harness.runner.standardError)
}
