package run

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCommandConfigurationTimeoutSeconds(t *testing.T) {
	testCases := []struct {
		name            string
		timeout         time.Duration
		expectedSeconds int
	}{
		{name: "Disabled", timeout: 0, expectedSeconds: 0},
		{name: "WholeSeconds", timeout: 3 * time.Second, expectedSeconds: 3},
		{name: "RoundsUp", timeout: 2100 * time.Millisecond, expectedSeconds: 3},
		{name: "SubSecond", timeout: time.Millisecond, expectedSeconds: 1},
		{name: "Negative", timeout: -2 * time.Second, expectedSeconds: -2},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			configuration := CommandConfiguration{Timeout: testCase.timeout}
			require.Equal(t, testCase.expectedSeconds, configuration.TimeoutSeconds())
		})
	}
}

func TestCommandConfigurationSanitize(t *testing.T) {
	sanitized := CommandConfiguration{
		Shell:          "  ",
		MaxOutputBytes: -5,
		OutputFormat:   " JSON ",
		Retry:          RetryConfiguration{Attempts: -1},
	}.sanitize()

	require.Equal(t, defaultShellConstant, sanitized.Shell)
	require.Equal(t, defaultMaxOutputBytesConstant, sanitized.MaxOutputBytes)
	require.Equal(t, "json", sanitized.OutputFormat)
	require.Equal(t, 0, sanitized.Retry.Attempts)
	require.Equal(t, defaultRetryInitialIntervalConstant, sanitized.Retry.InitialInterval)
}

func TestDefaultConfigurationValues(t *testing.T) {
	values := DefaultConfigurationValues("execution")

	require.Equal(t, "/bin/sh", values["execution.shell"])
	require.Equal(t, "0s", values["execution.timeout"])
	require.Equal(t, false, values["execution.background"])
	require.Equal(t, 1<<20, values["execution.max_output_bytes"])
	require.Equal(t, "text", values["execution.output_format"])
	require.Equal(t, 0, values["execution.retry.attempts"])
	require.Equal(t, "100ms", values["execution.retry.initial_interval"])

	unprefixed := DefaultConfigurationValues("")
	require.Contains(t, unprefixed, "shell")
}

func TestCommandConfigurationValidate(t *testing.T) {
	testCases := []struct {
		name          string
		outputFormat  string
		expectedError bool
	}{
		{name: "Text", outputFormat: "text"},
		{name: "JSON", outputFormat: "json"},
		{name: "YAML", outputFormat: "yaml"},
		{name: "Unsupported", outputFormat: "xml", expectedError: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			validationError := CommandConfiguration{OutputFormat: testCase.outputFormat}.sanitize().validate()
			if testCase.expectedError {
				require.Error(t, validationError)
				require.Contains(t, validationError.Error(), testCase.outputFormat)
				return
			}
			require.NoError(t, validationError)
		})
	}
}
