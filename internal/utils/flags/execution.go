// Package flags provides helpers for binding standardized execution flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
)

const (
	// BackgroundFlagName selects the background execution path.
	BackgroundFlagName = "background"
	// TimeoutFlagName limits foreground execution time in seconds.
	TimeoutFlagName = "timeout"
	// ShellFlagName selects the shell interpreter.
	ShellFlagName = "shell"
	// OutputFormatFlagName selects how the execution result is rendered.
	OutputFormatFlagName = "output-format"
	// MaxOutputBytesFlagName bounds captured standard output.
	MaxOutputBytesFlagName = "max-output-bytes"
	// RetriesFlagName sets how many times a launch failure is retried.
	RetriesFlagName = "retries"

	// OutputFormatText prints captured lines only.
	OutputFormatText = "text"
	// OutputFormatJSON prints the full result as JSON.
	OutputFormatJSON = "json"
	// OutputFormatYAML prints the full result as YAML.
	OutputFormatYAML = "yaml"

	backgroundFlagUsageConstant     = "Run the command in the background and recover its exit code from a status trailer"
	timeoutFlagUsageConstant        = "Foreground timeout in seconds (0 disables the timeout)"
	shellFlagUsageConstant          = "Shell used to interpret the command"
	outputFormatFlagUsageConstant   = "Render the execution result"
	maxOutputBytesFlagUsageConstant = "Maximum captured output size in bytes"
	retriesFlagUsageConstant        = "Retries after a launch failure"
)

// OutputFormats lists the accepted output format values.
var OutputFormats = []string{OutputFormatText, OutputFormatJSON, OutputFormatYAML}

// ExecutionFlagValues receives parsed execution flag values.
// Values only override configuration when the corresponding flag changed.
type ExecutionFlagValues struct {
	Background     bool
	TimeoutSeconds int
	Shell          string
	OutputFormat   string
	MaxOutputBytes int
	RetryAttempts  int
}

// BindExecutionFlags attaches the execution flags to the provided command's local flag set.
func BindExecutionFlags(command *cobra.Command) *ExecutionFlagValues {
	values := &ExecutionFlagValues{}
	if command == nil {
		return values
	}

	flagSet := command.Flags()
	AddToggleFlag(flagSet, &values.Background, BackgroundFlagName, "", false, backgroundFlagUsageConstant)
	flagSet.IntVar(&values.TimeoutSeconds, TimeoutFlagName, 0, timeoutFlagUsageConstant)
	flagSet.StringVar(&values.Shell, ShellFlagName, "", shellFlagUsageConstant)
	AddChoiceFlag(flagSet, &values.OutputFormat, OutputFormatFlagName, OutputFormatText, OutputFormats, outputFormatFlagUsageConstant)
	flagSet.IntVar(&values.MaxOutputBytes, MaxOutputBytesFlagName, 0, maxOutputBytesFlagUsageConstant)
	flagSet.IntVar(&values.RetryAttempts, RetriesFlagName, 0, retriesFlagUsageConstant)

	return values
}
