package run

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/temirov/procexec/internal/execshell"
	"github.com/temirov/procexec/internal/utils"
	flagutils "github.com/temirov/procexec/internal/utils/flags"
)

const (
	unsupportedOutputFormatTemplateConstant = "unsupported output format %q"
	reportEncodingErrorTemplateConstant     = "unable to encode execution report: %w"
	jsonIndentConstant                      = "  "
)

// ExecutionReport is the serialized form of a completed run.
type ExecutionReport struct {
	RunID      string   `json:"run_id" yaml:"run_id"`
	Command    string   `json:"command" yaml:"command"`
	Background bool     `json:"background" yaml:"background"`
	Code       int      `json:"code" yaml:"code"`
	Success    bool     `json:"success" yaml:"success"`
	TimedOut   bool     `json:"timed_out" yaml:"timed_out"`
	Truncated  bool     `json:"truncated" yaml:"truncated"`
	Duration   string   `json:"duration" yaml:"duration"`
	Output     []string `json:"output" yaml:"output"`
}

// NewExecutionReport converts an execution result into its serialized form.
// A result without captured output reports an empty list.
func NewExecutionReport(command string, background bool, result execshell.ExecutionResult) ExecutionReport {
	outputLines := result.Output
	if outputLines == nil {
		outputLines = []string{}
	}

	return ExecutionReport{
		RunID:      result.RunID,
		Command:    command,
		Background: background,
		Code:       result.Code,
		Success:    result.Success(),
		TimedOut:   result.TimedOut,
		Truncated:  result.Truncated,
		Duration:   result.Duration.String(),
		Output:     outputLines,
	}
}

func writeReport(writer *utils.FlushingWriter, outputFormat string, report ExecutionReport) error {
	switch outputFormat {
	case flagutils.OutputFormatText:
		return writer.WriteLines(report.Output)
	case flagutils.OutputFormatJSON:
		encodedReport, encodingError := json.MarshalIndent(report, "", jsonIndentConstant)
		if encodingError != nil {
			return fmt.Errorf(reportEncodingErrorTemplateConstant, encodingError)
		}
		return writer.WriteLines([]string{string(encodedReport)})
	case flagutils.OutputFormatYAML:
		encodedReport, encodingError := yaml.Marshal(report)
		if encodingError != nil {
			return fmt.Errorf(reportEncodingErrorTemplateConstant, encodingError)
		}
		_, writeError := writer.Write(encodedReport)
		return writeError
	default:
		return fmt.Errorf(unsupportedOutputFormatTemplateConstant, outputFormat)
	}
}
