package run

import (
	"fmt"
	"slices"
	"strings"
	"time"

	flagutils "github.com/temirov/procexec/internal/utils/flags"
)

const (
	defaultShellConstant                   = "/bin/sh"
	defaultMaxOutputBytesConstant          = 1 << 20
	defaultRetryInitialIntervalConstant    = 100 * time.Millisecond
	shellConfigurationKeyConstant          = "shell"
	timeoutConfigurationKeyConstant        = "timeout"
	backgroundConfigurationKeyConstant     = "background"
	maxOutputBytesConfigurationKeyConstant = "max_output_bytes"
	outputFormatConfigurationKeyConstant   = "output_format"
	retryAttemptsConfigurationKeyConstant  = "retry.attempts"
	retryIntervalConfigurationKeyConstant  = "retry.initial_interval"
	configurationKeySeparatorConstant      = "."
)

// CommandConfiguration captures configuration values for the run command.
type CommandConfiguration struct {
	Shell          string             `mapstructure:"shell" yaml:"shell"`
	Timeout        time.Duration      `mapstructure:"timeout" yaml:"timeout"`
	Background     bool               `mapstructure:"background" yaml:"background"`
	MaxOutputBytes int                `mapstructure:"max_output_bytes" yaml:"max_output_bytes"`
	OutputFormat   string             `mapstructure:"output_format" yaml:"output_format"`
	Retry          RetryConfiguration `mapstructure:"retry" yaml:"retry"`
}

// RetryConfiguration controls how launch failures are retried.
type RetryConfiguration struct {
	Attempts        int           `mapstructure:"attempts" yaml:"attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval" yaml:"initial_interval"`
}

// DefaultCommandConfiguration provides default run command settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Shell:          defaultShellConstant,
		Timeout:        0,
		Background:     false,
		MaxOutputBytes: defaultMaxOutputBytesConstant,
		OutputFormat:   flagutils.OutputFormatText,
		Retry: RetryConfiguration{
			Attempts:        0,
			InitialInterval: defaultRetryInitialIntervalConstant,
		},
	}
}

// DefaultConfigurationValues returns viper defaults for the run command nested under configurationPrefix.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := strings.TrimSpace(configurationPrefix)
	if len(prefix) > 0 {
		prefix += configurationKeySeparatorConstant
	}

	return map[string]any{
		prefix + shellConfigurationKeyConstant:          defaults.Shell,
		prefix + timeoutConfigurationKeyConstant:        defaults.Timeout.String(),
		prefix + backgroundConfigurationKeyConstant:     defaults.Background,
		prefix + maxOutputBytesConfigurationKeyConstant: defaults.MaxOutputBytes,
		prefix + outputFormatConfigurationKeyConstant:   defaults.OutputFormat,
		prefix + retryAttemptsConfigurationKeyConstant:  defaults.Retry.Attempts,
		prefix + retryIntervalConfigurationKeyConstant:  defaults.Retry.InitialInterval.String(),
	}
}

// TimeoutSeconds converts the configured timeout into whole seconds, rounding sub-second remainders up.
// A zero or negative result means no timeout is requested; negative values are kept so the executor can reject them.
func (configuration CommandConfiguration) TimeoutSeconds() int {
	if configuration.Timeout <= 0 {
		return int(configuration.Timeout / time.Second)
	}
	return int((configuration.Timeout + time.Second - 1) / time.Second)
}

// sanitize fills blank values with defaults and normalizes the output format.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.Shell = strings.TrimSpace(configuration.Shell)
	if len(sanitized.Shell) == 0 {
		sanitized.Shell = defaults.Shell
	}
	if sanitized.MaxOutputBytes <= 0 {
		sanitized.MaxOutputBytes = defaults.MaxOutputBytes
	}
	sanitized.OutputFormat = strings.ToLower(strings.TrimSpace(configuration.OutputFormat))
	if len(sanitized.OutputFormat) == 0 {
		sanitized.OutputFormat = defaults.OutputFormat
	}
	if sanitized.Retry.Attempts < 0 {
		sanitized.Retry.Attempts = 0
	}
	if sanitized.Retry.InitialInterval <= 0 {
		sanitized.Retry.InitialInterval = defaults.Retry.InitialInterval
	}

	return sanitized
}

// validate rejects settings that would only fail after the command has already run.
func (configuration CommandConfiguration) validate() error {
	if !slices.Contains(flagutils.OutputFormats, configuration.OutputFormat) {
		return fmt.Errorf(unsupportedOutputFormatTemplateConstant, configuration.OutputFormat)
	}
	return nil
}

func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
