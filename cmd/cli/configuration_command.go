package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/temirov/procexec/internal/utils"
)

const (
	configurationCommandNameConstant             = "config"
	configurationCommandShortDescriptionConstant = "Print the effective configuration"
	configurationCommandLongDescriptionConstant  = "config prints the configuration resolved from embedded defaults, the configuration file, PROCEXEC_ environment variables, and global flags, as YAML."
	configurationFileCommentTemplateConstant     = "# configuration file: %s\n"
	configurationEncodingErrorTemplateConstant   = "unable to encode configuration: %w"
)

// ConfigurationCommandBuilder assembles the config command.
type ConfigurationCommandBuilder struct {
	ConfigurationProvider func() ApplicationConfiguration
}

// Build constructs the config command.
func (builder *ConfigurationCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   configurationCommandNameConstant,
		Short: configurationCommandShortDescriptionConstant,
		Long:  configurationCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *ConfigurationCommandBuilder) run(command *cobra.Command, _ []string) error {
	configuration := ApplicationConfiguration{}
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	encodedConfiguration, encodingError := yaml.Marshal(configuration)
	if encodingError != nil {
		return fmt.Errorf(configurationEncodingErrorTemplateConstant, encodingError)
	}

	writer := utils.NewFlushingWriter(command.OutOrStdout())
	loadedConfiguration, available := utils.NewCommandContextAccessor().LoadedConfiguration(command.Context())
	if available && len(loadedConfiguration.ConfigFileUsed) > 0 {
		if _, writeError := fmt.Fprintf(writer, configurationFileCommentTemplateConstant, loadedConfiguration.ConfigFileUsed); writeError != nil {
			return writeError
		}
	}

	_, writeError := writer.Write(encodedConfiguration)
	return writeError
}
