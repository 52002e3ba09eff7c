// Package playbook assembles the CLI command that runs playbook configurations.
package playbook

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tyemirov/spx/internal/playbook"
	"github.com/tyemirov/spx/internal/utils"
	flagutils "github.com/tyemirov/spx/internal/utils/flags"
	"github.com/tyemirov/spx/pkg/taskrunner"
)

const (
	commandUseConstant              = "playbook <configuration|preset>"
	commandShortDescriptionConstant = "Run a playbook configuration file or embedded preset"
	commandLongDescriptionConstant  = "playbook executes the ordered tasks defined in a YAML configuration or an embedded preset (see --list-presets) against the configured SharePoint site."
	commandExampleConstant          = "spx playbook ./playbook.yaml\n  spx playbook fetch-metadata --var remote_file_name=Report.docx"

	variableFlagNameConstant        = "var"
	variableFlagDescriptionConstant = "Set playbook variable (key=value). Repeatable."

	listPresetsFlagNameConstant        = "list-presets"
	listPresetsFlagDescriptionConstant = "List embedded playbook presets and exit"

	presetListLineTemplateConstant = "%-16s %s\n"

	configurationPathRequiredMessageConstant = "playbook configuration path or preset name required; provide a positional argument or set playbook.path in the configuration"
	loadConfigurationErrorTemplateConstant   = "unable to load playbook configuration: %w"
	loadPresetErrorTemplateConstant          = "unable to load embedded playbook %q: %w"
	buildOperationsErrorTemplateConstant     = "unable to build playbook operations: %w"
)

// CommandBuilder assembles the playbook command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	ExecutorFactory       taskrunner.Factory
	ClientFactory         taskrunner.ClientFactory
	PresetCatalogFactory  func() PresetCatalog
}

// Build constructs the playbook command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		Example:       commandExampleConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          builder.run,
	}

	command.Flags().StringArray(variableFlagNameConstant, nil, variableFlagDescriptionConstant)
	command.Flags().Bool(listPresetsFlagNameConstant, false, listPresetsFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	presetCatalog := builder.resolvePresetCatalog()

	listPresets := false
	if command != nil {
		listFlagValue, _, listFlagError := flagutils.BoolFlag(command, listPresetsFlagNameConstant)
		if listFlagError != nil && !errors.Is(listFlagError, flagutils.ErrFlagNotDefined) {
			return listFlagError
		}
		listPresets = listFlagValue
	}

	if listPresets {
		builder.printPresetList(command, presetCatalog)
		return nil
	}

	commandConfiguration := builder.resolveConfiguration()

	configurationPathCandidate := ""
	if len(arguments) > 0 {
		configurationPathCandidate = strings.TrimSpace(arguments[0])
	}
	if len(configurationPathCandidate) == 0 {
		configurationPathCandidate = commandConfiguration.Playbook
	}
	if len(configurationPathCandidate) == 0 {
		return errors.New(configurationPathRequiredMessageConstant)
	}

	playbookConfiguration, loadError := builder.loadConfiguration(presetCatalog, configurationPathCandidate)
	if loadError != nil {
		return loadError
	}

	variableAssignments, variableError := builder.resolveVariables(command, commandConfiguration)
	if variableError != nil {
		return variableError
	}

	runtimeVariableNames := make([]string, 0, len(variableAssignments))
	for variableName := range variableAssignments {
		runtimeVariableNames = append(runtimeVariableNames, variableName)
	}

	operations, operationsError := playbook.BuildOperations(playbookConfiguration, runtimeVariableNames)
	if operationsError != nil {
		return fmt.Errorf(buildOperationsErrorTemplateConstant, operationsError)
	}

	dependencyOptions := taskrunner.DependenciesOptions{Command: command}
	if command != nil {
		dependencyOptions.Output = utils.NewFlushingWriter(command.OutOrStdout())
		dependencyOptions.Errors = utils.NewFlushingWriter(command.ErrOrStderr())
	}

	dependencyResult, dependencyError := taskrunner.BuildDependencies(
		taskrunner.DependenciesConfig{
			LoggerProvider:  builder.LoggerProvider,
			RemoteSettings:  commandConfiguration.Remote,
			ClientFactory:   builder.ClientFactory,
			JournalSettings: commandConfiguration.Journal,
		},
		dependencyOptions,
	)
	if dependencyError != nil {
		return dependencyError
	}
	defer func() {
		_ = dependencyResult.Journal.Close()
	}()

	runtimeOptions := playbook.RuntimeOptions{
		PlaybookName: configurationPathCandidate,
		Variables:    variableAssignments,
	}

	executor := taskrunner.Resolve(builder.ExecutorFactory, dependencyResult.Playbook)
	_, runError := executor.Run(command.Context(), operations, runtimeOptions)
	return runError
}

func (builder *CommandBuilder) loadConfiguration(presetCatalog PresetCatalog, configurationPath string) (playbook.Configuration, error) {
	if presetCatalog != nil {
		presetConfiguration, presetFound, presetError := presetCatalog.Load(configurationPath)
		if presetError != nil {
			return playbook.Configuration{}, fmt.Errorf(loadPresetErrorTemplateConstant, configurationPath, presetError)
		}
		if presetFound {
			return presetConfiguration, nil
		}
	}

	loadedConfiguration, configurationError := playbook.LoadConfiguration(configurationPath)
	if configurationError != nil {
		return playbook.Configuration{}, fmt.Errorf(loadConfigurationErrorTemplateConstant, configurationError)
	}
	return loadedConfiguration, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolvePresetCatalog() PresetCatalog {
	if builder.PresetCatalogFactory != nil {
		if catalog := builder.PresetCatalogFactory(); catalog != nil {
			return catalog
		}
	}
	return NewEmbeddedPresetCatalog()
}

func (builder *CommandBuilder) resolveVariables(command *cobra.Command, configuration CommandConfiguration) (map[string]string, error) {
	variableAssignments := make(map[string]string, len(configuration.Variables))
	for variableName, variableValue := range configuration.Variables {
		variableAssignments[variableName] = variableValue
	}

	if command != nil {
		flagAssignments, flagError := command.Flags().GetStringArray(variableFlagNameConstant)
		if flagError != nil {
			return nil, flagError
		}
		parsedAssignments, parseError := parseVariableAssignments(flagAssignments)
		if parseError != nil {
			return nil, parseError
		}
		for variableName, variableValue := range parsedAssignments {
			variableAssignments[variableName] = variableValue
		}
	}

	if len(variableAssignments) == 0 {
		return nil, nil
	}
	return variableAssignments, nil
}

func (builder *CommandBuilder) printPresetList(command *cobra.Command, presetCatalog PresetCatalog) {
	if command == nil || presetCatalog == nil {
		return
	}
	for _, presetMetadata := range presetCatalog.List() {
		fmt.Fprintf(command.OutOrStdout(), presetListLineTemplateConstant, presetMetadata.Name, presetMetadata.Description)
	}
}
