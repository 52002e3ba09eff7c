// Package remote provides direct commands against the remote content service.
package remote

import (
	"github.com/spf13/cobra"
)

const (
	namespaceUseConstant              = "remote"
	namespaceShortDescriptionConstant = "Interact with remote folders and files directly"
	namespaceLongDescriptionConstant  = "remote exposes one-off folder and file operations without a playbook: list folders, inspect metadata, transfer files, and manage folders."
)

// CommandBuilder assembles the remote namespace command and its subcommands.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	ClientFactory         ClientFactory
	PrompterFactory       PrompterFactory
}

// Build constructs the remote namespace Cobra command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	namespaceCommand := &cobra.Command{
		Use:           namespaceUseConstant,
		Short:         namespaceShortDescriptionConstant,
		Long:          namespaceLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	namespaceCommand.AddCommand(
		builder.buildListCommand(),
		builder.buildStatCommand(),
		builder.buildDownloadCommand(),
		builder.buildUploadCommand(),
		builder.buildRemoveCommand(),
		builder.buildCreateFolderCommand(),
		builder.buildRemoveFolderCommand(),
	)

	return namespaceCommand, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration().Sanitize()
	}
	return builder.ConfigurationProvider()
}
