package remote

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	createFolderUseConstant              = "mkdir <folder>"
	createFolderShortDescriptionConst    = "Create a remote folder"
	createdFolderMessageTemplateConst    = "created folder %s\n"
	removeFolderUseConstant              = "rmdir <folder>"
	removeFolderShortDescriptionConst    = "Remove an empty remote folder"
	removeFolderPromptTemplateConstant   = "Remove remote folder %s? [y/N]: "
	removedFolderMessageTemplateConstant = "removed folder %s\n"
)

func (builder *CommandBuilder) buildCreateFolderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   createFolderUseConstant,
		Short: createFolderShortDescriptionConst,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			ensureCommandWriters(command)

			configuration := builder.resolveConfiguration()
			logger := resolveLogger(builder.LoggerProvider)

			remoteClient, clientError := resolveClient(builder.ClientFactory, configuration.Remote, logger)
			if clientError != nil {
				return clientError
			}

			folderPath := arguments[0]
			if createError := remoteClient.CreateFolder(command.Context(), folderPath); createError != nil {
				return createError
			}

			fmt.Fprintf(command.OutOrStdout(), createdFolderMessageTemplateConst, folderPath)
			return nil
		},
	}
}

func (builder *CommandBuilder) buildRemoveFolderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   removeFolderUseConstant,
		Short: removeFolderShortDescriptionConst,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			ensureCommandWriters(command)

			configuration := builder.resolveConfiguration()
			logger := resolveLogger(builder.LoggerProvider)

			folderPath := arguments[0]
			confirmed, confirmationError := builder.confirmDestructiveAction(command, configuration,
				fmt.Sprintf(removeFolderPromptTemplateConstant, folderPath))
			if confirmationError != nil {
				return confirmationError
			}
			if !confirmed {
				fmt.Fprint(command.OutOrStdout(), removeAbortedMessageConstant)
				return nil
			}

			remoteClient, clientError := resolveClient(builder.ClientFactory, configuration.Remote, logger)
			if clientError != nil {
				return clientError
			}

			if removeError := remoteClient.RemoveFolder(command.Context(), folderPath); removeError != nil {
				return removeError
			}

			fmt.Fprintf(command.OutOrStdout(), removedFolderMessageTemplateConstant, folderPath)
			return nil
		},
	}
}
