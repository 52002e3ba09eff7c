package remote

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	removeUseConstant              = "rm <folder> <file>"
	removeShortDescriptionConstant = "Delete a remote file"
	removePromptTemplateConstant   = "Delete remote file %s/%s? [y/N]: "
	removedMessageTemplateConstant = "deleted %s/%s\n"
	removeAbortedMessageConstant   = "aborted\n"
)

func (builder *CommandBuilder) buildRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   removeUseConstant,
		Short: removeShortDescriptionConstant,
		Args:  cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, arguments []string) error {
			ensureCommandWriters(command)

			configuration := builder.resolveConfiguration()
			logger := resolveLogger(builder.LoggerProvider)

			folderPath := arguments[0]
			fileName := arguments[1]

			confirmed, confirmationError := builder.confirmDestructiveAction(command, configuration,
				fmt.Sprintf(removePromptTemplateConstant, folderPath, fileName))
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

			if deleteError := remoteClient.Delete(command.Context(), folderPath, fileName); deleteError != nil {
				return deleteError
			}

			fmt.Fprintf(command.OutOrStdout(), removedMessageTemplateConstant, folderPath, fileName)
			return nil
		},
	}
}

func (builder *CommandBuilder) confirmDestructiveAction(command *cobra.Command, configuration CommandConfiguration, promptText string) (bool, error) {
	if resolveAssumeYes(command, configuration) {
		return true, nil
	}
	prompter := resolvePrompter(builder.PrompterFactory, command)
	return prompter.Confirm(promptText)
}
