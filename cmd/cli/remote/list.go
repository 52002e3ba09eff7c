package remote

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	listUseConstant              = "ls <folder>"
	listShortDescriptionConstant = "List the immediate children of a remote folder"
	listLineTemplateConstant     = "%-8s %-22s %s\n"
	listEmptyFolderMessageConst  = "folder is empty\n"
	listLogMessageConstant       = "listed remote folder"
	listFolderLogFieldConstant   = "folder"
	listEntriesLogFieldConstant  = "entries"
)

func (builder *CommandBuilder) buildListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   listUseConstant,
		Short: listShortDescriptionConstant,
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
			entries, listError := remoteClient.ListFolder(command.Context(), folderPath)
			if listError != nil {
				return listError
			}

			logger.Debug(listLogMessageConstant,
				zap.String(listFolderLogFieldConstant, folderPath),
				zap.Int(listEntriesLogFieldConstant, len(entries)))

			if len(entries) == 0 {
				fmt.Fprint(command.OutOrStdout(), listEmptyFolderMessageConst)
				return nil
			}
			for _, entry := range entries {
				fmt.Fprintf(command.OutOrStdout(), listLineTemplateConstant, entry.Kind, entry.TimeLastModified, entry.Name)
			}
			return nil
		},
	}
}
