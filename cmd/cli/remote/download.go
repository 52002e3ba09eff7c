package remote

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tyemirov/spx/internal/localfs"
)

const (
	downloadUseConstant              = "get <folder> <file> <path>"
	downloadShortDescriptionConstant = "Download a remote file to a local path"
	downloadedMessageTemplateConst   = "downloaded %s/%s to %s (%d bytes)\n"
)

func (builder *CommandBuilder) buildDownloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   downloadUseConstant,
		Short: downloadShortDescriptionConstant,
		Args:  cobra.ExactArgs(3),
		RunE: func(command *cobra.Command, arguments []string) error {
			ensureCommandWriters(command)

			configuration := builder.resolveConfiguration()
			logger := resolveLogger(builder.LoggerProvider)

			remoteClient, clientError := resolveClient(builder.ClientFactory, configuration.Remote, logger)
			if clientError != nil {
				return clientError
			}

			folderPath := arguments[0]
			fileName := arguments[1]
			targetPath := arguments[2]

			fileContent, downloadError := remoteClient.Download(command.Context(), folderPath, fileName)
			if downloadError != nil {
				return downloadError
			}

			localWriter := localfs.NewOSWriter()
			if writeError := localWriter.WriteFile(targetPath, fileContent, localfs.DefaultFileMode); writeError != nil {
				return writeError
			}

			fmt.Fprintf(command.OutOrStdout(), downloadedMessageTemplateConst, folderPath, fileName, targetPath, len(fileContent))
			return nil
		},
	}
}
