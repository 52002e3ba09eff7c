package remote

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tyemirov/spx/internal/localfs"
)

const (
	uploadUseConstant              = "put <folder> <file> <source>"
	uploadShortDescriptionConstant = "Upload a local file to a remote folder"
	uploadedMessageTemplateConst   = "uploaded %s to %s/%s (%d bytes)\n"
)

func (builder *CommandBuilder) buildUploadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   uploadUseConstant,
		Short: uploadShortDescriptionConstant,
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
			sourcePath := arguments[2]

			localWriter := localfs.NewOSWriter()
			fileContent, readError := localWriter.ReadFile(sourcePath)
			if readError != nil {
				return readError
			}

			if uploadError := remoteClient.Upload(command.Context(), folderPath, fileName, fileContent); uploadError != nil {
				return uploadError
			}

			fmt.Fprintf(command.OutOrStdout(), uploadedMessageTemplateConst, sourcePath, folderPath, fileName, len(fileContent))
			return nil
		},
	}
}
