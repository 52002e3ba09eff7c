package remote

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tyemirov/spx/internal/taskerrors"
)

const (
	statUseConstant              = "stat <folder> <file>"
	statShortDescriptionConstant = "Print the metadata document of a remote file"
)

func (builder *CommandBuilder) buildStatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   statUseConstant,
		Short: statShortDescriptionConstant,
		Args:  cobra.ExactArgs(2),
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
			metadataResult, metadataError := remoteClient.FileMetadata(command.Context(), folderPath, fileName)
			if metadataError != nil {
				return metadataError
			}

			canonicalDocument, canonicalError := canonicalMetadataDocument(folderPath, fileName, metadataResult.Metadata)
			if canonicalError != nil {
				return canonicalError
			}

			fmt.Fprintln(command.OutOrStdout(), canonicalDocument)
			return nil
		},
	}
}

// canonicalMetadataDocument re-serializes the metadata document with sorted
// object keys so repeated invocations print identical text.
func canonicalMetadataDocument(folderPath string, fileName string, rawMetadata string) (string, error) {
	subject := folderPath + "/" + fileName
	var decodedDocument any
	if decodeError := json.Unmarshal([]byte(rawMetadata), &decodedDocument); decodeError != nil {
		return "", taskerrors.Wrap(taskerrors.OperationRemoteMetadata, subject, taskerrors.ErrMalformedMetadata, decodeError)
	}
	canonicalBytes, encodeError := json.Marshal(decodedDocument)
	if encodeError != nil {
		return "", taskerrors.Wrap(taskerrors.OperationRemoteMetadata, subject, taskerrors.ErrMalformedMetadata, encodeError)
	}
	return string(canonicalBytes), nil
}
