package playbook

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/tyemirov/spx/internal/taskerrors"
)

// ListFolderOperation lists the immediate children of a remote folder.
type ListFolderOperation struct {
	taskName string
	folder   optionValue
	register ResultName
}

// Name returns the configured task name.
func (operation *ListFolderOperation) Name() string {
	return operation.taskName
}

// Execute retrieves the folder listing and registers it when requested.
func (operation *ListFolderOperation) Execute(executionContext context.Context, environment *Environment) error {
	folderPath, resolveError := operation.folder.resolve(environment)
	if resolveError != nil {
		return resolveError
	}

	listedEntries, listError := environment.RemoteClient.ListFolder(executionContext, folderPath)
	if listError != nil {
		return listError
	}

	encodedEntries, encodeError := json.Marshal(listedEntries)
	if encodeError != nil {
		return taskerrors.Wrap(taskerrors.OperationRemoteList, folderPath, taskerrors.ErrMalformedMetadata, encodeError)
	}

	environment.registerResult(operation.register, TaskResult{
		Operation: OperationTypeRemoteList,
		Fields: map[string]string{
			ResultFieldEntries: string(encodedEntries),
			ResultFieldCount:   strconv.Itoa(len(listedEntries)),
		},
		Entries: listedEntries,
	})
	return nil
}

// FileMetadataOperation retrieves the metadata document of a remote file.
type FileMetadataOperation struct {
	taskName string
	folder   optionValue
	file     optionValue
	register ResultName
}

// Name returns the configured task name.
func (operation *FileMetadataOperation) Name() string {
	return operation.taskName
}

// Execute retrieves the metadata document and registers it when requested.
func (operation *FileMetadataOperation) Execute(executionContext context.Context, environment *Environment) error {
	folderPath, fileName, resolveError := resolveFolderAndFile(environment, operation.folder, operation.file)
	if resolveError != nil {
		return resolveError
	}

	metadataResult, metadataError := environment.RemoteClient.FileMetadata(executionContext, folderPath, fileName)
	if metadataError != nil {
		return metadataError
	}

	environment.registerResult(operation.register, TaskResult{
		Operation: OperationTypeRemoteMetadata,
		Fields: map[string]string{
			ResultFieldMetadata: metadataResult.Metadata,
			ResultFieldStatus:   strconv.Itoa(metadataResult.StatusCode),
		},
	})
	return nil
}

// DownloadOperation fetches remote file content and writes it locally.
type DownloadOperation struct {
	taskName string
	folder   optionValue
	file     optionValue
	path     optionValue
	register ResultName
}

// Name returns the configured task name.
func (operation *DownloadOperation) Name() string {
	return operation.taskName
}

// Execute downloads the remote file and stores it at the configured local path.
func (operation *DownloadOperation) Execute(executionContext context.Context, environment *Environment) error {
	folderPath, fileName, resolveError := resolveFolderAndFile(environment, operation.folder, operation.file)
	if resolveError != nil {
		return resolveError
	}
	localPath, pathError := operation.path.resolve(environment)
	if pathError != nil {
		return pathError
	}

	downloadedContent, downloadError := environment.RemoteClient.Download(executionContext, folderPath, fileName)
	if downloadError != nil {
		return downloadError
	}

	if writeError := environment.LocalWriter.WriteFile(localPath, downloadedContent, 0); writeError != nil {
		return writeError
	}

	environment.registerResult(operation.register, TaskResult{
		Operation: OperationTypeRemoteDownload,
		Fields: map[string]string{
			ResultFieldContent: string(downloadedContent),
		},
	})
	return nil
}

// UploadOperation stores a local file in a remote folder.
type UploadOperation struct {
	taskName string
	folder   optionValue
	file     optionValue
	source   optionValue
}

// Name returns the configured task name.
func (operation *UploadOperation) Name() string {
	return operation.taskName
}

// Execute reads the local source file and uploads it, overwriting remote content.
func (operation *UploadOperation) Execute(executionContext context.Context, environment *Environment) error {
	folderPath, fileName, resolveError := resolveFolderAndFile(environment, operation.folder, operation.file)
	if resolveError != nil {
		return resolveError
	}
	sourcePath, sourceError := operation.source.resolve(environment)
	if sourceError != nil {
		return sourceError
	}

	sourceContent, readError := environment.LocalWriter.ReadFile(sourcePath)
	if readError != nil {
		return readError
	}

	return environment.RemoteClient.Upload(executionContext, folderPath, fileName, sourceContent)
}

// DeleteFileOperation removes a remote file.
type DeleteFileOperation struct {
	taskName string
	folder   optionValue
	file     optionValue
}

// Name returns the configured task name.
func (operation *DeleteFileOperation) Name() string {
	return operation.taskName
}

// Execute removes the remote file.
func (operation *DeleteFileOperation) Execute(executionContext context.Context, environment *Environment) error {
	folderPath, fileName, resolveError := resolveFolderAndFile(environment, operation.folder, operation.file)
	if resolveError != nil {
		return resolveError
	}
	return environment.RemoteClient.Delete(executionContext, folderPath, fileName)
}

// CreateFolderOperation creates a remote folder.
type CreateFolderOperation struct {
	taskName string
	folder   optionValue
}

// Name returns the configured task name.
func (operation *CreateFolderOperation) Name() string {
	return operation.taskName
}

// Execute creates the remote folder.
func (operation *CreateFolderOperation) Execute(executionContext context.Context, environment *Environment) error {
	folderPath, resolveError := operation.folder.resolve(environment)
	if resolveError != nil {
		return resolveError
	}
	return environment.RemoteClient.CreateFolder(executionContext, folderPath)
}

// RemoveFolderOperation deletes a remote folder.
type RemoveFolderOperation struct {
	taskName string
	folder   optionValue
}

// Name returns the configured task name.
func (operation *RemoveFolderOperation) Name() string {
	return operation.taskName
}

// Execute removes the remote folder.
func (operation *RemoveFolderOperation) Execute(executionContext context.Context, environment *Environment) error {
	folderPath, resolveError := operation.folder.resolve(environment)
	if resolveError != nil {
		return resolveError
	}
	return environment.RemoteClient.RemoveFolder(executionContext, folderPath)
}

func resolveFolderAndFile(environment *Environment, folder optionValue, file optionValue) (string, string, error) {
	folderPath, folderError := folder.resolve(environment)
	if folderError != nil {
		return "", "", folderError
	}
	fileName, fileError := file.resolve(environment)
	if fileError != nil {
		return "", "", fileError
	}
	return folderPath, fileName, nil
}
