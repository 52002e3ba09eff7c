package playbook_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/spx/internal/localfs"
	"github.com/tyemirov/spx/internal/playbook"
	"github.com/tyemirov/spx/internal/sharepoint"
)

type recordedCall struct {
	operation string
	folder    string
	file      string
}

type recordingRemoteClient struct {
	downloadContent []byte
	uploadedContent []byte
	calls           []recordedCall
}

func (client *recordingRemoteClient) ListFolder(executionContext context.Context, folderPath string) ([]sharepoint.Entry, error) {
	client.calls = append(client.calls, recordedCall{operation: "list", folder: folderPath})
	return nil, nil
}

func (client *recordingRemoteClient) FileMetadata(executionContext context.Context, folderPath string, fileName string) (sharepoint.FileMetadataResult, error) {
	client.calls = append(client.calls, recordedCall{operation: "metadata", folder: folderPath, file: fileName})
	return sharepoint.FileMetadataResult{Metadata: "{}", StatusCode: 200}, nil
}

func (client *recordingRemoteClient) Download(executionContext context.Context, folderPath string, fileName string) ([]byte, error) {
	client.calls = append(client.calls, recordedCall{operation: "download", folder: folderPath, file: fileName})
	return client.downloadContent, nil
}

func (client *recordingRemoteClient) Upload(executionContext context.Context, folderPath string, fileName string, content []byte) error {
	client.calls = append(client.calls, recordedCall{operation: "upload", folder: folderPath, file: fileName})
	client.uploadedContent = content
	return nil
}

func (client *recordingRemoteClient) Delete(executionContext context.Context, folderPath string, fileName string) error {
	client.calls = append(client.calls, recordedCall{operation: "delete", folder: folderPath, file: fileName})
	return nil
}

func (client *recordingRemoteClient) CreateFolder(executionContext context.Context, folderPath string) error {
	client.calls = append(client.calls, recordedCall{operation: "mkdir", folder: folderPath})
	return nil
}

func (client *recordingRemoteClient) RemoveFolder(executionContext context.Context, folderPath string) error {
	client.calls = append(client.calls, recordedCall{operation: "rmdir", folder: folderPath})
	return nil
}

func runOperations(testInstance *testing.T, configuration playbook.Configuration, remoteClient sharepoint.Client) playbook.ExecutionOutcome {
	testInstance.Helper()

	operations, buildError := playbook.BuildOperations(configuration, nil)
	require.NoError(testInstance, buildError)

	executor := playbook.NewExecutor(operations, playbook.Dependencies{
		RemoteClient: remoteClient,
		LocalWriter:  localfs.NewOSWriter(),
		Output:       &bytes.Buffer{},
		Errors:       &bytes.Buffer{},
	})
	outcome, executionError := executor.Execute(context.Background(), playbook.RuntimeOptions{})
	require.NoError(testInstance, executionError)
	return outcome
}

func TestRemoteContentLifecycleOperations(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	sourcePath := filepath.Join(temporaryDirectory, "report.txt")
	downloadPath := filepath.Join(temporaryDirectory, "copy.txt")
	require.NoError(testInstance, os.WriteFile(sourcePath, []byte("quarterly report"), 0o644))

	remoteClient := &recordingRemoteClient{downloadContent: []byte("quarterly report")}
	configuration := playbook.Configuration{
		Variables: map[string]string{"staging_folder": "Shared Documents/Staging"},
		Tasks: []playbook.TaskConfiguration{
			{
				Operation: playbook.OperationTypeRemoteMkdir,
				Options:   map[string]any{"folder": map[string]any{"var": "staging_folder"}},
			},
			{
				Operation: playbook.OperationTypeRemoteUpload,
				Options: map[string]any{
					"folder": map[string]any{"var": "staging_folder"},
					"file":   "report.txt",
					"source": sourcePath,
				},
			},
			{
				Operation: playbook.OperationTypeRemoteDownload,
				Options: map[string]any{
					"folder": map[string]any{"var": "staging_folder"},
					"file":   "report.txt",
					"path":   downloadPath,
				},
				Register: "r_download",
			},
			{
				Operation: playbook.OperationTypeRemoteDelete,
				Options: map[string]any{
					"folder": map[string]any{"var": "staging_folder"},
					"file":   "report.txt",
				},
			},
			{
				Operation: playbook.OperationTypeRemoteRmdir,
				Options:   map[string]any{"folder": map[string]any{"var": "staging_folder"}},
			},
		},
	}

	outcome := runOperations(testInstance, configuration, remoteClient)
	require.Len(testInstance, outcome.TaskOutcomes, 5)

	require.Equal(testInstance, []recordedCall{
		{operation: "mkdir", folder: "Shared Documents/Staging"},
		{operation: "upload", folder: "Shared Documents/Staging", file: "report.txt"},
		{operation: "download", folder: "Shared Documents/Staging", file: "report.txt"},
		{operation: "delete", folder: "Shared Documents/Staging", file: "report.txt"},
		{operation: "rmdir", folder: "Shared Documents/Staging"},
	}, remoteClient.calls)
	require.Equal(testInstance, []byte("quarterly report"), remoteClient.uploadedContent)

	downloadedContent, readError := os.ReadFile(downloadPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "quarterly report", string(downloadedContent))
}

func TestWriteFileRawFormatPreservesContent(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	targetPath := filepath.Join(temporaryDirectory, "notes.txt")

	configuration := playbook.Configuration{
		Tasks: []playbook.TaskConfiguration{
			{
				Operation: playbook.OperationTypeWriteFile,
				Options: map[string]any{
					"source": "not json at all",
					"path":   targetPath,
					"format": "raw",
				},
			},
		},
	}

	runOperations(testInstance, configuration, &recordingRemoteClient{})

	writtenContent, readError := os.ReadFile(targetPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "not json at all", string(writtenContent))

	fileInformation, statError := os.Stat(targetPath)
	require.NoError(testInstance, statError)
	require.Equal(testInstance, os.FileMode(0o644), fileInformation.Mode().Perm())
}

func TestDownloadRegistersContentForLaterTasks(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	downloadPath := filepath.Join(temporaryDirectory, "original.json")
	copyPath := filepath.Join(temporaryDirectory, "canonical.json")

	remoteClient := &recordingRemoteClient{downloadContent: []byte(`{"z":1,"a":2}`)}
	configuration := playbook.Configuration{
		Tasks: []playbook.TaskConfiguration{
			{
				Operation: playbook.OperationTypeRemoteDownload,
				Options: map[string]any{
					"folder": "Shared Documents",
					"file":   "original.json",
					"path":   downloadPath,
				},
				Register: "r_download",
			},
			{
				Operation: playbook.OperationTypeWriteFile,
				Options: map[string]any{
					"source": map[string]any{"result": "r_download", "field": "content"},
					"path":   copyPath,
				},
			},
		},
	}

	runOperations(testInstance, configuration, remoteClient)

	canonicalContent, readError := os.ReadFile(copyPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, `{"a":2,"z":1}`, string(canonicalContent))
}
