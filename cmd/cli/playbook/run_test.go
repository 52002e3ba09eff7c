package playbook_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	playbookcmd "github.com/tyemirov/spx/cmd/cli/playbook"
	"github.com/tyemirov/spx/internal/sharepoint"
)

const (
	testRemoteFolderConstant     = "Shared Documents/ExampleFolder"
	testRemoteFileNameConstant   = "Info.docx"
	testMetadataFixtureConstant  = "{\"size\": 1024,\n  \"author\": \"Alice\"}"
	testCanonicalOutputConstant  = "{\"author\":\"Alice\",\"size\":1024}"
	testPresetNameConstant       = "fetch-metadata"
	testPlaybookFileNameConstant = "playbook.yaml"

	testPlaybookContentTemplateConstant = `vars:
  remote_file_path: %s
  remote_file_name: %s
  local_target_path: %s
playbook:
  - task:
      name: Fetch metadata
      operation: remote-metadata
      with:
        folder: {var: remote_file_path}
        file: {var: remote_file_name}
      register: r_sp_file
  - task:
      name: Write metadata
      operation: write-file
      with:
        source: {result: r_sp_file, field: metadata}
        path: {var: local_target_path}
        permissions: "0644"
`
)

type playbookStubClient struct {
	metadataByFile map[string]string
	metadataCalls  []string
}

func (client *playbookStubClient) ListFolder(_ context.Context, folderPath string) ([]sharepoint.Entry, error) {
	return []sharepoint.Entry{{Kind: sharepoint.EntryKindFile, Name: testRemoteFileNameConstant, ServerRelativeURL: folderPath + "/" + testRemoteFileNameConstant}}, nil
}

func (client *playbookStubClient) FileMetadata(_ context.Context, folderPath string, fileName string) (sharepoint.FileMetadataResult, error) {
	client.metadataCalls = append(client.metadataCalls, folderPath+"/"+fileName)
	metadataDocument, documentFound := client.metadataByFile[fileName]
	if !documentFound {
		return sharepoint.FileMetadataResult{}, errors.New("file not found")
	}
	return sharepoint.FileMetadataResult{Metadata: metadataDocument, StatusCode: 200}, nil
}

func (client *playbookStubClient) Download(_ context.Context, _ string, _ string) ([]byte, error) {
	return nil, errors.New("download not supported")
}

func (client *playbookStubClient) Upload(_ context.Context, _ string, _ string, _ []byte) error {
	return errors.New("upload not supported")
}

func (client *playbookStubClient) Delete(_ context.Context, _ string, _ string) error {
	return errors.New("delete not supported")
}

func (client *playbookStubClient) CreateFolder(_ context.Context, _ string) error {
	return errors.New("create folder not supported")
}

func (client *playbookStubClient) RemoveFolder(_ context.Context, _ string) error {
	return errors.New("remove folder not supported")
}

func writeTestPlaybook(testInstance *testing.T, targetPath string) string {
	testInstance.Helper()

	playbookPath := filepath.Join(testInstance.TempDir(), testPlaybookFileNameConstant)
	playbookContent := fmt.Sprintf(
		testPlaybookContentTemplateConstant,
		testRemoteFolderConstant,
		testRemoteFileNameConstant,
		targetPath,
	)
	require.NoError(testInstance, os.WriteFile(playbookPath, []byte(playbookContent), 0o600))
	return playbookPath
}

func buildPlaybookCommand(testInstance *testing.T, stubClient *playbookStubClient, configuration playbookcmd.CommandConfiguration) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	testInstance.Helper()

	builder := &playbookcmd.CommandBuilder{
		LoggerProvider:        func() *zap.Logger { return zap.NewNop() },
		ConfigurationProvider: func() playbookcmd.CommandConfiguration { return configuration },
		ClientFactory: func(_ sharepoint.Settings, _ *zap.Logger) (sharepoint.Client, error) {
			return stubClient, nil
		},
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	errorBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(errorBuffer)

	return command, outputBuffer, errorBuffer
}

func TestPlaybookCommandRunsConfigurationFile(testInstance *testing.T) {
	stubClient := &playbookStubClient{
		metadataByFile: map[string]string{testRemoteFileNameConstant: testMetadataFixtureConstant},
	}
	targetPath := filepath.Join(testInstance.TempDir(), "meta.json")
	playbookPath := writeTestPlaybook(testInstance, targetPath)

	command, _, errorBuffer := buildPlaybookCommand(testInstance, stubClient, playbookcmd.CommandConfiguration{})
	command.SetArgs([]string{playbookPath})

	require.NoError(testInstance, command.Execute())

	writtenContent, readError := os.ReadFile(targetPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, testCanonicalOutputConstant, string(writtenContent))
	require.Equal(testInstance, []string{testRemoteFolderConstant + "/" + testRemoteFileNameConstant}, stubClient.metadataCalls)
	require.Contains(testInstance, errorBuffer.String(), "total.tasks=2")
}

func TestPlaybookCommandFallsBackToConfiguredPath(testInstance *testing.T) {
	stubClient := &playbookStubClient{
		metadataByFile: map[string]string{testRemoteFileNameConstant: testMetadataFixtureConstant},
	}
	targetPath := filepath.Join(testInstance.TempDir(), "meta.json")
	playbookPath := writeTestPlaybook(testInstance, targetPath)

	command, _, _ := buildPlaybookCommand(testInstance, stubClient, playbookcmd.CommandConfiguration{Playbook: playbookPath})
	command.SetArgs([]string{})

	require.NoError(testInstance, command.Execute())
	require.FileExists(testInstance, targetPath)
}

func TestPlaybookCommandRequiresConfigurationPath(testInstance *testing.T) {
	stubClient := &playbookStubClient{}

	command, _, _ := buildPlaybookCommand(testInstance, stubClient, playbookcmd.CommandConfiguration{})
	command.SetArgs([]string{})

	executionError := command.Execute()
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "playbook configuration path or preset name required")
}

func TestPlaybookCommandHonorsVariableFlagOverrides(testInstance *testing.T) {
	overrideFileName := "Report.docx"
	stubClient := &playbookStubClient{
		metadataByFile: map[string]string{overrideFileName: "{\"author\": \"Bob\"}"},
	}
	targetPath := filepath.Join(testInstance.TempDir(), "meta.json")
	playbookPath := writeTestPlaybook(testInstance, targetPath)

	command, _, _ := buildPlaybookCommand(testInstance, stubClient, playbookcmd.CommandConfiguration{})
	command.SetArgs([]string{playbookPath, "--var", "remote_file_name=" + overrideFileName})

	require.NoError(testInstance, command.Execute())

	writtenContent, readError := os.ReadFile(targetPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "{\"author\":\"Bob\"}", string(writtenContent))
	require.Equal(testInstance, []string{testRemoteFolderConstant + "/" + overrideFileName}, stubClient.metadataCalls)
}

func TestPlaybookCommandRejectsMalformedVariableAssignment(testInstance *testing.T) {
	stubClient := &playbookStubClient{
		metadataByFile: map[string]string{testRemoteFileNameConstant: testMetadataFixtureConstant},
	}
	targetPath := filepath.Join(testInstance.TempDir(), "meta.json")
	playbookPath := writeTestPlaybook(testInstance, targetPath)

	command, _, _ := buildPlaybookCommand(testInstance, stubClient, playbookcmd.CommandConfiguration{})
	command.SetArgs([]string{playbookPath, "--var", "missing-separator"})

	executionError := command.Execute()
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "invalid variable assignment")
}

func TestPlaybookCommandRunsEmbeddedPreset(testInstance *testing.T) {
	stubClient := &playbookStubClient{
		metadataByFile: map[string]string{testRemoteFileNameConstant: testMetadataFixtureConstant},
	}
	workingDirectory := testInstance.TempDir()
	currentDirectory, directoryError := os.Getwd()
	require.NoError(testInstance, directoryError)
	require.NoError(testInstance, os.Chdir(workingDirectory))
	testInstance.Cleanup(func() {
		require.NoError(testInstance, os.Chdir(currentDirectory))
	})

	command, _, _ := buildPlaybookCommand(testInstance, stubClient, playbookcmd.CommandConfiguration{})
	command.SetArgs([]string{testPresetNameConstant})

	require.NoError(testInstance, command.Execute())
	require.FileExists(testInstance, filepath.Join(workingDirectory, "meta.json"))
}

func TestPlaybookCommandListsPresets(testInstance *testing.T) {
	stubClient := &playbookStubClient{}

	command, outputBuffer, _ := buildPlaybookCommand(testInstance, stubClient, playbookcmd.CommandConfiguration{})
	command.SetArgs([]string{"--list-presets"})

	require.NoError(testInstance, command.Execute())
	require.Contains(testInstance, outputBuffer.String(), testPresetNameConstant)
}
