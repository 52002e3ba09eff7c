package cli_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/spx/cmd/cli"
)

const (
	testConfigurationFileNameConstant          = "config.yaml"
	testUserConfigurationDirectoryNameConstant = ".spx"
	testUserHomeEnvironmentNameConstant        = "HOME"
	testSearchPathEnvironmentNameConstant      = "SPX_CONFIG_SEARCH_PATH"
	testSubtestNameTemplateConstant            = "%d_%s"

	testApplicationConfigurationContentConstant = `common:
  log_level: error
  log_format: structured
remote:
  tenant_name: contoso
  site_name: team-site
  tenant_id: tenant-identifier
  client_id: client-identifier
  client_secret: client-secret
  timeout: 45s
journal:
  enabled: true
  path: journal.db
playbook:
  path: playbooks/fetch-metadata.yaml
  variables:
    remote_file_path: Shared Documents/ExampleFolder
`
)

func changeWorkingDirectory(testInstance *testing.T, directoryPath string) {
	testInstance.Helper()

	originalWorkingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	require.NoError(testInstance, os.Chdir(directoryPath))
	testInstance.Cleanup(func() {
		require.NoError(testInstance, os.Chdir(originalWorkingDirectory))
	})
}

func TestApplicationInitializeConfiguration(testInstance *testing.T) {
	configurationDirectory := testInstance.TempDir()
	configurationPath := filepath.Join(configurationDirectory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testApplicationConfigurationContentConstant), 0o600))
	testInstance.Setenv(testSearchPathEnvironmentNameConstant, configurationDirectory)

	application := cli.NewApplication()
	require.NoError(testInstance, application.InitializeForCommand("spx"))

	require.Equal(testInstance, configurationPath, application.ConfigFileUsed())

	remoteSettings := application.RemoteSettings()
	require.Equal(testInstance, "contoso", remoteSettings.TenantName)
	require.Equal(testInstance, "team-site", remoteSettings.SiteName)
	require.Equal(testInstance, "45s", remoteSettings.Timeout.String())

	journalSettings := application.JournalSettings()
	require.True(testInstance, journalSettings.Enabled)
	require.Equal(testInstance, "journal.db", journalSettings.Path)
}

func TestApplicationEnvironmentOverridesConfiguration(testInstance *testing.T) {
	emptyDirectory := testInstance.TempDir()
	testInstance.Setenv(testSearchPathEnvironmentNameConstant, emptyDirectory)
	testInstance.Setenv("SPX_REMOTE_TENANT_NAME", "environment-tenant")
	testInstance.Setenv("SPX_JOURNAL_ENABLED", "true")

	application := cli.NewApplication()
	require.NoError(testInstance, application.InitializeForCommand("spx"))

	require.Equal(testInstance, "environment-tenant", application.RemoteSettings().TenantName)
	require.True(testInstance, application.JournalSettings().Enabled)
}

func TestApplicationConfigurationInitializationCreatesConfiguration(testInstance *testing.T) {
	embeddedConfigurationContent, _ := cli.EmbeddedDefaultConfiguration()
	require.NotEmpty(testInstance, embeddedConfigurationContent)

	testCases := []struct {
		name      string
		arguments []string
		setup     func(*testing.T) string
	}{
		{
			name:      "LocalScope",
			arguments: []string{"--init"},
			setup: func(t *testing.T) string {
				workingDirectory := t.TempDir()
				changeWorkingDirectory(t, workingDirectory)
				return filepath.Join(workingDirectory, testConfigurationFileNameConstant)
			},
		},
		{
			name:      "UserScope",
			arguments: []string{"--init=user"},
			setup: func(t *testing.T) string {
				changeWorkingDirectory(t, t.TempDir())
				homeDirectory := t.TempDir()
				t.Setenv(testUserHomeEnvironmentNameConstant, homeDirectory)
				return filepath.Join(homeDirectory, testUserConfigurationDirectoryNameConstant, testConfigurationFileNameConstant)
			},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(t *testing.T) {
			expectedConfigurationPath := testCase.setup(t)

			originalArguments := os.Args
			os.Args = append([]string{"spx"}, testCase.arguments...)
			t.Cleanup(func() {
				os.Args = originalArguments
			})

			application := cli.NewApplication()
			require.NoError(t, application.Execute())

			fileContent, readError := os.ReadFile(expectedConfigurationPath)
			require.NoError(t, readError)
			require.Equal(t, embeddedConfigurationContent, fileContent)

			fileInformation, statError := os.Stat(expectedConfigurationPath)
			require.NoError(t, statError)
			require.Equal(t, os.FileMode(0o600), fileInformation.Mode().Perm())
		})
	}
}

func TestApplicationConfigurationInitializationForceHandling(testInstance *testing.T) {
	embeddedConfigurationContent, _ := cli.EmbeddedDefaultConfiguration()

	testCases := []struct {
		name        string
		arguments   []string
		expectError bool
	}{
		{name: "ForceRequired", arguments: []string{"--init"}, expectError: true},
		{name: "ForceEnabled", arguments: []string{"--init", "--force"}, expectError: false},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(t *testing.T) {
			workingDirectory := t.TempDir()
			changeWorkingDirectory(t, workingDirectory)

			existingContent := "common:\n  log_level: error\n"
			configurationPath := filepath.Join(workingDirectory, testConfigurationFileNameConstant)
			require.NoError(t, os.WriteFile(configurationPath, []byte(existingContent), 0o600))

			originalArguments := os.Args
			os.Args = append([]string{"spx"}, testCase.arguments...)
			t.Cleanup(func() {
				os.Args = originalArguments
			})

			application := cli.NewApplication()
			executionError := application.Execute()

			fileContent, readError := os.ReadFile(configurationPath)
			require.NoError(t, readError)

			if testCase.expectError {
				require.Error(t, executionError)
				require.Contains(t, executionError.Error(), "already exists")
				require.Equal(t, existingContent, string(fileContent))
				return
			}

			require.NoError(t, executionError)
			require.Equal(t, embeddedConfigurationContent, fileContent)
		})
	}
}
