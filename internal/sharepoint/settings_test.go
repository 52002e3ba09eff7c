package sharepoint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSettingsSanitizeDefaults(testInstance *testing.T) {
	sanitizedSettings := Settings{
		ClientID:     " client ",
		ClientSecret: "secret",
		TenantID:     "tenant-id",
		TenantName:   "contoso",
		SiteName:     "demo",
	}.Sanitize()

	require.Equal(testInstance, "client", sanitizedSettings.ClientID)
	require.Equal(testInstance, "client_credentials", sanitizedSettings.GrantType)
	require.Equal(testInstance, "00000003-0000-0ff1-ce00-000000000000/contoso.sharepoint.com@tenant-id", sanitizedSettings.Resource)
	require.Equal(testInstance, 30*time.Second, sanitizedSettings.Timeout)
	require.Equal(testInstance, "https://contoso.sharepoint.com/sites/demo", sanitizedSettings.siteEndpoint())
	require.Equal(testInstance, "https://accounts.accesscontrol.windows.net/tenant-id/tokens/OAuth/2", sanitizedSettings.tokenEndpoint())
}

func TestSettingsSanitizeEnvironmentFallback(testInstance *testing.T) {
	testInstance.Setenv("SHAREPOINT_CLIENT_ID", "environment-client")
	testInstance.Setenv("SHAREPOINT_TENANT_NAME", "environment-tenant")

	sanitizedSettings := Settings{ClientSecret: "secret", TenantID: "tenant-id", SiteName: "demo"}.Sanitize()

	require.Equal(testInstance, "environment-client", sanitizedSettings.ClientID)
	require.Equal(testInstance, "environment-tenant", sanitizedSettings.TenantName)
}

func TestSettingsValidate(testInstance *testing.T) {
	for _, environmentVariableName := range []string{
		"SHAREPOINT_CLIENT_ID",
		"SHAREPOINT_CLIENT_SECRET",
		"SHAREPOINT_TENANT_ID",
		"SHAREPOINT_TENANT_NAME",
		"SHAREPOINT_SITE_NAME",
	} {
		testInstance.Setenv(environmentVariableName, "")
	}

	testCases := []struct {
		name        string
		settings    Settings
		expectError bool
	}{
		{
			name: "complete_settings_pass",
			settings: Settings{
				ClientID:     "client",
				ClientSecret: "secret",
				TenantID:     "tenant-id",
				TenantName:   "contoso",
				SiteName:     "demo",
			},
			expectError: false,
		},
		{
			name:        "missing_credentials_fail",
			settings:    Settings{TenantID: "tenant-id", TenantName: "contoso", SiteName: "demo"},
			expectError: true,
		},
		{
			name:        "missing_site_coordinates_fail",
			settings:    Settings{ClientID: "client", ClientSecret: "secret", TenantID: "tenant-id"},
			expectError: true,
		},
		{
			name: "explicit_endpoints_replace_coordinates",
			settings: Settings{
				ClientID:     "client",
				ClientSecret: "secret",
				SiteURL:      "http://127.0.0.1:9000",
				TokenURL:     "http://127.0.0.1:9000/token",
			},
			expectError: false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			validationError := testCase.settings.Sanitize().Validate()
			if testCase.expectError {
				require.Error(subtestInstance, validationError)
				return
			}
			require.NoError(subtestInstance, validationError)
		})
	}
}
