package sharepoint

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultGrantTypeConstant        = "client_credentials"
	defaultRequestTimeoutConstant   = 30 * time.Second
	defaultResourceTemplateConstant = "00000003-0000-0ff1-ce00-000000000000/%s.sharepoint.com@%s"
	siteURLTemplateConstant         = "https://%s.sharepoint.com/sites/%s"
	tokenURLTemplateConstant        = "https://accounts.accesscontrol.windows.net/%s/tokens/OAuth/2"

	clientIDEnvironmentVariableConstant     = "SHAREPOINT_CLIENT_ID"
	clientSecretEnvironmentVariableConstant = "SHAREPOINT_CLIENT_SECRET"
	tenantIDEnvironmentVariableConstant     = "SHAREPOINT_TENANT_ID"
	tenantNameEnvironmentVariableConstant   = "SHAREPOINT_TENANT_NAME"
	siteNameEnvironmentVariableConstant     = "SHAREPOINT_SITE_NAME"

	missingClientCredentialsMessageConstant = "sharepoint client requires client_id and client_secret"
	missingSiteCoordinatesMessageConstant   = "sharepoint client requires tenant_name and site_name (or an explicit site URL)"
	missingTenantIdentifierMessageConstant  = "sharepoint client requires tenant_id (or an explicit token URL)"
)

// Entry describes one immediate child of a remote folder.
type Entry struct {
	Kind              string `json:"Kind"`
	Name              string `json:"Name"`
	ServerRelativeURL string `json:"ServerRelativeUrl"`
	TimeCreated       string `json:"TimeCreated"`
	TimeLastModified  string `json:"TimeLastModified"`
}

// Entry kinds reported by folder listings.
const (
	EntryKindFile   = "files"
	EntryKindFolder = "folders"
)

// FileMetadataResult carries the metadata document returned for a remote file.
type FileMetadataResult struct {
	// Metadata holds the raw JSON-encoded list item document.
	Metadata   string
	StatusCode int
}

// Settings configures the SharePoint REST client.
type Settings struct {
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	TenantID     string        `mapstructure:"tenant_id"`
	TenantName   string        `mapstructure:"tenant_name"`
	SiteName     string        `mapstructure:"site_name"`
	Resource     string        `mapstructure:"resource"`
	GrantType    string        `mapstructure:"grant_type"`
	Timeout      time.Duration `mapstructure:"timeout"`
	// SiteURL overrides the derived https://<tenant>.sharepoint.com/sites/<site> endpoint.
	SiteURL string `mapstructure:"site_url"`
	// TokenURL overrides the derived accesscontrol token endpoint.
	TokenURL string `mapstructure:"token_url"`
}

// Sanitize trims settings, applies SHAREPOINT_* environment fallbacks, and fills defaults.
func (settings Settings) Sanitize() Settings {
	sanitized := settings
	sanitized.ClientID = fallbackValue(settings.ClientID, clientIDEnvironmentVariableConstant)
	sanitized.ClientSecret = fallbackValue(settings.ClientSecret, clientSecretEnvironmentVariableConstant)
	sanitized.TenantID = fallbackValue(settings.TenantID, tenantIDEnvironmentVariableConstant)
	sanitized.TenantName = fallbackValue(settings.TenantName, tenantNameEnvironmentVariableConstant)
	sanitized.SiteName = fallbackValue(settings.SiteName, siteNameEnvironmentVariableConstant)
	sanitized.Resource = strings.TrimSpace(settings.Resource)
	sanitized.GrantType = strings.TrimSpace(settings.GrantType)
	sanitized.SiteURL = strings.TrimSuffix(strings.TrimSpace(settings.SiteURL), "/")
	sanitized.TokenURL = strings.TrimSpace(settings.TokenURL)

	if len(sanitized.GrantType) == 0 {
		sanitized.GrantType = defaultGrantTypeConstant
	}
	if len(sanitized.Resource) == 0 && len(sanitized.TenantName) > 0 && len(sanitized.TenantID) > 0 {
		sanitized.Resource = fmt.Sprintf(defaultResourceTemplateConstant, sanitized.TenantName, sanitized.TenantID)
	}
	if sanitized.Timeout <= 0 {
		sanitized.Timeout = defaultRequestTimeoutConstant
	}
	return sanitized
}

// Validate confirms the settings can produce site and token endpoints.
func (settings Settings) Validate() error {
	if len(settings.ClientID) == 0 || len(settings.ClientSecret) == 0 {
		return errors.New(missingClientCredentialsMessageConstant)
	}
	if len(settings.SiteURL) == 0 && (len(settings.TenantName) == 0 || len(settings.SiteName) == 0) {
		return errors.New(missingSiteCoordinatesMessageConstant)
	}
	if len(settings.TokenURL) == 0 && len(settings.TenantID) == 0 {
		return errors.New(missingTenantIdentifierMessageConstant)
	}
	return nil
}

func (settings Settings) siteEndpoint() string {
	if len(settings.SiteURL) > 0 {
		return settings.SiteURL
	}
	return fmt.Sprintf(siteURLTemplateConstant, settings.TenantName, settings.SiteName)
}

func (settings Settings) tokenEndpoint() string {
	if len(settings.TokenURL) > 0 {
		return settings.TokenURL
	}
	return fmt.Sprintf(tokenURLTemplateConstant, settings.TenantID)
}

func fallbackValue(configured string, environmentVariableName string) string {
	trimmed := strings.TrimSpace(configured)
	if len(trimmed) > 0 {
		return trimmed
	}
	return strings.TrimSpace(os.Getenv(environmentVariableName))
}
