package sharepoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/tyemirov/spx/internal/taskerrors"
)

const (
	authorizationHeaderConstant = "Authorization"
	acceptHeaderConstant        = "Accept"
	contentTypeHeaderConstant   = "Content-Type"
	httpMethodHeaderConstant    = "X-HTTP-Method"

	bearerTokenTemplateConstant   = "Bearer %s"
	verboseJSONContentConstant    = "application/json;odata=verbose"
	nometadataJSONAcceptConstant  = "application/json;odata=nometadata"
	formContentTypeConstant       = "application/x-www-form-urlencoded"
	deleteMethodOverrideConstant  = "DELETE"

	listEndpointTemplateConstant     = "%s/_api/web/GetFolderByServerRelativeUrl('%s')/%s"
	metadataEndpointTemplateConstant = "%s/_api/web/GetFileByServerRelativeUrl('%s/%s')/ListItemAllFields"
	downloadEndpointTemplateConstant = "%s/_api/web/GetFileByServerRelativeUrl('%s/%s')/$value"
	uploadEndpointTemplateConstant   = "%s/_api/web/GetFolderByServerRelativeURL('%s')/Files/add(url='%s',overwrite=true)"
	deleteEndpointTemplateConstant   = "%s/_api/web/GetFileByServerRelativeUrl('%s/%s')"
	foldersEndpointTemplateConstant  = "%s/_api/web/folders"
	rmdirEndpointTemplateConstant    = "%s/_api/web/GetFolderByServerRelativeUrl('%s')"

	folderMetadataTypeConstant    = "SP.Folder"
	sitesPathPrefixConstant       = "/sites/"
	remoteSubjectSeparatorConstant = "/"

	requestTransportTemplateConstant = "request to %s failed: %w"
	responseReadTemplateConstant     = "reading response from %s failed: %w"
	responseStatusTemplateConstant   = "remote returned status %d for %s"
	listingDecodeTemplateConstant    = "decoding %s listing failed: %w"

	listRequestDebugMessageConstant = "sharepoint list request"
	fileRequestDebugMessageConstant = "sharepoint file request"

	folderFieldConstant = "folder"
	kindFieldConstant   = "kind"
	fileFieldConstant   = "file"
	statusFieldConstant = "status"
)

// Client exposes the remote content operations used by playbook tasks.
type Client interface {
	ListFolder(executionContext context.Context, folderPath string) ([]Entry, error)
	FileMetadata(executionContext context.Context, folderPath string, fileName string) (FileMetadataResult, error)
	Download(executionContext context.Context, folderPath string, fileName string) ([]byte, error)
	Upload(executionContext context.Context, folderPath string, fileName string, content []byte) error
	Delete(executionContext context.Context, folderPath string, fileName string) error
	CreateFolder(executionContext context.Context, folderPath string) error
	RemoveFolder(executionContext context.Context, folderPath string) error
}

// RESTClient talks to the SharePoint REST API using client-credentials tokens.
type RESTClient struct {
	settings   Settings
	httpClient *http.Client
	tokens     *tokenSource
	logger     *zap.Logger
}

// NewRESTClient sanitizes and validates the provided settings and builds a client.
func NewRESTClient(settings Settings, logger *zap.Logger) (*RESTClient, error) {
	sanitizedSettings := settings.Sanitize()
	if validationError := sanitizedSettings.Validate(); validationError != nil {
		return nil, validationError
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := &http.Client{Timeout: sanitizedSettings.Timeout}
	return &RESTClient{
		settings:   sanitizedSettings,
		httpClient: httpClient,
		tokens:     newTokenSource(sanitizedSettings, httpClient),
		logger:     logger,
	}, nil
}

var _ Client = (*RESTClient)(nil)

type folderListingEnvelope struct {
	Value []Entry `json:"value"`
}

// ListFolder returns the files and folders directly inside folderPath. File
// entries precede folder entries and each group preserves remote order.
func (client *RESTClient) ListFolder(executionContext context.Context, folderPath string) ([]Entry, error) {
	// The listing endpoint resolves library-relative paths against the site
	// web itself, so the folder path is passed through as given.
	normalizedFolder := strings.TrimSpace(folderPath)
	collectedEntries := []Entry{}
	for _, listingKind := range []string{EntryKindFile, EntryKindFolder} {
		listingURL := fmt.Sprintf(listEndpointTemplateConstant, client.settings.siteEndpoint(), normalizedFolder, listingKind)
		client.logger.Debug(listRequestDebugMessageConstant,
			zap.String(folderFieldConstant, normalizedFolder),
			zap.String(kindFieldConstant, listingKind),
		)

		responseBody, requestError := client.authorizedRequest(executionContext, requestSpecification{
			method:       http.MethodGet,
			requestURL:   listingURL,
			acceptHeader: nometadataJSONAcceptConstant,
			operation:    taskerrors.OperationRemoteList,
			subject:      folderPath,
		})
		if requestError != nil {
			return nil, requestError
		}

		listing := folderListingEnvelope{}
		if decodeError := json.Unmarshal(responseBody, &listing); decodeError != nil {
			return nil, taskerrors.Wrap(
				taskerrors.OperationRemoteList,
				folderPath,
				taskerrors.ErrRemoteRequest,
				fmt.Errorf(listingDecodeTemplateConstant, listingKind, decodeError),
			)
		}
		for _, listedEntry := range listing.Value {
			listedEntry.Kind = listingKind
			collectedEntries = append(collectedEntries, listedEntry)
		}
	}
	return collectedEntries, nil
}

// FileMetadata retrieves the list item document for a single remote file.
func (client *RESTClient) FileMetadata(executionContext context.Context, folderPath string, fileName string) (FileMetadataResult, error) {
	metadataURL := fmt.Sprintf(
		metadataEndpointTemplateConstant,
		client.settings.siteEndpoint(),
		client.siteRelativeFolder(folderPath),
		fileName,
	)
	client.logger.Debug(fileRequestDebugMessageConstant,
		zap.String(folderFieldConstant, folderPath),
		zap.String(fileFieldConstant, fileName),
	)

	responseBody, requestError := client.authorizedRequest(executionContext, requestSpecification{
		method:       http.MethodGet,
		requestURL:   metadataURL,
		acceptHeader: verboseJSONContentConstant,
		operation:    taskerrors.OperationRemoteMetadata,
		subject:      client.remoteSubject(folderPath, fileName),
	})
	if requestError != nil {
		return FileMetadataResult{}, requestError
	}
	return FileMetadataResult{Metadata: string(responseBody), StatusCode: http.StatusOK}, nil
}

// Download fetches the raw content of a remote file.
func (client *RESTClient) Download(executionContext context.Context, folderPath string, fileName string) ([]byte, error) {
	downloadURL := fmt.Sprintf(
		downloadEndpointTemplateConstant,
		client.settings.siteEndpoint(),
		client.siteRelativeFolder(folderPath),
		fileName,
	)
	responseBody, requestError := client.authorizedRequest(executionContext, requestSpecification{
		method:       http.MethodGet,
		requestURL:   downloadURL,
		acceptHeader: verboseJSONContentConstant,
		operation:    taskerrors.OperationRemoteDownload,
		subject:      client.remoteSubject(folderPath, fileName),
	})
	if requestError != nil {
		return nil, requestError
	}
	return responseBody, nil
}

// Upload stores content as fileName inside folderPath, overwriting any
// existing file with the same name.
func (client *RESTClient) Upload(executionContext context.Context, folderPath string, fileName string, content []byte) error {
	uploadURL := fmt.Sprintf(
		uploadEndpointTemplateConstant,
		client.settings.siteEndpoint(),
		client.siteRelativeFolder(folderPath),
		fileName,
	)
	_, requestError := client.authorizedRequest(executionContext, requestSpecification{
		method:       http.MethodPost,
		requestURL:   uploadURL,
		acceptHeader: verboseJSONContentConstant,
		requestBody:  content,
		operation:    taskerrors.OperationRemoteUpload,
		subject:      client.remoteSubject(folderPath, fileName),
	})
	return requestError
}

// Delete removes a remote file.
func (client *RESTClient) Delete(executionContext context.Context, folderPath string, fileName string) error {
	deleteURL := fmt.Sprintf(
		deleteEndpointTemplateConstant,
		client.settings.siteEndpoint(),
		client.siteRelativeFolder(folderPath),
		fileName,
	)
	_, requestError := client.authorizedRequest(executionContext, requestSpecification{
		method:         http.MethodPost,
		requestURL:     deleteURL,
		acceptHeader:   verboseJSONContentConstant,
		methodOverride: deleteMethodOverrideConstant,
		operation:      taskerrors.OperationRemoteDelete,
		subject:        client.remoteSubject(folderPath, fileName),
	})
	return requestError
}

// CreateFolder creates a folder at the site-relative folderPath.
func (client *RESTClient) CreateFolder(executionContext context.Context, folderPath string) error {
	folderPayload := map[string]any{
		"__metadata":        map[string]any{"type": folderMetadataTypeConstant},
		"ServerRelativeUrl": client.siteRelativeFolder(folderPath),
	}
	encodedPayload, encodeError := json.Marshal(folderPayload)
	if encodeError != nil {
		return taskerrors.Wrap(taskerrors.OperationRemoteMakeFolder, folderPath, taskerrors.ErrRemoteRequest, encodeError)
	}

	createURL := fmt.Sprintf(foldersEndpointTemplateConstant, client.settings.siteEndpoint())
	_, requestError := client.authorizedRequest(executionContext, requestSpecification{
		method:       http.MethodPost,
		requestURL:   createURL,
		acceptHeader: verboseJSONContentConstant,
		contentType:  verboseJSONContentConstant,
		requestBody:  encodedPayload,
		operation:    taskerrors.OperationRemoteMakeFolder,
		subject:      folderPath,
	})
	return requestError
}

// RemoveFolder deletes the folder at the site-relative folderPath.
func (client *RESTClient) RemoveFolder(executionContext context.Context, folderPath string) error {
	removeURL := fmt.Sprintf(
		rmdirEndpointTemplateConstant,
		client.settings.siteEndpoint(),
		client.siteRelativeFolder(folderPath),
	)
	_, requestError := client.authorizedRequest(executionContext, requestSpecification{
		method:         http.MethodPost,
		requestURL:     removeURL,
		acceptHeader:   verboseJSONContentConstant,
		methodOverride: deleteMethodOverrideConstant,
		operation:      taskerrors.OperationRemoteRemoveFolder,
		subject:        folderPath,
	})
	return requestError
}

type requestSpecification struct {
	method         string
	requestURL     string
	acceptHeader   string
	contentType    string
	methodOverride string
	requestBody    []byte
	operation      taskerrors.Operation
	subject        string
}

func (client *RESTClient) authorizedRequest(executionContext context.Context, specification requestSpecification) ([]byte, error) {
	bearerToken, tokenError := client.tokens.BearerToken(executionContext)
	if tokenError != nil {
		return nil, tokenError
	}

	var bodyReader io.Reader
	if specification.requestBody != nil {
		bodyReader = bytes.NewReader(specification.requestBody)
	}
	httpRequest, requestError := http.NewRequestWithContext(executionContext, specification.method, specification.requestURL, bodyReader)
	if requestError != nil {
		return nil, taskerrors.Wrap(specification.operation, specification.subject, taskerrors.ErrRemoteRequest, requestError)
	}
	httpRequest.Header.Set(authorizationHeaderConstant, fmt.Sprintf(bearerTokenTemplateConstant, bearerToken))
	httpRequest.Header.Set(acceptHeaderConstant, specification.acceptHeader)
	if len(specification.contentType) > 0 {
		httpRequest.Header.Set(contentTypeHeaderConstant, specification.contentType)
	}
	if len(specification.methodOverride) > 0 {
		httpRequest.Header.Set(httpMethodHeaderConstant, specification.methodOverride)
	}

	httpResponse, transportError := client.httpClient.Do(httpRequest)
	if transportError != nil {
		return nil, taskerrors.Wrap(
			specification.operation,
			specification.subject,
			taskerrors.ErrRemoteAccess,
			fmt.Errorf(requestTransportTemplateConstant, specification.requestURL, transportError),
		)
	}
	defer func() {
		_ = httpResponse.Body.Close()
	}()

	responseBody, readError := io.ReadAll(httpResponse.Body)
	if readError != nil {
		return nil, taskerrors.Wrap(
			specification.operation,
			specification.subject,
			taskerrors.ErrRemoteRequest,
			fmt.Errorf(responseReadTemplateConstant, specification.requestURL, readError),
		)
	}
	if classificationError := client.classifyStatus(specification, httpResponse.StatusCode); classificationError != nil {
		return nil, classificationError
	}
	return responseBody, nil
}

// classifyStatus maps non-success HTTP statuses onto the error taxonomy.
func (client *RESTClient) classifyStatus(specification requestSpecification, statusCode int) error {
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return nil
	}

	client.logger.Debug(fileRequestDebugMessageConstant,
		zap.String(fileFieldConstant, specification.subject),
		zap.Int(statusFieldConstant, statusCode),
	)

	statusDetail := fmt.Errorf(responseStatusTemplateConstant, statusCode, specification.subject)
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return taskerrors.Wrap(specification.operation, specification.subject, taskerrors.ErrRemoteAccess, statusDetail)
	case http.StatusNotFound:
		return taskerrors.Wrap(specification.operation, specification.subject, taskerrors.ErrRemoteNotFound, statusDetail)
	default:
		return taskerrors.Wrap(specification.operation, specification.subject, taskerrors.ErrRemoteRequest, statusDetail)
	}
}

// siteRelativeFolder prefixes the configured site path so callers can pass
// folder paths relative to the document library root.
func (client *RESTClient) siteRelativeFolder(folderPath string) string {
	trimmedFolder := strings.Trim(strings.TrimSpace(folderPath), "/")
	if len(client.settings.SiteName) == 0 {
		return "/" + trimmedFolder
	}
	return sitesPathPrefixConstant + client.settings.SiteName + "/" + trimmedFolder
}

// remoteSubject renders a folder/file pair for error reporting.
func (client *RESTClient) remoteSubject(folderPath string, fileName string) string {
	return strings.Trim(strings.TrimSpace(folderPath), "/") + remoteSubjectSeparatorConstant + fileName
}
