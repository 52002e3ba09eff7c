// Package sharepointtest provides an in-process SharePoint REST fixture for tests.
package sharepointtest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tyemirov/spx/internal/sharepoint"
)

const (
	tokenPathConstant          = "/token"
	fixtureAccessTokenConstant = "fixture-access-token"
	fixtureSiteNameConstant    = "fixture-site"
	fixtureClientIDConstant    = "fixture-client"
	fixtureSecretConstant      = "fixture-secret"

	fixtureSitePathPrefixConstant = "/sites/" + fixtureSiteNameConstant

	authorizationHeaderConstant  = "Authorization"
	httpMethodHeaderConstant     = "X-HTTP-Method"
	expectedBearerHeaderConstant = "Bearer " + fixtureAccessTokenConstant

	folderSelectorPrefixConstant  = "getfolderbyserverrelativeurl('"
	fileSelectorPrefixConstant    = "getfilebyserverrelativeurl('"
	selectorSuffixConstant        = "')"
	uploadSegmentMarkerConstant   = "/files/add(url='"
	listFilesSuffixConstant       = "')/files"
	listFoldersSuffixConstant     = "')/folders"
	metadataSuffixConstant        = "')/listitemallfields"
	downloadSuffixConstant        = "')/$value"
	foldersCollectionPathConstant = "/_api/web/folders"

	fixtureTimeCreatedConstant  = "2024-03-01T09:00:00Z"
	fixtureTimeModifiedConstant = "2024-03-02T10:30:00Z"
)

// FileFixture is one remote file held by the fake server.
type FileFixture struct {
	Content  []byte
	Metadata string
}

type folderFixture struct {
	fileNames    []string
	childFolders []string
}

// Server emulates the subset of the SharePoint REST API the client exercises.
type Server struct {
	httpServer *httptest.Server

	mutex          sync.Mutex
	files          map[string]FileFixture
	folders        map[string]*folderFixture
	forcedStatuses map[string]int
	tokenStatus    int
	tokenRequests  int
}

// NewServer starts the fixture server. Callers must Close it.
func NewServer() *Server {
	gin.SetMode(gin.TestMode)
	fixtureServer := &Server{
		files:          map[string]FileFixture{},
		folders:        map[string]*folderFixture{},
		forcedStatuses: map[string]int{},
		tokenStatus:    http.StatusOK,
	}

	engine := gin.New()
	engine.POST(tokenPathConstant, fixtureServer.handleToken)
	engine.NoRoute(fixtureServer.handleAPI)
	fixtureServer.httpServer = httptest.NewServer(engine)
	return fixtureServer
}

// Close shuts the fixture server down.
func (server *Server) Close() {
	server.httpServer.Close()
}

// ClientSettings returns settings pointing the REST client at this fixture.
func (server *Server) ClientSettings() sharepoint.Settings {
	return sharepoint.Settings{
		ClientID:     fixtureClientIDConstant,
		ClientSecret: fixtureSecretConstant,
		SiteName:     fixtureSiteNameConstant,
		SiteURL:      server.httpServer.URL,
		TokenURL:     server.httpServer.URL + tokenPathConstant,
		Timeout:      5 * time.Second,
	}
}

// AddFolder registers an empty folder at the given server-relative path.
func (server *Server) AddFolder(serverRelativePath string) {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	server.ensureFolderLocked(normalizePath(serverRelativePath))
}

// AddFile registers a file and ensures its parent folder exists.
func (server *Server) AddFile(serverRelativePath string, fixture FileFixture) {
	normalizedPath := normalizePath(serverRelativePath)
	parentPath, fileName := splitParent(normalizedPath)

	server.mutex.Lock()
	defer server.mutex.Unlock()
	server.files[normalizedPath] = fixture
	parentFolder := server.ensureFolderLocked(parentPath)
	parentFolder.fileNames = append(parentFolder.fileNames, fileName)
}

// ForceStatus makes every request whose path contains pathFragment answer
// with the given HTTP status.
func (server *Server) ForceStatus(pathFragment string, statusCode int) {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	server.forcedStatuses[strings.ToLower(pathFragment)] = statusCode
}

// FailTokenRequests makes the token endpoint answer with the given status.
func (server *Server) FailTokenRequests(statusCode int) {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	server.tokenStatus = statusCode
}

// TokenRequestCount reports how many token requests the fixture served.
func (server *Server) TokenRequestCount() int {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	return server.tokenRequests
}

// HasFile reports whether a file exists at the server-relative path.
func (server *Server) HasFile(serverRelativePath string) bool {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	_, fileExists := server.files[normalizePath(serverRelativePath)]
	return fileExists
}

// HasFolder reports whether a folder exists at the server-relative path.
func (server *Server) HasFolder(serverRelativePath string) bool {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	_, folderExists := server.folders[normalizePath(serverRelativePath)]
	return folderExists
}

func (server *Server) handleToken(requestContext *gin.Context) {
	server.mutex.Lock()
	server.tokenRequests++
	tokenStatus := server.tokenStatus
	server.mutex.Unlock()

	if tokenStatus != http.StatusOK {
		requestContext.JSON(tokenStatus, gin.H{"error": "invalid_client"})
		return
	}
	requestContext.JSON(http.StatusOK, gin.H{
		"access_token": fixtureAccessTokenConstant,
		"expires_on":   fmt.Sprintf("%d", time.Now().Add(time.Hour).Unix()),
	})
}

func (server *Server) handleAPI(requestContext *gin.Context) {
	if requestContext.GetHeader(authorizationHeaderConstant) != expectedBearerHeaderConstant {
		requestContext.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	requestPath := requestContext.Request.URL.Path
	loweredPath := strings.ToLower(requestPath)

	server.mutex.Lock()
	for pathFragment, forcedStatus := range server.forcedStatuses {
		if strings.Contains(loweredPath, pathFragment) {
			server.mutex.Unlock()
			requestContext.JSON(forcedStatus, gin.H{"error": "forced status"})
			return
		}
	}
	server.mutex.Unlock()

	switch {
	case strings.HasSuffix(loweredPath, listFilesSuffixConstant):
		server.handleListing(requestContext, requestPath, true)
	case strings.HasSuffix(loweredPath, listFoldersSuffixConstant):
		server.handleListing(requestContext, requestPath, false)
	case strings.HasSuffix(loweredPath, metadataSuffixConstant):
		server.handleMetadata(requestContext, requestPath)
	case strings.HasSuffix(loweredPath, downloadSuffixConstant):
		server.handleDownload(requestContext, requestPath)
	case strings.Contains(loweredPath, uploadSegmentMarkerConstant):
		server.handleUpload(requestContext, requestPath)
	case requestContext.Request.Method == http.MethodPost && loweredPath == foldersCollectionPathConstant:
		server.handleCreateFolder(requestContext)
	case requestContext.GetHeader(httpMethodHeaderConstant) == "DELETE":
		server.handleDelete(requestContext, requestPath, loweredPath)
	default:
		requestContext.JSON(http.StatusNotFound, gin.H{"error": "unsupported fixture route"})
	}
}

func (server *Server) handleListing(requestContext *gin.Context, requestPath string, listFiles bool) {
	folderPath := normalizePath(extractSelector(requestPath, folderSelectorPrefixConstant))

	server.mutex.Lock()
	defer server.mutex.Unlock()
	listedFolder, folderExists := server.folders[folderPath]
	if !folderExists {
		requestContext.JSON(http.StatusNotFound, gin.H{"error": "folder not found"})
		return
	}

	listedEntries := []gin.H{}
	if listFiles {
		for _, fileName := range listedFolder.fileNames {
			listedEntries = append(listedEntries, gin.H{
				"Name":              fileName,
				"ServerRelativeUrl": siteRelativeURL(folderPath + "/" + fileName),
				"TimeCreated":       fixtureTimeCreatedConstant,
				"TimeLastModified":  fixtureTimeModifiedConstant,
			})
		}
	} else {
		for _, childName := range listedFolder.childFolders {
			listedEntries = append(listedEntries, gin.H{
				"Name":              childName,
				"ServerRelativeUrl": siteRelativeURL(folderPath + "/" + childName),
				"TimeCreated":       fixtureTimeCreatedConstant,
				"TimeLastModified":  fixtureTimeModifiedConstant,
			})
		}
	}
	requestContext.JSON(http.StatusOK, gin.H{"value": listedEntries})
}

func (server *Server) handleMetadata(requestContext *gin.Context, requestPath string) {
	filePath := normalizePath(extractSelector(requestPath, fileSelectorPrefixConstant))

	server.mutex.Lock()
	defer server.mutex.Unlock()
	storedFile, fileExists := server.files[filePath]
	if !fileExists {
		requestContext.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	requestContext.Data(http.StatusOK, "application/json;odata=verbose", []byte(storedFile.Metadata))
}

func (server *Server) handleDownload(requestContext *gin.Context, requestPath string) {
	filePath := normalizePath(extractSelector(requestPath, fileSelectorPrefixConstant))

	server.mutex.Lock()
	defer server.mutex.Unlock()
	storedFile, fileExists := server.files[filePath]
	if !fileExists {
		requestContext.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	requestContext.Data(http.StatusOK, "application/octet-stream", storedFile.Content)
}

func (server *Server) handleUpload(requestContext *gin.Context, requestPath string) {
	folderPath := normalizePath(extractSelector(requestPath, folderSelectorPrefixConstant))
	fileName := extractUploadName(requestPath)
	if len(fileName) == 0 {
		requestContext.JSON(http.StatusBadRequest, gin.H{"error": "missing upload name"})
		return
	}
	uploadedContent, readError := requestContext.GetRawData()
	if readError != nil {
		requestContext.JSON(http.StatusBadRequest, gin.H{"error": readError.Error()})
		return
	}

	server.mutex.Lock()
	defer server.mutex.Unlock()
	if _, folderExists := server.folders[folderPath]; !folderExists {
		requestContext.JSON(http.StatusNotFound, gin.H{"error": "folder not found"})
		return
	}
	filePath := folderPath + "/" + fileName
	if _, fileExists := server.files[filePath]; !fileExists {
		parentFolder := server.ensureFolderLocked(folderPath)
		parentFolder.fileNames = append(parentFolder.fileNames, fileName)
	}
	server.files[filePath] = FileFixture{Content: uploadedContent}
	requestContext.JSON(http.StatusOK, gin.H{"ServerRelativeUrl": siteRelativeURL(filePath)})
}

func (server *Server) handleCreateFolder(requestContext *gin.Context) {
	folderRequest := struct {
		ServerRelativeURL string `json:"ServerRelativeUrl"`
	}{}
	if bindError := requestContext.ShouldBindJSON(&folderRequest); bindError != nil {
		requestContext.JSON(http.StatusBadRequest, gin.H{"error": bindError.Error()})
		return
	}

	server.mutex.Lock()
	defer server.mutex.Unlock()
	server.ensureFolderLocked(normalizePath(folderRequest.ServerRelativeURL))
	requestContext.JSON(http.StatusCreated, gin.H{"ServerRelativeUrl": folderRequest.ServerRelativeURL})
}

func (server *Server) handleDelete(requestContext *gin.Context, requestPath string, loweredPath string) {
	server.mutex.Lock()
	defer server.mutex.Unlock()

	if strings.Contains(loweredPath, fileSelectorPrefixConstant) {
		filePath := normalizePath(extractSelector(requestPath, fileSelectorPrefixConstant))
		if _, fileExists := server.files[filePath]; !fileExists {
			requestContext.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		delete(server.files, filePath)
		parentPath, fileName := splitParent(filePath)
		if parentFolder, folderExists := server.folders[parentPath]; folderExists {
			parentFolder.fileNames = removeName(parentFolder.fileNames, fileName)
		}
		requestContext.Status(http.StatusOK)
		return
	}

	folderPath := normalizePath(extractSelector(requestPath, folderSelectorPrefixConstant))
	if _, folderExists := server.folders[folderPath]; !folderExists {
		requestContext.JSON(http.StatusNotFound, gin.H{"error": "folder not found"})
		return
	}
	delete(server.folders, folderPath)
	parentPath, folderName := splitParent(folderPath)
	if parentFolder, parentExists := server.folders[parentPath]; parentExists {
		parentFolder.childFolders = removeName(parentFolder.childFolders, folderName)
	}
	requestContext.Status(http.StatusOK)
}

// ensureFolderLocked creates the folder and its ancestors. Callers hold the mutex.
func (server *Server) ensureFolderLocked(folderPath string) *folderFixture {
	if existingFolder, folderExists := server.folders[folderPath]; folderExists {
		return existingFolder
	}
	createdFolder := &folderFixture{}
	server.folders[folderPath] = createdFolder

	parentPath, folderName := splitParent(folderPath)
	if len(parentPath) > 0 && parentPath != folderPath {
		parentFolder := server.ensureFolderLocked(parentPath)
		parentFolder.childFolders = append(parentFolder.childFolders, folderName)
	}
	return createdFolder
}

// extractSelector pulls the quoted argument out of a selector segment such as
// GetFolderByServerRelativeUrl('<argument>').
func extractSelector(requestPath string, selectorPrefix string) string {
	loweredPath := strings.ToLower(requestPath)
	startIndex := strings.Index(loweredPath, selectorPrefix)
	if startIndex < 0 {
		return ""
	}
	argumentStart := startIndex + len(selectorPrefix)
	endOffset := strings.Index(loweredPath[argumentStart:], selectorSuffixConstant)
	if endOffset < 0 {
		return ""
	}
	return requestPath[argumentStart : argumentStart+endOffset]
}

func extractUploadName(requestPath string) string {
	loweredPath := strings.ToLower(requestPath)
	markerIndex := strings.Index(loweredPath, uploadSegmentMarkerConstant)
	if markerIndex < 0 {
		return ""
	}
	nameStart := markerIndex + len(uploadSegmentMarkerConstant)
	endOffset := strings.Index(requestPath[nameStart:], "'")
	if endOffset < 0 {
		return ""
	}
	return requestPath[nameStart : nameStart+endOffset]
}

// normalizePath canonicalizes a fixture path so library-relative and
// site-prefixed forms of the same folder or file address one entry.
func normalizePath(serverRelativePath string) string {
	trimmedPath := "/" + strings.Trim(strings.TrimSpace(serverRelativePath), "/")
	if trimmedPath == fixtureSitePathPrefixConstant {
		return "/"
	}
	if strings.HasPrefix(trimmedPath, fixtureSitePathPrefixConstant+"/") {
		return trimmedPath[len(fixtureSitePathPrefixConstant):]
	}
	return trimmedPath
}

func siteRelativeURL(normalizedPath string) string {
	return fixtureSitePathPrefixConstant + normalizedPath
}

func splitParent(serverRelativePath string) (string, string) {
	separatorIndex := strings.LastIndex(serverRelativePath, "/")
	if separatorIndex <= 0 {
		return "", strings.TrimPrefix(serverRelativePath, "/")
	}
	return serverRelativePath[:separatorIndex], serverRelativePath[separatorIndex+1:]
}

func removeName(names []string, target string) []string {
	remaining := make([]string, 0, len(names))
	for _, name := range names {
		if name == target {
			continue
		}
		remaining = append(remaining, name)
	}
	return remaining
}
