package sharepoint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tyemirov/spx/internal/taskerrors"
)

const (
	grantTypeFormFieldConstant    = "grant_type"
	clientIDFormFieldConstant     = "client_id"
	clientSecretFormFieldConstant = "client_secret"
	resourceFormFieldConstant     = "resource"

	tokenRequestFailedTemplateConstant    = "token request failed: %w"
	tokenResponseStatusTemplateConstant   = "token endpoint returned status %d"
	tokenResponseDecodeTemplateConstant   = "token response decoding failed: %w"
	tokenResponseMissingTokenMessageConst = "token response did not include an access token"

	defaultTokenLifetimeConstant = 30 * time.Minute
	tokenExpirySkewConstant      = 2 * time.Minute
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresOn   string `json:"expires_on"`
}

// tokenSource acquires and caches the client-credentials bearer token.
type tokenSource struct {
	settings   Settings
	httpClient *http.Client

	mutex       sync.Mutex
	cachedToken string
	expiresAt   time.Time
}

func newTokenSource(settings Settings, httpClient *http.Client) *tokenSource {
	return &tokenSource{settings: settings, httpClient: httpClient}
}

// BearerToken returns a cached access token, acquiring a fresh one when the
// cache is empty or within the expiry skew.
func (source *tokenSource) BearerToken(executionContext context.Context) (string, error) {
	source.mutex.Lock()
	defer source.mutex.Unlock()

	if len(source.cachedToken) > 0 && time.Now().Before(source.expiresAt.Add(-tokenExpirySkewConstant)) {
		return source.cachedToken, nil
	}

	acquiredToken, acquisitionError := source.acquireToken(executionContext)
	if acquisitionError != nil {
		return "", acquisitionError
	}

	source.cachedToken = acquiredToken.AccessToken
	source.expiresAt = resolveTokenExpiry(acquiredToken)
	return source.cachedToken, nil
}

func (source *tokenSource) acquireToken(executionContext context.Context) (tokenResponse, error) {
	formValues := url.Values{}
	formValues.Set(grantTypeFormFieldConstant, source.settings.GrantType)
	formValues.Set(clientIDFormFieldConstant, source.settings.ClientID)
	formValues.Set(clientSecretFormFieldConstant, source.settings.ClientSecret)
	formValues.Set(resourceFormFieldConstant, source.settings.Resource)

	tokenRequest, requestError := http.NewRequestWithContext(
		executionContext,
		http.MethodPost,
		source.settings.tokenEndpoint(),
		strings.NewReader(formValues.Encode()),
	)
	if requestError != nil {
		return tokenResponse{}, taskerrors.Wrap(taskerrors.OperationTokenAcquisition, source.settings.tokenEndpoint(), taskerrors.ErrTokenAcquisition, requestError)
	}
	tokenRequest.Header.Set(contentTypeHeaderConstant, formContentTypeConstant)

	httpResponse, transportError := source.httpClient.Do(tokenRequest)
	if transportError != nil {
		return tokenResponse{}, taskerrors.Wrap(
			taskerrors.OperationTokenAcquisition,
			source.settings.tokenEndpoint(),
			taskerrors.ErrTokenAcquisition,
			fmt.Errorf(tokenRequestFailedTemplateConstant, transportError),
		)
	}
	defer func() {
		_ = httpResponse.Body.Close()
	}()

	responseBody, readError := io.ReadAll(httpResponse.Body)
	if readError != nil {
		return tokenResponse{}, taskerrors.Wrap(
			taskerrors.OperationTokenAcquisition,
			source.settings.tokenEndpoint(),
			taskerrors.ErrTokenAcquisition,
			fmt.Errorf(tokenResponseDecodeTemplateConstant, readError),
		)
	}
	if httpResponse.StatusCode != http.StatusOK {
		return tokenResponse{}, taskerrors.Wrap(
			taskerrors.OperationTokenAcquisition,
			source.settings.tokenEndpoint(),
			taskerrors.ErrTokenAcquisition,
			fmt.Errorf(tokenResponseStatusTemplateConstant, httpResponse.StatusCode),
		)
	}

	decodedResponse := tokenResponse{}
	if decodeError := json.Unmarshal(responseBody, &decodedResponse); decodeError != nil {
		return tokenResponse{}, taskerrors.Wrap(
			taskerrors.OperationTokenAcquisition,
			source.settings.tokenEndpoint(),
			taskerrors.ErrTokenAcquisition,
			fmt.Errorf(tokenResponseDecodeTemplateConstant, decodeError),
		)
	}
	if len(decodedResponse.AccessToken) == 0 {
		return tokenResponse{}, taskerrors.WrapMessage(
			taskerrors.OperationTokenAcquisition,
			source.settings.tokenEndpoint(),
			taskerrors.ErrTokenAcquisition,
			tokenResponseMissingTokenMessageConst,
		)
	}
	return decodedResponse, nil
}

// resolveTokenExpiry prefers the exp claim embedded in the access token and
// falls back to the expires_on response field, then to a fixed lifetime.
func resolveTokenExpiry(acquiredToken tokenResponse) time.Time {
	claims := jwt.MapClaims{}
	tokenParser := jwt.NewParser()
	_, _, parseError := tokenParser.ParseUnverified(acquiredToken.AccessToken, claims)
	if parseError == nil {
		expirationTime, claimError := claims.GetExpirationTime()
		if claimError == nil && expirationTime != nil {
			return expirationTime.Time
		}
	}

	expiresOnSeconds, conversionError := strconv.ParseInt(strings.TrimSpace(acquiredToken.ExpiresOn), 10, 64)
	if conversionError == nil && expiresOnSeconds > 0 {
		return time.Unix(expiresOnSeconds, 0)
	}
	return time.Now().Add(defaultTokenLifetimeConstant)
}
