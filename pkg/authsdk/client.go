package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var textPlain = map[string]string{"Accept": "text/plain"}

// SDKClient is a client for the authgate authentication gateway.
// It provides access to unauthenticated operations and can create authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new gateway client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			// The authenticate endpoint answers with a redirect to the IdP
			// that the caller, not this client, must follow.
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		},
	}
}

// AuthnRedirectURL returns the gateway URL a user agent must be sent to for
// a login. active forces the IdP to prompt; otherwise the login is passive.
func (c *SDKClient) AuthnRedirectURL(callback string, active bool) string {
	q := url.Values{"callback": {callback}}
	if active {
		q.Set("active", "")
	}
	return c.url("/auth/siam/authenticate?" + q.Encode())
}

// ExchangeCredentials exchanges the credentials the IdP appended to the
// callback for a refresh token.
func (c *SDKClient) ExchangeCredentials(ctx context.Context, credentials, rid, aselectServer string) (string, error) {
	q := url.Values{
		"aselect_credentials": {credentials},
		"rid":                 {rid},
		"a-select-server":     {aselectServer},
	}
	resp, err := c.doRequest(ctx, http.MethodGet, "/auth/siam/token?"+q.Encode(), nil, textPlain)
	if err != nil {
		return "", err
	}
	return readText(resp)
}

// GetAccessToken returns a fresh access token for refreshToken.
func (c *SDKClient) GetAccessToken(ctx context.Context, refreshToken string) (string, error) {
	resp, err := c.doBearerRequest(ctx, http.MethodGet, "/auth/accesstoken", refreshToken, nil, textPlain)
	if err != nil {
		return "", err
	}
	return readText(resp)
}

// RenewRefreshToken returns refreshToken with a fresh expiry.
func (c *SDKClient) RenewRefreshToken(ctx context.Context, refreshToken string) (string, error) {
	resp, err := c.doBearerRequest(ctx, http.MethodPost, "/auth/refreshtoken", refreshToken, nil, textPlain)
	if err != nil {
		return "", err
	}
	return readText(resp)
}

// RenewIdPSession extends the IdP session behind credentials.
func (c *SDKClient) RenewIdPSession(ctx context.Context, credentials string) error {
	q := url.Values{"aselect_credentials": {credentials}}
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/siam/renew?"+q.Encode(), nil, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// EndIdPSession logs the user out at the IdP.
func (c *SDKClient) EndIdPSession(ctx context.Context, credentials string) error {
	q := url.Values{"aselect_credentials": {credentials}}
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/siam/logout?"+q.Encode(), nil, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// NewSession returns a Session that fetches access tokens with refreshToken.
func (c *SDKClient) NewSession(refreshToken string) *Session {
	return &Session{client: c, refreshToken: refreshToken}
}
