package authsdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrNotReady is returned by GetReadiness when the gateway answers 503. The
// health response is returned alongside it so the failing check is visible.
var ErrNotReady = errors.New("authsdk: gateway not ready")

// GetLiveness checks that the gateway process is up.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	health, status, err := c.fetchHealth(ctx, "/livez")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: livez returned %d", ErrNotReady, status)
	}
	return health, nil
}

// GetReadiness checks the authorization store and the token builders.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	health, status, err := c.fetchHealth(ctx, "/readyz")
	if err != nil {
		return nil, err
	}
	if status == http.StatusServiceUnavailable {
		return health, ErrNotReady
	}
	return health, nil
}

// fetchHealth decodes a health body. Both 200 and 503 carry one; anything else is
// an API error.
func (c *SDKClient) fetchHealth(ctx context.Context, path string) (*HealthResponse, int, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return nil, resp.StatusCode, parseErrorResponse(resp, body)
	}

	var health HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return &health, resp.StatusCode, nil
}
