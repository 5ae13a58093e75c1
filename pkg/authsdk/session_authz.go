package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

var jsonHeaders = map[string]string{"Accept": "application/json", "Content-Type": "application/json"}

func (s *Session) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.doBearerRequest(ctx, method, path, token, body, jsonHeaders)
}

// GetAuthzLevel returns the level of username. Unknown usernames are
// citizens, never an error.
// Requires: employee plus.
func (s *Session) GetAuthzLevel(ctx context.Context, username string) (*AuthzGrant, error) {
	resp, err := s.do(ctx, http.MethodGet, "/auth/authz/"+url.PathEscape(username), nil)
	if err != nil {
		return nil, err
	}

	var grant AuthzGrant
	if err := decodeJSON(resp, &grant, http.StatusOK); err != nil {
		return nil, err
	}
	return &grant, nil
}

// SetAuthzLevel grants level to username.
// Requires: employee plus.
func (s *Session) SetAuthzLevel(ctx context.Context, username string, level int) (*AuthzGrant, error) {
	body, err := json.Marshal(SetAuthzRequest{Level: level})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := s.do(ctx, http.MethodPut, "/auth/authz/"+url.PathEscape(username), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var grant AuthzGrant
	if err := decodeJSON(resp, &grant, http.StatusOK); err != nil {
		return nil, err
	}
	return &grant, nil
}

// RevokeAuthzLevel removes the explicit grant of username.
// Requires: employee plus.
func (s *Session) RevokeAuthzLevel(ctx context.Context, username string) error {
	resp, err := s.do(ctx, http.MethodDelete, "/auth/authz/"+url.PathEscape(username), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// ListAuthz returns every explicit grant.
// Requires: employee plus.
func (s *Session) ListAuthz(ctx context.Context) (*ListAuthzResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/auth/authz", nil)
	if err != nil {
		return nil, err
	}

	var list ListAuthzResponse
	if err := decodeJSON(resp, &list, http.StatusOK); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetAuthzAudit returns the audit trail of username.
// Requires: employee plus.
func (s *Session) GetAuthzAudit(ctx context.Context, username string) (*AuthzAuditResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/auth/authz/"+url.PathEscape(username)+"/audit", nil)
	if err != nil {
		return nil, err
	}

	var audit AuthzAuditResponse
	if err := decodeJSON(resp, &audit, http.StatusOK); err != nil {
		return nil, err
	}
	return &audit, nil
}
