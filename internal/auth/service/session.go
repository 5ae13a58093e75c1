package service

//go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks . Gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/authgate/internal/auth/audit"
	"github.com/aussiebroadwan/authgate/pkg/jwtx"
	"github.com/aussiebroadwan/authgate/pkg/siam"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

var (
	ErrUnsupportedServer = errors.New("unsupported_aselect_server")
	ErrInvalidCallback   = errors.New("invalid_callback")
	ErrInvalidRequest    = errors.New("invalid_request")
)

// Gateway is the part of the IdP client the session flow needs.
// *siam.Client implements it.
type Gateway interface {
	AuthnRedirect(ctx context.Context, passive bool, callbackURL string) (string, error)
	UserAttributes(ctx context.Context, credentials, rid string) (siam.Attributes, error)
	RenewSession(ctx context.Context, credentials string) (bool, error)
	EndSession(ctx context.Context, credentials string) (int, error)
}

var _ Gateway = (*siam.Client)(nil)

// SessionService runs the IdP side of a login: it hands out the redirect to
// the IdP and exchanges the credentials the IdP returns for a refresh token.
type SessionService struct {
	Gateway       Gateway
	Refresh       *jwtx.RefreshBuilder
	Audit         *audit.Logger
	AselectServer string
}

// IssueAuthnRedirect returns the IdP URL the user agent must be sent to.
// A passive request never prompts the user for a login.
func (s *SessionService) IssueAuthnRedirect(ctx context.Context, passive bool, callback string) (string, error) {
	callback = strings.TrimSpace(callback)
	if callback == "" {
		return "", ErrInvalidCallback
	}
	return s.Gateway.AuthnRedirect(ctx, passive, callback)
}

// VerifyAndIssueRefreshToken verifies credentials with the IdP and returns a
// signed refresh token for the verified uid. The token carries orig_iat so
// renewals can be bounded by the maximum session age.
func (s *SessionService) VerifyAndIssueRefreshToken(ctx context.Context, credentials, rid, aselectServer string) (string, error) {
	if credentials == "" || rid == "" {
		return "", ErrInvalidRequest
	}
	if aselectServer != s.AselectServer {
		slogx.FromContext(ctx).Info("token request for unsupported a-select-server",
			slog.String("a-select-server", aselectServer),
		)
		return "", ErrUnsupportedServer
	}

	attrs, err := s.Gateway.UserAttributes(ctx, credentials, rid)
	if err != nil {
		return "", err
	}

	cs, err := s.Refresh.Create(attrs.UID)
	if err != nil {
		return "", err
	}
	cs, err = cs.With(map[string]any{jwtx.ClaimOrigIssuedAt: cs.IssuedAt()})
	if err != nil {
		return "", err
	}

	token, err := s.Refresh.Encode(cs)
	if err != nil {
		return "", err
	}
	if err := s.Audit.RefreshTokenCreated(ctx, token, attrs.UID); err != nil {
		return "", fmt.Errorf("audit refresh token: %w", err)
	}
	return token, nil
}

// RenewSession extends the IdP session. It reports whether the IdP accepted
// the renewal.
func (s *SessionService) RenewSession(ctx context.Context, credentials string) (bool, error) {
	if credentials == "" {
		return false, ErrInvalidRequest
	}
	return s.Gateway.RenewSession(ctx, credentials)
}

// EndSession asks the IdP to end the session. The result is best effort:
// the IdP status is returned but not interpreted.
func (s *SessionService) EndSession(ctx context.Context, credentials string) (int, error) {
	if credentials == "" {
		return 0, ErrInvalidRequest
	}
	return s.Gateway.EndSession(ctx, credentials)
}
