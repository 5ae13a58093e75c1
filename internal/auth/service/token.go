package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/authgate/internal/auth/audit"
	"github.com/aussiebroadwan/authgate/internal/auth/domain"
	"github.com/aussiebroadwan/authgate/pkg/jwtx"
)

// EmployeeSubject is the subject the test IdP uses for every employee login.
// It is always granted domain.LevelEmployee without an authz lookup.
const EmployeeSubject = "Medewerker"

var ErrSessionExpired = errors.New("session_expired")

// LevelGetter looks up the current authorization level of a username.
type LevelGetter interface {
	Get(ctx context.Context, username string) (domain.Level, error)
}

// TokenService turns refresh tokens into access tokens and renews refresh
// tokens. Levels are looked up on every call and never cached.
type TokenService struct {
	Refresh       *jwtx.RefreshBuilder
	Access        *jwtx.AccessBuilder
	Authz         LevelGetter
	Audit         *audit.Logger
	MaxSessionAge time.Duration
}

// IssueAccessToken decodes refreshToken and returns an access token carrying
// the subject's current level. Anonymous subjects are citizens.
func (s *TokenService) IssueAccessToken(ctx context.Context, refreshToken string) (string, error) {
	cs, err := s.Refresh.Decode(refreshToken)
	if err != nil {
		return "", err
	}

	level, err := s.levelOf(ctx, cs)
	if err != nil {
		return "", err
	}

	access, err := s.Access.Create(int(level))
	if err != nil {
		return "", err
	}
	token, err := s.Access.Encode(access)
	if err != nil {
		return "", err
	}

	if err := s.Audit.AccessTokenCreated(ctx, refreshToken, token); err != nil {
		return "", fmt.Errorf("audit access token: %w", err)
	}
	return token, nil
}

// RenewRefreshToken reissues refreshToken with a fresh expiry. Every claim is
// carried over. The renewal fails with ErrSessionExpired once the new expiry
// would pass orig_iat plus MaxSessionAge.
func (s *TokenService) RenewRefreshToken(ctx context.Context, refreshToken string) (string, error) {
	cs, err := s.Refresh.Decode(refreshToken)
	if err != nil {
		return "", err
	}

	origIat, ok := cs.Int(jwtx.ClaimOrigIssuedAt)
	if !ok {
		origIat = cs.IssuedAt()
	}

	extra := cs.Map()
	delete(extra, jwtx.ClaimIssuedAt)
	delete(extra, jwtx.ClaimExpiresAt)
	extra[jwtx.ClaimOrigIssuedAt] = origIat

	renewed, err := s.Refresh.Codec.Create(extra)
	if err != nil {
		return "", err
	}
	if s.MaxSessionAge > 0 && renewed.ExpiresAt() > origIat+int64(s.MaxSessionAge/time.Second) {
		return "", ErrSessionExpired
	}

	token, err := s.Refresh.Encode(renewed)
	if err != nil {
		return "", err
	}

	sub, _ := renewed.Subject()
	if err := s.Audit.RefreshTokenCreated(ctx, token, sub); err != nil {
		return "", fmt.Errorf("audit refresh token: %w", err)
	}
	return token, nil
}

func (s *TokenService) levelOf(ctx context.Context, cs jwtx.ClaimSet) (domain.Level, error) {
	sub, anonymous := cs.Subject()
	switch {
	case anonymous || sub == "":
		return domain.LevelCitizen, nil
	case sub == EmployeeSubject:
		return domain.LevelEmployee, nil
	default:
		return s.Authz.Get(ctx, sub)
	}
}
