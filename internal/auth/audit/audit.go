// Package audit writes the token audit trail. Every access token can be
// traced back to the refresh token it was minted from, and every refresh
// token back to its subject, by the token MAC.
package audit

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/authgate/pkg/jwtx"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

// LoggerName identifies audit lines in the log stream.
const LoggerName = "auditlog.authserver"

// Anonymous is logged as the subject of a refresh token without one.
const Anonymous = "anonymous"

// Logger records token issuance. A nil Logger records nothing.
type Logger struct {
	l *slog.Logger
}

func New(base *slog.Logger) *Logger {
	if base == nil {
		base = slog.Default()
	}
	return &Logger{l: base.With(slog.String("logger", LoggerName))}
}

// RefreshTokenCreated logs the MAC of a new refresh token and its subject.
// An empty sub is logged as anonymous.
func (a *Logger) RefreshTokenCreated(ctx context.Context, refreshToken, sub string) error {
	mac, err := a.mac(ctx, refreshToken)
	if err != nil || a == nil {
		return err
	}
	if sub == "" {
		sub = Anonymous
	}
	a.l.InfoContext(ctx, "refreshtoken created",
		slog.String("refresh_mac", mac),
		slog.String("sub", sub),
	)
	return nil
}

// AccessTokenCreated links the refresh token that was presented to the access
// token that was minted for it.
func (a *Logger) AccessTokenCreated(ctx context.Context, refreshToken, accessToken string) error {
	refreshMAC, err := a.mac(ctx, refreshToken)
	if err != nil {
		return err
	}
	accessMAC, err := a.mac(ctx, accessToken)
	if err != nil || a == nil {
		return err
	}
	a.l.InfoContext(ctx, "accesstoken created",
		slog.String("refresh_mac", refreshMAC),
		slog.String("access_mac", accessMAC),
	)
	return nil
}

func (a *Logger) mac(ctx context.Context, token string) (string, error) {
	mac, err := jwtx.MAC(token)
	if err != nil && a != nil {
		slogx.Critical(ctx, a.l, "not a valid jwt", slog.Any("err", err))
	}
	return mac, err
}
