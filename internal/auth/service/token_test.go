package service_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/authgate/internal/auth/domain"
	"github.com/aussiebroadwan/authgate/internal/auth/service"
	"github.com/aussiebroadwan/authgate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type tokenFixture struct {
	svc     *service.TokenService
	authz   *service.AuthzService
	access  *jwtx.AccessBuilder
	refresh *jwtx.RefreshBuilder
	log     *bytes.Buffer
}

func newTokenFixture(t *testing.T) tokenFixture {
	t.Helper()
	access, refresh := newBuilders(t)
	a, buf := newAudit(t)
	authz := &service.AuthzService{Store: newStore(t)}

	return tokenFixture{
		svc: &service.TokenService{
			Refresh:       refresh,
			Access:        access,
			Authz:         authz,
			Audit:         a,
			MaxSessionAge: 24 * time.Hour,
		},
		authz:   authz,
		access:  access,
		refresh: refresh,
		log:     buf,
	}
}

// mint encodes a refresh token as if it were created at issued.
func mint(t *testing.T, b *jwtx.RefreshBuilder, issued time.Time, extra map[string]any) string {
	t.Helper()
	past := &jwtx.RefreshBuilder{Codec: b.WithClock(func() time.Time { return issued })}
	cs, err := past.Codec.Create(extra)
	require.NoError(t, err)
	token, err := past.Encode(cs)
	require.NoError(t, err)
	return token
}

func TestIssueAccessToken(t *testing.T) {
	ctx := context.Background()

	levelOf := func(t *testing.T, f tokenFixture, token string) int {
		t.Helper()
		cs, err := f.access.Decode(token)
		require.NoError(t, err)
		authz, ok := cs.Authz()
		require.True(t, ok)
		return authz
	}

	t.Run("carries the current level", func(t *testing.T) {
		f := newTokenFixture(t)
		_, err := f.authz.Set(ctx, "evert", domain.LevelEmployeePlus)
		require.NoError(t, err)

		refresh := mint(t, f.refresh, time.Now(), map[string]any{jwtx.ClaimSubject: "evert"})
		token, err := f.svc.IssueAccessToken(ctx, refresh)
		require.NoError(t, err)
		require.Equal(t, int(domain.LevelEmployeePlus), levelOf(t, f, token))
	})

	t.Run("links the tokens in the audit log", func(t *testing.T) {
		f := newTokenFixture(t)
		refresh := mint(t, f.refresh, time.Now(), map[string]any{jwtx.ClaimSubject: "evert"})

		token, err := f.svc.IssueAccessToken(ctx, refresh)
		require.NoError(t, err)

		refreshMAC, err := jwtx.MAC(refresh)
		require.NoError(t, err)
		accessMAC, err := jwtx.MAC(token)
		require.NoError(t, err)
		require.Contains(t, f.log.String(), `"refresh_mac":"`+refreshMAC+`"`)
		require.Contains(t, f.log.String(), `"access_mac":"`+accessMAC+`"`)
	})

	t.Run("level is looked up on every call", func(t *testing.T) {
		f := newTokenFixture(t)
		refresh := mint(t, f.refresh, time.Now(), map[string]any{jwtx.ClaimSubject: "evert"})

		token, err := f.svc.IssueAccessToken(ctx, refresh)
		require.NoError(t, err)
		require.Equal(t, int(domain.LevelCitizen), levelOf(t, f, token))

		_, err = f.authz.Set(ctx, "evert", domain.LevelEmployee)
		require.NoError(t, err)

		token, err = f.svc.IssueAccessToken(ctx, refresh)
		require.NoError(t, err)
		require.Equal(t, int(domain.LevelEmployee), levelOf(t, f, token))
	})

	t.Run("employee subject is an employee", func(t *testing.T) {
		f := newTokenFixture(t)
		refresh := mint(t, f.refresh, time.Now(), map[string]any{jwtx.ClaimSubject: service.EmployeeSubject})

		token, err := f.svc.IssueAccessToken(ctx, refresh)
		require.NoError(t, err)
		require.Equal(t, int(domain.LevelEmployee), levelOf(t, f, token))
	})

	t.Run("anonymous subject is a citizen", func(t *testing.T) {
		f := newTokenFixture(t)
		refresh := mint(t, f.refresh, time.Now(), map[string]any{jwtx.ClaimSubject: nil})

		token, err := f.svc.IssueAccessToken(ctx, refresh)
		require.NoError(t, err)
		require.Equal(t, int(domain.LevelCitizen), levelOf(t, f, token))
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		f := newTokenFixture(t)
		refresh := mint(t, f.refresh, time.Now(), map[string]any{jwtx.ClaimSubject: "evert"})

		token, err := f.svc.IssueAccessToken(ctx, refresh)
		require.NoError(t, err)

		_, err = f.svc.IssueAccessToken(ctx, token)
		require.ErrorIs(t, err, jwtx.ErrDecode)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		f := newTokenFixture(t)
		refresh := mint(t, f.refresh, time.Now().Add(-13*time.Hour), map[string]any{jwtx.ClaimSubject: "evert"})

		_, err := f.svc.IssueAccessToken(ctx, refresh)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		f := newTokenFixture(t)
		_, err := f.svc.IssueAccessToken(ctx, "garbage")
		require.ErrorIs(t, err, jwtx.ErrDecode)
	})
}

func TestRenewRefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps subject and orig_iat", func(t *testing.T) {
		f := newTokenFixture(t)
		issued := time.Now().Add(-time.Hour)
		refresh := mint(t, f.refresh, issued, map[string]any{jwtx.ClaimSubject: "evert"})

		old, err := f.refresh.Decode(refresh)
		require.NoError(t, err)

		renewed, err := f.svc.RenewRefreshToken(ctx, refresh)
		require.NoError(t, err)

		cs, err := f.refresh.Decode(renewed)
		require.NoError(t, err)
		sub, _ := cs.Subject()
		require.Equal(t, "evert", sub)
		origIat, ok := cs.Int(jwtx.ClaimOrigIssuedAt)
		require.True(t, ok)
		require.Equal(t, old.IssuedAt(), origIat)
		require.Greater(t, cs.ExpiresAt(), old.ExpiresAt())
	})

	t.Run("orig_iat survives repeated renewals", func(t *testing.T) {
		f := newTokenFixture(t)
		issued := time.Now().Add(-2 * time.Hour)
		refresh := mint(t, f.refresh, issued, map[string]any{
			jwtx.ClaimSubject:      "evert",
			jwtx.ClaimOrigIssuedAt: issued.Add(-time.Hour).Unix(),
		})

		once, err := f.svc.RenewRefreshToken(ctx, refresh)
		require.NoError(t, err)
		twice, err := f.svc.RenewRefreshToken(ctx, once)
		require.NoError(t, err)

		cs, err := f.refresh.Decode(twice)
		require.NoError(t, err)
		origIat, _ := cs.Int(jwtx.ClaimOrigIssuedAt)
		require.Equal(t, issued.Add(-time.Hour).Unix(), origIat)
	})

	t.Run("bounded by the maximum session age", func(t *testing.T) {
		f := newTokenFixture(t)
		issued := time.Now().Add(-2 * time.Hour)
		refresh := mint(t, f.refresh, issued, map[string]any{
			jwtx.ClaimSubject:      "evert",
			jwtx.ClaimOrigIssuedAt: time.Now().Add(-20 * time.Hour).Unix(),
		})

		_, err := f.svc.RenewRefreshToken(ctx, refresh)
		require.ErrorIs(t, err, service.ErrSessionExpired)
	})

	t.Run("fresh login renews at the smallest valid session age", func(t *testing.T) {
		f := newTokenFixture(t)
		now := time.Now().Truncate(time.Second)
		clock := func() time.Time { return now }
		f.svc.Refresh = &jwtx.RefreshBuilder{Codec: f.refresh.WithClock(clock)}
		refresh := mint(t, f.refresh, now, map[string]any{jwtx.ClaimSubject: "evert"})

		f.svc.MaxSessionAge = 12*time.Hour + jwtx.Backdate
		_, err := f.svc.RenewRefreshToken(ctx, refresh)
		require.NoError(t, err)

		f.svc.MaxSessionAge = 12 * time.Hour
		_, err = f.svc.RenewRefreshToken(ctx, refresh)
		require.ErrorIs(t, err, service.ErrSessionExpired)
	})

	t.Run("expired refresh token cannot be renewed", func(t *testing.T) {
		f := newTokenFixture(t)
		refresh := mint(t, f.refresh, time.Now().Add(-13*time.Hour), map[string]any{jwtx.ClaimSubject: "evert"})

		_, err := f.svc.RenewRefreshToken(ctx, refresh)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("anonymous stays anonymous", func(t *testing.T) {
		f := newTokenFixture(t)
		refresh := mint(t, f.refresh, time.Now(), map[string]any{jwtx.ClaimSubject: nil})

		renewed, err := f.svc.RenewRefreshToken(ctx, refresh)
		require.NoError(t, err)

		cs, err := f.refresh.Decode(renewed)
		require.NoError(t, err)
		_, anonymous := cs.Subject()
		require.True(t, anonymous)
	})
}
