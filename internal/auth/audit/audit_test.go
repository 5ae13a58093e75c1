package audit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/aussiebroadwan/authgate/internal/auth/audit"
	"github.com/aussiebroadwan/authgate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newLogger(t *testing.T) (*audit.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return audit.New(slog.New(h)), &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestRefreshTokenCreated(t *testing.T) {
	ctx := context.Background()

	t.Run("logs mac and subject", func(t *testing.T) {
		a, buf := newLogger(t)
		require.NoError(t, a.RefreshTokenCreated(ctx, "h.c.sig1", "evert"))

		got := lines(t, buf)
		require.Len(t, got, 1)
		require.Equal(t, "refreshtoken created", got[0]["msg"])
		require.Equal(t, audit.LoggerName, got[0]["logger"])
		require.Equal(t, "sig1", got[0]["refresh_mac"])
		require.Equal(t, "evert", got[0]["sub"])
	})

	t.Run("empty subject is anonymous", func(t *testing.T) {
		a, buf := newLogger(t)
		require.NoError(t, a.RefreshTokenCreated(ctx, "h.c.sig1", ""))
		require.Equal(t, audit.Anonymous, lines(t, buf)[0]["sub"])
	})

	t.Run("rejects a token without three segments", func(t *testing.T) {
		a, buf := newLogger(t)
		err := a.RefreshTokenCreated(ctx, "not-a-jwt", "evert")
		require.ErrorIs(t, err, jwtx.ErrDecode)

		got := lines(t, buf)
		require.Len(t, got, 1)
		require.Equal(t, "not a valid jwt", got[0]["msg"])
	})
}

func TestAccessTokenCreated(t *testing.T) {
	ctx := context.Background()

	t.Run("links refresh to access", func(t *testing.T) {
		a, buf := newLogger(t)
		require.NoError(t, a.AccessTokenCreated(ctx, "h.c.refresh", "h.c.access"))

		got := lines(t, buf)
		require.Len(t, got, 1)
		require.Equal(t, "accesstoken created", got[0]["msg"])
		require.Equal(t, "refresh", got[0]["refresh_mac"])
		require.Equal(t, "access", got[0]["access_mac"])
	})

	t.Run("bad access token", func(t *testing.T) {
		a, _ := newLogger(t)
		require.ErrorIs(t, a.AccessTokenCreated(ctx, "h.c.refresh", "h.c"), jwtx.ErrDecode)
	})
}

func TestNilLogger(t *testing.T) {
	var a *audit.Logger
	require.NoError(t, a.RefreshTokenCreated(context.Background(), "h.c.s", "x"))
	require.ErrorIs(t, a.AccessTokenCreated(context.Background(), "bad", "h.c.s"), jwtx.ErrDecode)
}
