package service_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/authgate/internal/auth/audit"
	"github.com/aussiebroadwan/authgate/internal/auth/store"
	"github.com/aussiebroadwan/authgate/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/authgate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) store.Store {
	t.Helper()
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newBuilders(t *testing.T) (*jwtx.AccessBuilder, *jwtx.RefreshBuilder) {
	t.Helper()
	access, err := jwtx.NewAccessBuilder(jwtx.Config{Secret: []byte("access-secret"), Lifetime: 10 * time.Minute})
	require.NoError(t, err)
	refresh, err := jwtx.NewRefreshBuilder(jwtx.Config{Secret: []byte("refresh-secret"), Lifetime: 12 * time.Hour})
	require.NoError(t, err)
	return access, refresh
}

func newAudit(t *testing.T) (*audit.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return audit.New(slog.New(slog.NewJSONHandler(&buf, nil))), &buf
}
