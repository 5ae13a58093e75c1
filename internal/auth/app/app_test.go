package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/authgate/internal/auth/domain"
)

func newTestApp(t *testing.T, idp http.Handler, driver string) *Application {
	t.Helper()
	srv := httptest.NewServer(idp)
	t.Cleanup(srv.Close)

	setRequiredEnv(t)
	t.Setenv("SIAM_URL", srv.URL)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("AUTH_STORE_DRIVER", driver)
	t.Setenv("AUTH_DATABASE_FILE", filepath.Join(t.TempDir(), "auth.db"))
	t.Setenv("AUTH_BOLT_FILE", filepath.Join(t.TempDir(), "auth.bolt"))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	app, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.db.Close() })
	return app
}

func authenticateOK(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("result_code=0000&as_url=https%3A%2F%2Fidp%2Flogin&a-select-server=siam-server&rid=r1"))
}

func TestSelfCheck(t *testing.T) {
	t.Run("passes against a healthy IdP", func(t *testing.T) {
		app := newTestApp(t, http.HandlerFunc(authenticateOK), DriverSQLite)
		require.NoError(t, app.SelfCheck(context.Background()))
	})

	t.Run("fails when the IdP errors", func(t *testing.T) {
		app := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}), DriverSQLite)
		require.ErrorContains(t, app.SelfCheck(context.Background()), "self-check failed")
	})
}

func TestApplicationServes(t *testing.T) {
	for _, driver := range []string{DriverSQLite, DriverBolt} {
		t.Run(driver, func(t *testing.T) {
			app := newTestApp(t, http.HandlerFunc(authenticateOK), driver)

			rec := httptest.NewRecorder()
			app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			require.Equal(t, http.StatusOK, rec.Code)

			rec = httptest.NewRecorder()
			app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/siam/authenticate?callback=http://app/cb", nil))
			require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
			require.Contains(t, rec.Header().Get("Location"), "rid=r1")

			rec = httptest.NewRecorder()
			app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			require.Equal(t, http.StatusOK, rec.Code)
			require.Contains(t, rec.Body.String(), "authgate_siam_requests_total")

			changed, err := app.Authz().Set(context.Background(), "evert", domain.LevelEmployee)
			require.NoError(t, err)
			require.True(t, changed)
		})
	}
}
