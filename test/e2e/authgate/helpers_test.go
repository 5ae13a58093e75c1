package authgate_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/authgate/internal/auth/app"
	"github.com/aussiebroadwan/authgate/internal/auth/domain"
	"github.com/aussiebroadwan/authgate/pkg/authsdk"
	"github.com/aussiebroadwan/authgate/pkg/jwtx"
)

/*
 * Common constants and helpers for the gateway end-to-end tests. Each test
 * runs the complete application behind an httptest server, talking to a fake
 * a-select IdP, and drives it through the SDK.
 */

const (
	aselectServer = "siam-server"
	loginURL      = "https://idp.example.com/login"

	adminUser   = "admin"
	citizenUser = "burger"

	accessSecret = "e2e-access-secret"
)

// fakeIdP speaks just enough of the a-select server protocol. Credentials of
// the form "good-<uid>" verify as <uid>, anything else is rejected.
type fakeIdP struct {
	kills atomic.Int32
}

func (f *fakeIdP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch q.Get("request") {
	case "authenticate":
		fmt.Fprintf(w, "result_code=0000&as_url=%s&a-select-server=%s&rid=r1",
			loginURL, aselectServer)
	case "verify_credentials":
		uid, ok := strings.CutPrefix(q.Get("aselect_credentials"), "good-")
		if !ok {
			fmt.Fprint(w, "result_code=0007")
			return
		}
		exp := time.Now().Add(time.Hour).UnixMilli()
		fmt.Fprintf(w, "result_code=0000&uid=%s&tgt_exp_time=%s", uid, strconv.FormatInt(exp, 10))
	case "upgrade_tgt":
		fmt.Fprint(w, "result_code=0000")
	case "kill_tgt":
		f.kills.Add(1)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

// gateway is a running application with its SDK client.
type gateway struct {
	app    *app.Application
	idp    *fakeIdP
	client *authsdk.SDKClient
	url    string
}

// setupGateway starts the application on the given store driver. Extra
// environment overrides are applied on top of the defaults.
func setupGateway(t *testing.T, driver string, env map[string]string) *gateway {
	t.Helper()

	idp := &fakeIdP{}
	idpSrv := httptest.NewServer(idp)
	t.Cleanup(idpSrv.Close)

	dir := t.TempDir()
	defaults := map[string]string{
		"LOG_LEVEL":            "error",
		"SIAM_URL":             idpSrv.URL,
		"SIAM_APP_ID":          "authgate",
		"SIAM_A_SELECT_SERVER": aselectServer,
		"SIAM_SHARED_SECRET":   "shared",
		"AUTH_ACCESS_SECRET":   accessSecret,
		"AUTH_REFRESH_SECRET":  "e2e-refresh-secret",
		"AUTH_STORE_DRIVER":    driver,
		"AUTH_DATABASE_FILE":   filepath.Join(dir, "auth.db"),
		"AUTH_BOLT_FILE":       filepath.Join(dir, "auth.bolt"),
	}
	for k, v := range defaults {
		t.Setenv(k, v)
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := app.LoadConfig()
	require.NoError(t, err)

	a, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	require.NoError(t, a.SelfCheck(context.Background()))

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)

	return &gateway{app: a, idp: idp, client: authsdk.NewSDKClient(srv.URL), url: srv.URL}
}

// grant gives username a level directly through the application, the way
// an operator bootstraps the first administrator.
func (g *gateway) grant(t *testing.T, username string, level domain.Level) {
	t.Helper()
	_, err := g.app.Authz().Set(context.Background(), username, level)
	require.NoError(t, err)
}

// login runs the IdP round trip for uid and returns an SDK session.
func (g *gateway) login(t *testing.T, uid string) *authsdk.Session {
	t.Helper()
	refresh, err := g.client.ExchangeCredentials(t.Context(), "good-"+uid, "r1", aselectServer)
	require.NoError(t, err)
	require.NotEmpty(t, refresh)
	return g.client.NewSession(refresh)
}

// drivers lists the stores every flow is run against. Postgres needs docker
// and is skipped in short mode.
func drivers(t *testing.T) map[string]map[string]string {
	t.Helper()
	out := map[string]map[string]string{
		app.DriverSQLite: nil,
		app.DriverBolt:   nil,
	}
	if !testing.Short() {
		out[app.DriverPostgres] = map[string]string{"AUTH_DATABASE_URL": startPostgres(t)}
	}
	return out
}

// startPostgres runs a throwaway postgres container and returns its URL.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "authuser",
				"POSTGRES_PASSWORD": "authpassword",
				"POSTGRES_DB":       "authz",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://authuser:authpassword@%s:%s/authz?sslmode=disable", host, port.Port())
}

// accessLevel verifies an access token the way a downstream service would
// and returns its authorization level.
func accessLevel(t *testing.T, token string) domain.Level {
	t.Helper()
	codec, err := jwtx.NewCodec(jwtx.KindAccess, jwtx.Config{Secret: []byte(accessSecret), Lifetime: time.Minute})
	require.NoError(t, err)
	cs, err := codec.Decode(token)
	require.NoError(t, err)
	level, ok := cs.Authz()
	require.True(t, ok)
	return domain.Level(level)
}

// assertHealthy checks that a health response indicates a healthy service.
func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}

// requireCode checks that err is an API error with the given code.
func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, authsdk.IsCode(err, code), "expected %s, got %v", code, err)
}
