package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/aussiebroadwan/authgate/internal/auth/audit"
	"github.com/aussiebroadwan/authgate/internal/auth/domain"
	authhttp "github.com/aussiebroadwan/authgate/internal/auth/http"
	"github.com/aussiebroadwan/authgate/internal/auth/service"
	"github.com/aussiebroadwan/authgate/internal/auth/service/mocks"
	"github.com/aussiebroadwan/authgate/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/authgate/pkg/authsdk"
	"github.com/aussiebroadwan/authgate/pkg/httpx"
	"github.com/aussiebroadwan/authgate/pkg/jwtx"
	"github.com/aussiebroadwan/authgate/pkg/siam"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

const aselectServer = "siam-server"

type harness struct {
	router  *authhttp.Router
	gw      *mocks.MockGateway
	access  *jwtx.AccessBuilder
	refresh *jwtx.RefreshBuilder
	authz   *service.AuthzService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newLimitedHarness(t, &authhttp.RateLimits{}, io.Discard) // unlimited
}

// newLimitedHarness builds a harness with the given rate limits, writing
// warnings and above to logs.
func newLimitedHarness(t *testing.T, limits *authhttp.RateLimits, logs io.Writer) *harness {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	access, err := jwtx.NewAccessBuilder(jwtx.Config{Secret: []byte("access-secret"), Lifetime: 10 * time.Minute})
	require.NoError(t, err)
	refresh, err := jwtx.NewRefreshBuilder(jwtx.Config{Secret: []byte("refresh-secret"), Lifetime: 12 * time.Hour})
	require.NoError(t, err)

	logger := slogx.New(slogx.Config{Service: "authgate-test", Level: "warn", Format: "json", Output: logs})
	gw := mocks.NewMockGateway(gomock.NewController(t))
	authz := &service.AuthzService{Store: st}
	a := audit.New(logger)

	r := authhttp.NewRouter(access, "test", st, prometheus.NewRegistry(), logger)
	r.RateLimits = limits
	r.SessionService = &service.SessionService{Gateway: gw, Refresh: refresh, Audit: a, AselectServer: aselectServer}
	r.TokenService = &service.TokenService{Refresh: refresh, Access: access, Authz: authz, Audit: a, MaxSessionAge: 24 * time.Hour}
	r.AuthzService = authz
	r.SelfCheck = &service.SelfCheck{Access: access, Refresh: refresh}
	r.ApplyRoutes()

	return &harness{router: r, gw: gw, access: access, refresh: refresh, authz: authz}
}

func (h *harness) do(t *testing.T, method, target, bearer string, body io.Reader, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) refreshToken(t *testing.T, sub string) string {
	t.Helper()
	cs, err := h.refresh.Create(sub)
	require.NoError(t, err)
	tok, err := h.refresh.Encode(cs)
	require.NoError(t, err)
	return tok
}

func (h *harness) accessToken(t *testing.T, level domain.Level) string {
	t.Helper()
	cs, err := h.access.Create(int(level))
	require.NoError(t, err)
	tok, err := h.access.Encode(cs)
	require.NoError(t, err)
	return tok
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body authsdk.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestAuthenticate(t *testing.T) {
	t.Run("missing callback", func(t *testing.T) {
		h := newHarness(t)
		rec := h.do(t, http.MethodGet, "/auth/siam/authenticate", "", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "invalid_request", errorCode(t, rec))
	})

	t.Run("passive by default", func(t *testing.T) {
		h := newHarness(t)
		h.gw.EXPECT().AuthnRedirect(gomock.Any(), true, "http://app/cb").Return("https://idp/login?rid=r1", nil)

		rec := h.do(t, http.MethodGet, "/auth/siam/authenticate?callback=http%3A%2F%2Fapp%2Fcb", "", nil)
		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		require.Equal(t, "https://idp/login?rid=r1", rec.Header().Get("Location"))
	})

	t.Run("active flag", func(t *testing.T) {
		h := newHarness(t)
		h.gw.EXPECT().AuthnRedirect(gomock.Any(), false, "http://app/cb").Return("https://idp/login", nil)

		rec := h.do(t, http.MethodGet, "/auth/siam/authenticate?callback=http://app/cb&active", "", nil)
		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	})

	t.Run("callback query reaches the IdP still encoded", func(t *testing.T) {
		const callback = "http://app/cb?next=a%26b&q=x%2By"
		h := newHarness(t)
		h.gw.EXPECT().AuthnRedirect(gomock.Any(), true, callback).Return("https://idp/login", nil)

		rec := h.do(t, http.MethodGet, "/auth/siam/authenticate?callback="+url.QueryEscape(callback), "", nil)
		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	})

	t.Run("gateway timeout", func(t *testing.T) {
		h := newHarness(t)
		h.gw.EXPECT().AuthnRedirect(gomock.Any(), true, "http://app/cb").
			Return("", &siam.Error{Kind: siam.ErrTimeout, Request: siam.RequestAuthenticate})

		rec := h.do(t, http.MethodGet, "/auth/siam/authenticate?callback=http://app/cb", "", nil)
		require.Equal(t, http.StatusGatewayTimeout, rec.Code)
	})
}

func TestToken(t *testing.T) {
	const target = "/auth/siam/token?aselect_credentials=creds&rid=r1&a-select-server=" + aselectServer

	t.Run("issues a refresh token", func(t *testing.T) {
		h := newHarness(t)
		h.gw.EXPECT().UserAttributes(gomock.Any(), "creds", "r1").Return(siam.Attributes{UID: "evert"}, nil)

		rec := h.do(t, http.MethodGet, target, "", nil, "Accept", "text/plain")
		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))

		cs, err := h.refresh.Decode(rec.Body.String())
		require.NoError(t, err)
		sub, anonymous := cs.Subject()
		require.False(t, anonymous)
		require.Equal(t, "evert", sub)
	})

	t.Run("json not acceptable", func(t *testing.T) {
		h := newHarness(t)
		rec := h.do(t, http.MethodGet, target, "", nil, "Accept", "application/json")
		require.Equal(t, http.StatusNotAcceptable, rec.Code)
	})

	t.Run("missing rid", func(t *testing.T) {
		h := newHarness(t)
		rec := h.do(t, http.MethodGet, "/auth/siam/token?aselect_credentials=creds&a-select-server=x", "", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unsupported a-select-server", func(t *testing.T) {
		h := newHarness(t)
		rec := h.do(t, http.MethodGet, "/auth/siam/token?aselect_credentials=creds&rid=r1&a-select-server=other", "", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, authsdk.ErrorCodeUnsupportedServer, errorCode(t, rec))
	})

	t.Run("bad credentials", func(t *testing.T) {
		h := newHarness(t)
		h.gw.EXPECT().UserAttributes(gomock.Any(), "creds", "r1").
			Return(siam.Attributes{}, &siam.Error{Kind: siam.ErrBadCredentials, Request: siam.RequestVerifyCredentials})

		rec := h.do(t, http.MethodGet, target, "", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, authsdk.ErrorCodeBadCredentials, errorCode(t, rec))
	})

	t.Run("rotating credentials do not escape the ip limit", func(t *testing.T) {
		var logs bytes.Buffer
		h := newLimitedHarness(t, &authhttp.RateLimits{
			Tokens: httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Hour, Burst: 2},
		}, &logs)
		h.gw.EXPECT().UserAttributes(gomock.Any(), gomock.Any(), "r1").
			Return(siam.Attributes{UID: "evert"}, nil).Times(2)

		for i := range 3 {
			target := fmt.Sprintf("/auth/siam/token?aselect_credentials=ticket-%d&rid=r1&a-select-server=%s", i, aselectServer)
			rec := h.do(t, http.MethodGet, target, "", nil, "Accept", "text/plain")
			if i < 2 {
				require.Equal(t, http.StatusOK, rec.Code)
				continue
			}
			require.Equal(t, http.StatusTooManyRequests, rec.Code)
			require.Equal(t, "rate_limit_exceeded", errorCode(t, rec))
		}

		require.Contains(t, logs.String(), "rate limit exceeded")
		require.NotContains(t, logs.String(), "ticket-")
	})

	t.Run("gateway unavailable", func(t *testing.T) {
		h := newHarness(t)
		h.gw.EXPECT().UserAttributes(gomock.Any(), "creds", "r1").
			Return(siam.Attributes{}, &siam.Error{Kind: siam.ErrConnection, Request: siam.RequestVerifyCredentials})

		rec := h.do(t, http.MethodGet, target, "", nil)
		require.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestRenewAndLogout(t *testing.T) {
	t.Run("renewed", func(t *testing.T) {
		h := newHarness(t)
		h.gw.EXPECT().RenewSession(gomock.Any(), "creds").Return(true, nil)
		rec := h.do(t, http.MethodPost, "/auth/siam/renew?aselect_credentials=creds", "", nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("not renewed", func(t *testing.T) {
		h := newHarness(t)
		h.gw.EXPECT().RenewSession(gomock.Any(), "creds").Return(false, nil)
		rec := h.do(t, http.MethodPost, "/auth/siam/renew?aselect_credentials=creds", "", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("logout", func(t *testing.T) {
		h := newHarness(t)
		h.gw.EXPECT().EndSession(gomock.Any(), "creds").Return(9114, nil)
		rec := h.do(t, http.MethodPost, "/auth/siam/logout?aselect_credentials=creds", "", nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestAccessToken(t *testing.T) {
	t.Run("missing bearer", func(t *testing.T) {
		h := newHarness(t)
		rec := h.do(t, http.MethodGet, "/auth/accesstoken", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), `error="invalid_token"`)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		h := newHarness(t)
		rec := h.do(t, http.MethodGet, "/auth/accesstoken", h.accessToken(t, domain.LevelEmployee), nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("carries the stored level", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.authz.Set(context.Background(), "evert", domain.LevelEmployeePlus)
		require.NoError(t, err)

		rec := h.do(t, http.MethodGet, "/auth/accesstoken", h.refreshToken(t, "evert"), nil, "Accept", "text/plain")
		require.Equal(t, http.StatusOK, rec.Code)

		cs, err := h.access.Decode(rec.Body.String())
		require.NoError(t, err)
		level, ok := cs.Authz()
		require.True(t, ok)
		require.Equal(t, int(domain.LevelEmployeePlus), level)
	})

	t.Run("renew refresh token", func(t *testing.T) {
		h := newHarness(t)
		rec := h.do(t, http.MethodPost, "/auth/refreshtoken", h.refreshToken(t, "evert"), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		cs, err := h.refresh.Decode(rec.Body.String())
		require.NoError(t, err)
		sub, _ := cs.Subject()
		require.Equal(t, "evert", sub)
		require.True(t, cs.Has(jwtx.ClaimOrigIssuedAt))
	})
}

func TestAuthzAdmin(t *testing.T) {
	h := newHarness(t)
	admin := h.accessToken(t, domain.LevelEmployeePlus)

	t.Run("employee is forbidden", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/auth/authz", h.accessToken(t, domain.LevelEmployee), nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "insufficient_scope", errorCode(t, rec))
	})

	t.Run("refresh token is rejected", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/auth/authz", h.refreshToken(t, "evert"), nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown user is citizen", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/auth/authz/nobody", admin, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var grant authsdk.AuthzGrant
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grant))
		require.Equal(t, 0, grant.Level)
		require.Equal(t, "citizen", grant.LevelName)
	})

	t.Run("grant", func(t *testing.T) {
		rec := h.do(t, http.MethodPut, "/auth/authz/bob", admin, strings.NewReader(`{"authz_level":1}`))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = h.do(t, http.MethodGet, "/auth/authz/bob", admin, nil)
		var grant authsdk.AuthzGrant
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grant))
		require.Equal(t, 1, grant.Level)
	})

	t.Run("invalid level", func(t *testing.T) {
		rec := h.do(t, http.MethodPut, "/auth/authz/bob", admin, strings.NewReader(`{"authz_level":2}`))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, authsdk.ErrorCodeInvalidLevel, errorCode(t, rec))
	})

	t.Run("invalid body", func(t *testing.T) {
		rec := h.do(t, http.MethodPut, "/auth/authz/bob", admin, strings.NewReader(`{`))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/auth/authz", admin, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var list authsdk.ListAuthzResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Equal(t, 1, list.Count)
		require.Equal(t, "bob", list.Grants[0].Username)
	})

	t.Run("revoke and audit", func(t *testing.T) {
		rec := h.do(t, http.MethodDelete, "/auth/authz/bob", admin, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = h.do(t, http.MethodGet, "/auth/authz/bob/audit", admin, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var trail authsdk.AuthzAuditResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trail))
		require.Len(t, trail.Entries, 2)
		require.True(t, trail.Entries[0].Active)
		require.False(t, trail.Entries[1].Active)
		require.Equal(t, 1, trail.Entries[1].Level)
	})
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health authsdk.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "ok", health.Checks.Signer)

	rec = h.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
