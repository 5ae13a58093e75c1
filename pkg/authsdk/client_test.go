package authsdk_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/authgate/pkg/authsdk"
	"github.com/aussiebroadwan/authgate/pkg/httpx"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp":   exp.Unix(),
		"authz": 3,
	}).SignedString([]byte("test"))
	require.NoError(t, err)
	return tok
}

func TestAuthnRedirectURL(t *testing.T) {
	c := authsdk.NewSDKClient("https://auth.example.com/")

	t.Run("passive", func(t *testing.T) {
		u, err := url.Parse(c.AuthnRedirectURL("https://app/cb", false))
		require.NoError(t, err)
		require.Equal(t, "/auth/siam/authenticate", u.Path)
		require.Equal(t, "https://app/cb", u.Query().Get("callback"))
		require.False(t, u.Query().Has("active"))
	})

	t.Run("active", func(t *testing.T) {
		u, err := url.Parse(c.AuthnRedirectURL("https://app/cb", true))
		require.NoError(t, err)
		require.True(t, u.Query().Has("active"))
	})
}

func TestExchangeCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/siam/token", r.URL.Path)
		q := r.URL.Query()
		if q.Get("aselect_credentials") != "creds" {
			httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeBadCredentials, "invalid credentials")
			return
		}
		require.Equal(t, "rid1", q.Get("rid"))
		require.Equal(t, "siam", q.Get("a-select-server"))
		httpx.WriteText(w, http.StatusOK, "refresh.token.mac")
	}))
	defer srv.Close()

	c := authsdk.NewSDKClient(srv.URL)

	t.Run("ok", func(t *testing.T) {
		tok, err := c.ExchangeCredentials(context.Background(), "creds", "rid1", "siam")
		require.NoError(t, err)
		require.Equal(t, "refresh.token.mac", tok)
	})

	t.Run("bad credentials", func(t *testing.T) {
		_, err := c.ExchangeCredentials(context.Background(), "nope", "rid1", "siam")
		require.Error(t, err)
		require.True(t, authsdk.IsCode(err, authsdk.ErrorCodeBadCredentials))

		var apiErr *authsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	})
}

func TestSessionRefreshesAccessToken(t *testing.T) {
	var issued atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/accesstoken":
			require.Equal(t, "Bearer refresh", r.Header.Get("Authorization"))
			n := issued.Add(1)
			// The first token is already inside the expiry buffer.
			exp := time.Now().Add(10 * time.Second)
			if n > 1 {
				exp = time.Now().Add(10 * time.Minute)
			}
			httpx.WriteText(w, http.StatusOK, signed(t, exp))
		case "/auth/authz/evert":
			require.Contains(t, r.Header.Get("Authorization"), "Bearer ")
			httpx.WriteJSON(w, http.StatusOK, authsdk.AuthzGrant{Username: "evert", Level: 1, LevelName: "employee"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := authsdk.NewSDKClient(srv.URL).NewSession("refresh")
	ctx := context.Background()

	grant, err := s.GetAuthzLevel(ctx, "evert")
	require.NoError(t, err)
	require.Equal(t, 1, grant.Level)
	require.Equal(t, int32(1), issued.Load())

	_, err = s.GetAuthzLevel(ctx, "evert")
	require.NoError(t, err)
	require.Equal(t, int32(2), issued.Load(), "near-expiry token must be replaced")

	_, err = s.GetAuthzLevel(ctx, "evert")
	require.NoError(t, err)
	require.Equal(t, int32(2), issued.Load(), "valid token must be reused")
}

func TestSessionAdminCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth/accesstoken":
			httpx.WriteText(w, http.StatusOK, signed(t, time.Now().Add(time.Hour)))
		case r.Method == http.MethodPut && r.URL.Path == "/auth/authz/bob":
			var req authsdk.SetAuthzRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.Level != 1 && req.Level != 3 {
				httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidLevel, "invalid authorization level")
				return
			}
			httpx.WriteJSON(w, http.StatusOK, authsdk.AuthzGrant{Username: "bob", Level: req.Level})
		case r.Method == http.MethodDelete && r.URL.Path == "/auth/authz/bob":
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/auth/authz":
			httpx.WriteJSON(w, http.StatusOK, authsdk.ListAuthzResponse{
				Grants: []authsdk.AuthzGrant{{Username: "bob", Level: 3}},
				Count:  1,
			})
		case r.URL.Path == "/auth/authz/bob/audit":
			httpx.WriteJSON(w, http.StatusOK, authsdk.AuthzAuditResponse{
				Username: "bob",
				Entries:  []authsdk.AuthzAuditEntry{{Username: "bob", Level: 3, Active: true}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := authsdk.NewSDKClient(srv.URL).NewSession("refresh")
	ctx := context.Background()

	t.Run("set", func(t *testing.T) {
		grant, err := s.SetAuthzLevel(ctx, "bob", 3)
		require.NoError(t, err)
		require.Equal(t, 3, grant.Level)
	})

	t.Run("set invalid level", func(t *testing.T) {
		_, err := s.SetAuthzLevel(ctx, "bob", 2)
		require.True(t, authsdk.IsCode(err, authsdk.ErrorCodeInvalidLevel))
	})

	t.Run("revoke", func(t *testing.T) {
		require.NoError(t, s.RevokeAuthzLevel(ctx, "bob"))
	})

	t.Run("list", func(t *testing.T) {
		list, err := s.ListAuthz(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, list.Count)
	})

	t.Run("audit", func(t *testing.T) {
		audit, err := s.GetAuthzAudit(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, audit.Entries, 1)
		require.True(t, audit.Entries[0].Active)
	})
}

func TestParseErrorFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := authsdk.NewSDKClient(srv.URL).GetLiveness(context.Background())
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, authsdk.ErrorCodeServerError, apiErr.Code)
}

func TestReadiness(t *testing.T) {
	var ready atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ready.Load() {
			httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{
				Status: "ok",
				Checks: &authsdk.HealthChecks{Database: "ok", Signer: "ok"},
			})
			return
		}
		httpx.WriteJSON(w, http.StatusServiceUnavailable, authsdk.HealthResponse{
			Status: "degraded",
			Checks: &authsdk.HealthChecks{Database: "error: closed", Signer: "ok"},
		})
	}))
	defer srv.Close()
	c := authsdk.NewSDKClient(srv.URL)

	t.Run("degraded keeps the checks", func(t *testing.T) {
		health, err := c.GetReadiness(context.Background())
		require.ErrorIs(t, err, authsdk.ErrNotReady)
		require.NotNil(t, health)
		require.Equal(t, "error: closed", health.Checks.Database)
	})

	t.Run("ready", func(t *testing.T) {
		ready.Store(true)
		health, err := c.GetReadiness(context.Background())
		require.NoError(t, err)
		require.Equal(t, "ok", health.Status)
	})
}
