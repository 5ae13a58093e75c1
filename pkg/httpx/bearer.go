package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/authgate/pkg/jwtx"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

// TokenDecoder verifies a compact token. *jwtx.Codec implements it.
type TokenDecoder interface {
	Decode(token string) (jwtx.ClaimSet, error)
}

// BearerToken extracts the raw token from the Authorization header and
// stores it in the request context. A request without one gets a 401.
func BearerToken() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r)
			if !ok {
				WriteBearerError(w, "missing bearer token")
				return
			}
			ctx := context.WithValue(r.Context(), CtxKeyBearer, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authenticate decodes the bearer token with d and stores its claims in
// the request context. It must run after BearerToken.
func Authenticate(d TokenDecoder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			raw, ok := BearerFromContext(ctx)
			if !ok {
				WriteBearerError(w, "missing bearer token")
				return
			}

			claims, err := d.Decode(raw)
			if err != nil {
				slogx.FromContext(ctx).Info("bearer token rejected", "err", err)
				WriteBearerError(w, TokenErrorDescription(err))
				return
			}

			ctx = context.WithValue(ctx, CtxKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLevel rejects with 403 unless allowed accepts the authz claim of
// the authenticated token. It must run after Authenticate.
func RequireLevel(allowed func(granted int) bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				WriteBearerError(w, "missing bearer token")
				return
			}
			granted, ok := claims.Authz()
			if !ok || !allowed(granted) {
				w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope"`)
				WriteError(w, http.StatusForbidden, "insufficient_scope", "authorization level too low")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TokenErrorDescription is the challenge text for a token that failed to decode.
func TokenErrorDescription(err error) string {
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return "token expired"
	case errors.Is(err, jwtx.ErrIntegrity):
		return "token misses required claims"
	default:
		return "token could not be decoded"
	}
}

// WriteBearerError writes an RFC 6750 invalid_token challenge.
func WriteBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "invalid_token", desc)
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, raw, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}
