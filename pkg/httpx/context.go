package httpx

import (
	"context"

	"github.com/aussiebroadwan/authgate/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyBearer ctxKey = "bearer"
	CtxKeyClaims ctxKey = "claims"
)

// BearerFromContext returns the raw bearer token stored by BearerToken.
func BearerFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyBearer).(string)
	return v, ok && v != ""
}

// ClaimsFromContext returns the verified claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (jwtx.ClaimSet, bool) {
	v, ok := ctx.Value(CtxKeyClaims).(jwtx.ClaimSet)
	return v, ok
}
