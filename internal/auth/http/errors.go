package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/authgate/internal/auth/domain"
	"github.com/aussiebroadwan/authgate/internal/auth/service"
	"github.com/aussiebroadwan/authgate/pkg/authsdk"
	"github.com/aussiebroadwan/authgate/pkg/httpx"
	"github.com/aussiebroadwan/authgate/pkg/jwtx"
	"github.com/aussiebroadwan/authgate/pkg/siam"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

// writeServiceError maps an error of the service layer onto a response.
// Gateway errors are already logged by pkg/siam and are not logged again.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, siam.ErrBadCredentials):
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeBadCredentials, "couldn't verify credentials")
	case errors.Is(err, siam.ErrTimeout):
		httpx.WriteError(w, http.StatusGatewayTimeout, authsdk.ErrorCodeGatewayTimeout, "identity provider timed out")
	case errors.Is(err, siam.ErrGateway):
		httpx.WriteError(w, http.StatusBadGateway, authsdk.ErrorCodeBadGateway, "identity provider unavailable")

	case errors.Is(err, service.ErrUnsupportedServer):
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeUnsupportedServer, "unsupported a-select-server")
	case errors.Is(err, service.ErrInvalidCallback),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrInvalidUsername):
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidLevel):
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidLevel, "invalid authorization level")

	case errors.Is(err, service.ErrSessionExpired):
		httpx.WriteBearerError(w, "session expired")
	case errors.Is(err, jwtx.ErrDecode),
		errors.Is(err, jwtx.ErrExpired),
		errors.Is(err, jwtx.ErrIntegrity):
		slogx.FromContext(r.Context()).Info("bearer token rejected", "err", err)
		httpx.WriteBearerError(w, httpx.TokenErrorDescription(err))

	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError, "internal server error")
	}
}
