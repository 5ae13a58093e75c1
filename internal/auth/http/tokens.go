package http

import (
	"net/http"

	"github.com/aussiebroadwan/authgate/internal/auth/service"
	"github.com/aussiebroadwan/authgate/pkg/httpx"
)

// TokenHandler serves the bearer token endpoints. Both expect the refresh
// token as the bearer.
type TokenHandler struct {
	Tokens *service.TokenService
}

// HandleAccessToken issues an access token
//
//	@Summary		Get an access token
//	@Description	Returns an access token carrying the current authorization level of the refresh token subject.
//	@Tags			Tokens
//	@Produce		plain
//	@Success		200	{string}	string					"Access token"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Missing or invalid refresh token"
//	@Failure		406	{object}	authsdk.ErrorResponse	"text/plain not acceptable"
//	@Security		BearerAuth
//	@Router			/auth/accesstoken [get].
func (h *TokenHandler) HandleAccessToken(w http.ResponseWriter, r *http.Request) {
	refresh, _ := httpx.BearerFromContext(r.Context())

	token, err := h.Tokens.IssueAccessToken(r.Context(), refresh)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteText(w, http.StatusOK, token)
}

// HandleRefreshToken renews a refresh token
//
//	@Summary		Renew a refresh token
//	@Description	Returns the refresh token with a fresh expiry. Fails once the session is older than the maximum session age.
//	@Tags			Tokens
//	@Produce		plain
//	@Success		200	{string}	string					"Renewed refresh token"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Missing or invalid refresh token, or session expired"
//	@Failure		406	{object}	authsdk.ErrorResponse	"text/plain not acceptable"
//	@Security		BearerAuth
//	@Router			/auth/refreshtoken [post].
func (h *TokenHandler) HandleRefreshToken(w http.ResponseWriter, r *http.Request) {
	refresh, _ := httpx.BearerFromContext(r.Context())

	token, err := h.Tokens.RenewRefreshToken(r.Context(), refresh)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteText(w, http.StatusOK, token)
}
