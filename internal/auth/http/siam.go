package http

import (
	"net/http"

	"github.com/aussiebroadwan/authgate/internal/auth/service"
	"github.com/aussiebroadwan/authgate/pkg/authsdk"
	"github.com/aussiebroadwan/authgate/pkg/httpx"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

// SiamHandler serves the login flow against the SIAM IdP.
type SiamHandler struct {
	Sessions *service.SessionService
}

// HandleAuthenticate redirects to the IdP login
//
//	@Summary		Start a login
//	@Description	Redirects the user agent to the IdP. The login is passive unless the active parameter is present.
//	@Description	After the login the IdP redirects to callback with aselect_credentials, rid and a-select-server appended.
//	@Tags			SIAM
//	@Param			callback	query	string	true	"URL the IdP redirects back to"
//	@Param			active		query	string	false	"Present to force a login prompt"
//	@Success		307			"Redirect to the IdP"
//	@Failure		400			{object}	authsdk.ErrorResponse	"Missing callback"
//	@Failure		502			{object}	authsdk.ErrorResponse	"IdP unavailable"
//	@Failure		504			{object}	authsdk.ErrorResponse	"IdP timed out"
//	@Router			/auth/siam/authenticate [get].
func (h *SiamHandler) HandleAuthenticate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// Query already decoded callback once; its own query stays encoded.
	redirect, err := h.Sessions.IssueAuthnRedirect(r.Context(), !q.Has("active"), q.Get("callback"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}

// HandleToken exchanges IdP credentials for a refresh token
//
//	@Summary		Get a refresh token
//	@Description	Verifies the credentials the IdP appended to the callback and returns a signed refresh token.
//	@Tags			SIAM
//	@Produce		plain
//	@Param			aselect_credentials	query		string	true	"Credentials from the IdP"
//	@Param			rid					query		string	true	"Request id from the IdP"
//	@Param			a-select-server		query		string	true	"A-select server from the IdP"
//	@Success		200					{string}	string	"Refresh token"
//	@Failure		400					{object}	authsdk.ErrorResponse	"Missing parameter, unsupported a-select-server or bad credentials"
//	@Failure		406					{object}	authsdk.ErrorResponse	"text/plain not acceptable"
//	@Failure		502					{object}	authsdk.ErrorResponse	"IdP unavailable"
//	@Failure		504					{object}	authsdk.ErrorResponse	"IdP timed out"
//	@Router			/auth/siam/token [get].
func (h *SiamHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	token, err := h.Sessions.VerifyAndIssueRefreshToken(r.Context(),
		q.Get("aselect_credentials"),
		q.Get("rid"),
		q.Get("a-select-server"),
	)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteText(w, http.StatusOK, token)
}

// HandleRenew extends the IdP session
//
//	@Summary		Renew the IdP session
//	@Tags			SIAM
//	@Param			aselect_credentials	query	string	true	"Credentials from the IdP"
//	@Success		204					"Session renewed"
//	@Failure		400					{object}	authsdk.ErrorResponse	"Session could not be renewed"
//	@Failure		502					{object}	authsdk.ErrorResponse	"IdP unavailable"
//	@Router			/auth/siam/renew [post].
func (h *SiamHandler) HandleRenew(w http.ResponseWriter, r *http.Request) {
	ok, err := h.Sessions.RenewSession(r.Context(), r.URL.Query().Get("aselect_credentials"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "session could not be renewed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleLogout ends the IdP session
//
//	@Summary		End the IdP session
//	@Description	Best effort: the IdP status is logged but not interpreted.
//	@Tags			SIAM
//	@Param			aselect_credentials	query	string	true	"Credentials from the IdP"
//	@Success		204					"Logout sent"
//	@Failure		502					{object}	authsdk.ErrorResponse	"IdP unavailable"
//	@Router			/auth/siam/logout [post].
func (h *SiamHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	status, err := h.Sessions.EndSession(r.Context(), r.URL.Query().Get("aselect_credentials"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	slogx.FromContext(r.Context()).Info("idp session ended", "status", status)
	w.WriteHeader(http.StatusNoContent)
}
