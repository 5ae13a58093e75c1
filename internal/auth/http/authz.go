package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aussiebroadwan/authgate/internal/auth/domain"
	"github.com/aussiebroadwan/authgate/internal/auth/service"
	"github.com/aussiebroadwan/authgate/pkg/authsdk"
	"github.com/aussiebroadwan/authgate/pkg/httpx"
)

// AuthzHandler serves the authorization admin endpoints.
type AuthzHandler struct {
	Authz *service.AuthzService
}

func grantResponse(username string, level domain.Level) authsdk.AuthzGrant {
	return authsdk.AuthzGrant{
		Username:  username,
		Level:     int(level),
		LevelName: level.String(),
	}
}

// HandleGet returns the level of a username
//
//	@Summary		Get an authorization level
//	@Description	Unknown usernames are citizens. Requires employee plus.
//	@Tags			Authz
//	@Produce		json
//	@Param			username	path		string	true	"Username"
//	@Success		200			{object}	authsdk.AuthzGrant
//	@Failure		401			{object}	authsdk.ErrorResponse	"Missing or invalid access token"
//	@Failure		403			{object}	authsdk.ErrorResponse	"Authorization level too low"
//	@Security		BearerAuth
//	@Router			/auth/authz/{username} [get].
func (h *AuthzHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	level, err := h.Authz.Get(r.Context(), username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, grantResponse(username, level))
}

// HandlePut grants a level to a username
//
//	@Summary		Grant an authorization level
//	@Description	Accepts employee (1) and employee plus (3). Granting the current level is a no-op. Requires employee plus.
//	@Tags			Authz
//	@Accept			json
//	@Produce		json
//	@Param			username	path		string					true	"Username"
//	@Param			request		body		authsdk.SetAuthzRequest	true	"Level to grant"
//	@Success		200			{object}	authsdk.AuthzGrant
//	@Failure		400			{object}	authsdk.ErrorResponse	"Invalid level or body"
//	@Failure		401			{object}	authsdk.ErrorResponse	"Missing or invalid access token"
//	@Failure		403			{object}	authsdk.ErrorResponse	"Authorization level too low"
//	@Security		BearerAuth
//	@Router			/auth/authz/{username} [put].
func (h *AuthzHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	var req authsdk.SetAuthzRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "invalid JSON body")
		return
	}

	level := domain.Level(req.Level)
	if _, err := h.Authz.Set(r.Context(), username, level); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, grantResponse(username, level))
}

// HandleDelete revokes the grant of a username
//
//	@Summary		Revoke an authorization level
//	@Description	Returns the username to citizen. Revoking an unknown username is a no-op. Requires employee plus.
//	@Tags			Authz
//	@Param			username	path	string	true	"Username"
//	@Success		204			"Revoked"
//	@Failure		401			{object}	authsdk.ErrorResponse	"Missing or invalid access token"
//	@Failure		403			{object}	authsdk.ErrorResponse	"Authorization level too low"
//	@Security		BearerAuth
//	@Router			/auth/authz/{username} [delete].
func (h *AuthzHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Authz.Delete(r.Context(), r.PathValue("username")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleList lists every explicit grant
//
//	@Summary		List authorization grants
//	@Description	Requires employee plus.
//	@Tags			Authz
//	@Produce		json
//	@Success		200	{object}	authsdk.ListAuthzResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"Missing or invalid access token"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Authorization level too low"
//	@Security		BearerAuth
//	@Router			/auth/authz [get].
func (h *AuthzHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	grants, err := h.Authz.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := authsdk.ListAuthzResponse{
		Grants: make([]authsdk.AuthzGrant, len(grants)),
		Count:  len(grants),
	}
	for i, g := range grants {
		resp.Grants[i] = grantResponse(g.Username, g.Level)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleAudit returns the audit trail of a username
//
//	@Summary		Authorization audit trail
//	@Description	Every grant and revocation of a username, oldest first. Requires employee plus.
//	@Tags			Authz
//	@Produce		json
//	@Param			username	path		string	true	"Username"
//	@Success		200			{object}	authsdk.AuthzAuditResponse
//	@Failure		401			{object}	authsdk.ErrorResponse	"Missing or invalid access token"
//	@Failure		403			{object}	authsdk.ErrorResponse	"Authorization level too low"
//	@Security		BearerAuth
//	@Router			/auth/authz/{username}/audit [get].
func (h *AuthzHandler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	entries, err := h.Authz.History(r.Context(), username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := authsdk.AuthzAuditResponse{
		Username: username,
		Entries:  make([]authsdk.AuthzAuditEntry, len(entries)),
	}
	for i, e := range entries {
		resp.Entries[i] = authsdk.AuthzAuditEntry{
			ID:        e.ID,
			Username:  e.Username,
			Level:     int(e.Level),
			Active:    e.Active,
			Timestamp: e.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
