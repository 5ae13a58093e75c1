package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/authgate/pkg/authsdk"
	"github.com/aussiebroadwan/authgate/pkg/httpx"
)

// Pinger reports whether a dependency is reachable. store.Store implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness checks.
type HealthHandler struct {
	StartTime time.Time
	Version   string
	Store     Pinger
	Signer    func() error // self-test of both token builders
}

func (h *HealthHandler) response(status string) authsdk.HealthResponse {
	return authsdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(h.StartTime).Round(time.Second).String(),
		Version: h.Version,
	}
}

// HandleLivez reports that the process is up
//
//	@Summary		Liveness check
//	@Description	Always 200 while the process serves requests. Dependencies are not checked.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func (h *HealthHandler) HandleLivez(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.response("ok"))
}

// HandleReadyz checks the authorization store and the token builders
//
//	@Summary		Readiness check
//	@Description	Pings the authorization store and signs and verifies a throwaway token with both builders.
//	@Description	The IdP is not contacted; it is checked once by the startup self-check.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"all checks ok"
//	@Failure		503	{object}	authsdk.HealthResponse	"at least one check failed"
//	@Router			/readyz [get].
func (h *HealthHandler) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	checks := &authsdk.HealthChecks{
		Database: outcome(h.Store.Ping(r.Context())),
		Signer:   outcome(h.Signer()),
	}

	resp := h.response("ok")
	resp.Checks = checks
	status := http.StatusOK
	if checks.Database != "ok" || checks.Signer != "ok" {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	httpx.WriteJSON(w, status, resp)
}

func outcome(err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
