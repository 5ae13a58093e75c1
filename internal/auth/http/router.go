package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aussiebroadwan/authgate/internal/auth/domain"
	"github.com/aussiebroadwan/authgate/internal/auth/service"
	"github.com/aussiebroadwan/authgate/pkg/httpx"
	"github.com/aussiebroadwan/authgate/pkg/jwtx"
	"github.com/aussiebroadwan/authgate/pkg/slogx"

	_ "github.com/aussiebroadwan/authgate/api/authgate" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	mimeText = "text/plain"
	mimeJSON = "application/json"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    Pinger
	access   *jwtx.AccessBuilder
	gatherer prometheus.Gatherer

	SessionService *service.SessionService
	TokenService   *service.TokenService
	AuthzService   *service.AuthzService
	SelfCheck      *service.SelfCheck

	// RateLimits replaces the default per-route limits when set.
	RateLimits *RateLimits
}

// RateLimits are the per-IP limits of each route group. The credential
// exchange caps each IP with Tokens and each IP and credential pair with Login.
type RateLimits struct {
	Login  httpx.RateLimitConfig
	Tokens httpx.RateLimitConfig
	Admin  httpx.RateLimitConfig
	Health httpx.RateLimitConfig
}

// DefaultRateLimits is used when Router.RateLimits is nil.
var DefaultRateLimits = RateLimits{
	Login:  httpx.StrictLimit,
	Tokens: httpx.ModerateLimit,
	Admin:  httpx.ModerateLimit,
	Health: httpx.LenientLimit,
}

func NewRouter(
	access *jwtx.AccessBuilder,
	buildVersion string,
	st Pinger,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		access:       access,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		gatherer:     gatherer,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSiam()
	r.registerTokens()
	r.registerAuthz()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			authgate Authentication Gateway API
//	@version		0.1.0
//	@description	Delegates logins to a SIAM (a-select) identity provider and issues HMAC signed JWTs.
//	@description
//	@description				A refresh token carries the verified subject; an access token carries its authorization level.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/authgate
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Refresh token for the token endpoints, access token for the authz endpoints. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) limits() RateLimits {
	if r.RateLimits != nil {
		return *r.RateLimits
	}
	return DefaultRateLimits
}

func (r *Router) registerSiam() {
	h := &SiamHandler{Sessions: r.SessionService}
	limits := r.limits()

	// GET /authenticate - redirect to the IdP
	r.Mux.Handle("GET /auth/siam/authenticate",
		httpx.Chain(http.HandlerFunc(h.HandleAuthenticate),
			httpx.RateLimitByIP(limits.Login),
			httpx.RequireQuery("callback"),
		),
	)

	// GET /token - each call hits the IdP. The per-IP ceiling holds however
	// the credentials rotate; replaying one credential is limited strictly.
	r.Mux.Handle("GET /auth/siam/token",
		httpx.Chain(http.HandlerFunc(h.HandleToken),
			httpx.RateLimitByIP(limits.Tokens),
			httpx.RateLimitByIPAndQuery(limits.Login, "aselect_credentials"),
			httpx.Acceptable(mimeText),
			httpx.RequireQuery("aselect_credentials", "rid", "a-select-server"),
			httpx.ResponseMimetype(mimeText),
		),
	)

	r.Mux.Handle("POST /auth/siam/renew",
		httpx.Chain(http.HandlerFunc(h.HandleRenew),
			httpx.RateLimitByIP(limits.Login),
			httpx.RequireQuery("aselect_credentials"),
		),
	)
	r.Mux.Handle("POST /auth/siam/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(limits.Login),
			httpx.RequireQuery("aselect_credentials"),
		),
	)
}

func (r *Router) registerTokens() {
	h := &TokenHandler{Tokens: r.TokenService}
	limits := r.limits()

	// The refresh token is decoded by the service, not by middleware, so
	// that it is decoded with the refresh configuration exactly once.
	r.Mux.Handle("GET /auth/accesstoken",
		httpx.Chain(http.HandlerFunc(h.HandleAccessToken),
			httpx.RateLimitByIP(limits.Tokens),
			httpx.Acceptable(mimeText),
			httpx.ResponseMimetype(mimeText),
			httpx.BearerToken(),
		),
	)
	r.Mux.Handle("POST /auth/refreshtoken",
		httpx.Chain(http.HandlerFunc(h.HandleRefreshToken),
			httpx.RateLimitByIP(limits.Tokens),
			httpx.Acceptable(mimeText),
			httpx.ResponseMimetype(mimeText),
			httpx.BearerToken(),
		),
	)
}

func (r *Router) registerAuthz() {
	h := &AuthzHandler{Authz: r.AuthzService}
	limits := r.limits()

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.RateLimitByIP(limits.Admin),
			httpx.Acceptable(mimeJSON),
			httpx.BearerToken(),
			httpx.Authenticate(r.access),
			httpx.RequireLevel(func(granted int) bool {
				return domain.IsAuthorized(domain.Level(granted), domain.LevelEmployeePlus)
			}),
		)
	}

	r.Mux.Handle("GET /auth/authz", secured(h.HandleList))
	r.Mux.Handle("GET /auth/authz/{username}", secured(h.HandleGet))
	r.Mux.Handle("PUT /auth/authz/{username}", secured(h.HandlePut))
	r.Mux.Handle("DELETE /auth/authz/{username}", secured(h.HandleDelete))
	r.Mux.Handle("GET /auth/authz/{username}/audit", secured(h.HandleAudit))
}

func (r *Router) registerSystem() {
	limits := r.limits()

	h := &HealthHandler{
		StartTime: r.startTime,
		Version:   r.buildVersion,
		Store:     r.store,
		Signer:    func() error { return nil },
	}
	if r.SelfCheck != nil {
		h.Signer = r.SelfCheck.Tokens
	}

	// Monitoring may poll these often, hence the lenient limit.
	health := httpx.RateLimitByIP(limits.Health)
	r.Mux.Handle("GET /livez", httpx.Chain(http.HandlerFunc(h.HandleLivez), health))
	r.Mux.Handle("GET /readyz", httpx.Chain(http.HandlerFunc(h.HandleReadyz), health))

	if r.gatherer != nil {
		r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
	}
}
