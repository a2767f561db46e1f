package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/service"
	"github.com/aussiebroadwan/tokengate/internal/auth/store"
	"github.com/aussiebroadwan/tokengate/pkg/httpx"
	"github.com/aussiebroadwan/tokengate/pkg/jwtx"
	"github.com/aussiebroadwan/tokengate/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/aussiebroadwan/tokengate/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// RateLimits are the buckets applied per route group.
type RateLimits struct {
	Login   httpx.RateLimitConfig
	Session httpx.RateLimitConfig
}

func DefaultRateLimits() RateLimits {
	return RateLimits{Login: httpx.StrictLimit, Session: httpx.ModerateLimit}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux     *http.ServeMux
	handler http.Handler

	keys         *jwtx.KeySet
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	Classifier  *service.Classifier
	Verifier    *service.Verifier
	Sessions    *service.SessionService
	Credentials *service.CredentialService

	// RevocationPinger is probed by /readyz when revocations live outside
	// the main store.
	RevocationPinger Pinger

	Metrics    *httpx.Metrics
	Gatherer   prometheus.Gatherer
	RateLimits RateLimits
}

func NewRouter(keys *jwtx.KeySet, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		RateLimits:   DefaultRateLimits(),
	}
}

// ApplyRoutes registers every route and builds the middleware chain. Call
// it once all service fields are set.
func (r *Router) ApplyRoutes() {
	r.registerTokens()
	r.registerResources()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())

	// The bearer filter replaces the request, so instrumentation sits
	// inside it to see the pattern the mux matched.
	var inner http.Handler = r.Mux
	if r.Metrics != nil {
		inner = r.Metrics.Instrument(inner)
	}
	r.handler = httpx.Chain(inner,
		slogx.HTTPMiddleware(r.logger),
		BearerFilter(r.Classifier, r.Verifier),
	)
}

// ServeHTTP implements http.Handler for Router.
//
//	@title			tokengate
//	@version		0.1.0
//	@description	Stateless bearer-token authentication: login with Basic credentials, refresh
//	@description	access tokens with a refresh token, and revoke a token family at logout.
//	@description
//	@description	Access tokens are EdDSA signed by default and can be verified with the JWKS endpoint.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8443
//	@BasePath		/
//	@schemes		http https
//
//	@securityDefinitions.basic	BasicAuth
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Access or refresh token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Router) registerTokens() {
	// POST /jwt/tokens - strict limit per IP and username against brute force
	login := &LoginHandler{Credentials: r.Credentials, Sessions: r.Sessions}
	r.Mux.Handle("POST /jwt/tokens",
		httpx.Chain(login,
			httpx.RateLimit(r.RateLimits.Login, httpx.CompositeKey("|", httpx.IPKey, httpx.BasicUserKey)),
		),
	)

	refresh := httpx.Chain(&RefreshHandler{Sessions: r.Sessions},
		httpx.RateLimit(r.RateLimits.Session, httpx.IPKey),
	)
	r.Mux.Handle("POST /jwt/refresh", refresh)
	r.Mux.Handle("POST /api/auth/refresh", refresh)

	r.Mux.Handle("POST /jwt/logout",
		httpx.Chain(&LogoutHandler{Sessions: r.Sessions},
			httpx.RateLimit(r.RateLimits.Session, httpx.IPKey),
		),
	)
}

func (r *Router) registerResources() {
	r.Mux.Handle("GET /api/protected", ProtectedHandler())
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.RevocationPinger, r.keys))
	r.Mux.Handle("GET /.well-known/jwks.json", JWKSHandler(r.keys))

	if r.Gatherer != nil {
		r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.Gatherer, promhttp.HandlerOpts{}))
	}
}
