package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/audit"
	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/service"
	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/store"
	"github.com/mochizuki1122m/shodo-lpr/pkg/httpx"
	"github.com/mochizuki1122m/shodo-lpr/pkg/jwtx"
	"github.com/mochizuki1122m/shodo-lpr/pkg/slogx"

	_ "github.com/mochizuki1122m/shodo-lpr/api/lpr" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	ring         *jwtx.Keyring
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	failover store.ModeReporter
	audit    audit.Sink

	Issuer   *service.Issuer
	Revoker  *service.Revoker
	Limiter  *service.Limiter
	Sessions *service.SessionGrantor

	// VerifyService backs the public verify API; it reports the token's
	// audience without enforcing one. EnforceService is pinned to the
	// service this deployment fronts and guards the gateway.
	VerifyService  *service.Verifier
	EnforceService *service.Verifier

	// Upstream is what the enforcement pipeline forwards to. Nil disables
	// the gateway routes entirely.
	Upstream     http.Handler
	RedactFields []string
	ExemptPaths  []string
	JitterMax    time.Duration
}

func NewRouter(
	ring *jwtx.Keyring,
	buildVersion string,
	st store.Store,
	failover store.ModeReporter,
	sink audit.Sink,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		ring:         ring,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		failover:     failover,
		audit:        sink,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerLPR()
	r.registerSessions()
	r.registerGateway()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Shodo Limited Proxy Rights API
//	@version		0.1.0
//	@description	Issues, verifies, and revokes short-lived scoped delegation tokens so an automated
//	@description	agent can act on a user's behalf without ever holding their primary credentials.
//	@description
//	@description	Tokens are signed JWTs carrying the lpr_ prefix, bound to an explicit scope list and
//	@description	optionally a device fingerprint, rate limited by their own embedded policy, and
//	@description	revocable at any time by jti.
//
//	@contact.name				Shodo Team
//	@contact.url				https://github.com/mochizuki1122m/shodo-lpr
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
//	@description				Delegation token. Format: "Bearer lpr_{token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerLPR() {
	// POST /issue - strict rate limit by IP (mints credentials)
	issueHandler := &IssueHandler{Issuer: r.Issuer, Sessions: r.Sessions}
	r.Mux.Handle("POST /v1/lpr/issue",
		httpx.Chain(http.HandlerFunc(issueHandler.Issue),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /verify - moderate rate limit (resource servers call this per request)
	verifyHandler := &VerifyHandler{Verifier: r.VerifyService, Audit: r.audit}
	r.Mux.Handle("POST /v1/lpr/verify",
		httpx.Chain(http.HandlerFunc(verifyHandler.Verify),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /revoke - moderate rate limit
	revokeHandler := &RevokeHandler{Revoker: r.Revoker}
	r.Mux.Handle("POST /v1/lpr/revoke",
		httpx.Chain(http.HandlerFunc(revokeHandler.Revoke),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// GET /status/{jti} - lenient rate limit (dashboards poll this)
	statusHandler := &StatusHandler{Revoker: r.Revoker}
	r.Mux.Handle("GET /v1/lpr/status/{jti}",
		httpx.Chain(http.HandlerFunc(statusHandler.Status),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSessions() {
	// POST /session - strict rate limit by IP (collaborator-only endpoint)
	sessionHandler := &SessionHandler{Grants: r.Sessions}
	r.Mux.Handle("POST /v1/lpr/session",
		httpx.Chain(sessionHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerGateway() {
	if r.Upstream == nil {
		return
	}

	guard := Enforce(EnforceConfig{
		Verifier:     r.EnforceService,
		Limiter:      r.Limiter,
		Audit:        r.audit,
		Mode:         r.failover,
		RedactFields: r.RedactFields,
		ExemptPaths:  r.ExemptPaths,
		JitterMax:    r.JitterMax,
	})

	// Strip the mount prefix before enforcement so scope patterns match
	// the upstream's paths, not /proxy/-prefixed ones.
	r.Mux.Handle("/proxy/", http.StripPrefix("/proxy", guard(r.Upstream)))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.ring, r.failover),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// Public key discovery for resource servers that verify locally.
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.ring),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
