package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

// Scheme names as they appear in the Authorization header.
const (
	SchemeBasic  = "Basic"
	SchemeBearer = "Bearer"
)

// Role names used by the gated sample routes.
const (
	RoleAdmin   = "Admin"
	RoleManager = "Manager"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	TokenService *service.TokenService
	Validator    *service.CredentialValidator
	Credentials  store.Credentials

	// StrictLimit throttles login and refresh per client IP. Password checks
	// through the Basic scheme draw from the same bucket as login.
	StrictLimit httpx.RateLimitConfig

	passwordLimit httpx.Middleware
}

func NewRouter(buildVersion string, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		StrictLimit:  httpx.StrictLimit,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.passwordLimit = httpx.RateLimitByIP(r.StrictLimit)

	r.registerAuth()
	r.registerResources()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// basicLimit throttles requests that present a password via Basic auth.
func (r *Router) basicLimit() httpx.Middleware {
	return httpx.When(httpx.HasAuthScheme(SchemeBasic), r.passwordLimit)
}

func (r *Router) registerAuth() {
	schemes := r.schemes()

	// POST /login and /refresh - strict rate limit (credential and token guessing)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(&LoginHandler{TokenService: r.TokenService},
			r.passwordLimit,
		),
	)
	r.Mux.Handle("POST /api/auth/refresh",
		httpx.Chain(&RefreshHandler{TokenService: r.TokenService},
			httpx.RateLimitByIP(r.StrictLimit),
		),
	)

	r.Mux.Handle("POST /api/auth/logout", &LogoutHandler{TokenService: r.TokenService})

	// Signing out everywhere needs a token-holder, not a password-holder
	r.Mux.Handle("POST /api/auth/logout-all",
		httpx.Chain(&LogoutAllHandler{TokenService: r.TokenService},
			httpx.AuthnMiddleware(schemes.Only(SchemeBearer)),
		),
	)

	r.Mux.Handle("GET /api/auth/me",
		httpx.Chain(http.HandlerFunc(MeHandler),
			r.basicLimit(),
			httpx.AuthnMiddleware(schemes),
		),
	)
}

func (r *Router) registerResources() {
	schemes := r.schemes()

	r.Mux.Handle("GET /api/public", http.HandlerFunc(PublicHandler))

	r.Mux.Handle("GET /api/users",
		httpx.Chain(&UsersHandler{Credentials: r.Credentials},
			r.basicLimit(),
			httpx.AuthnMiddleware(schemes),
			httpx.RequireAnyRole(RoleAdmin),
		),
	)

	r.Mux.Handle("GET /api/reports",
		httpx.Chain(http.HandlerFunc(ReportsHandler),
			r.basicLimit(),
			httpx.AuthnMiddleware(schemes),
			httpx.RequireAnyRole(RoleManager, RoleAdmin),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.TokenService.RefreshTokens))
}
