package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ls-softworks/comitte/internal/comitte/service"
	"github.com/ls-softworks/comitte/internal/comitte/store"
	"github.com/ls-softworks/comitte/pkg/httpx"
	"github.com/ls-softworks/comitte/pkg/jwtx"
	"github.com/ls-softworks/comitte/pkg/sessionx"
	"github.com/ls-softworks/comitte/pkg/slogx"

	_ "github.com/ls-softworks/comitte/api/comitte" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// publicPrefixes lists the paths the authentication gate lets through
// untouched. Logout and session-status sit here on purpose: their handlers
// inspect the token themselves so a dead token still gets a well-formed
// response instead of a 401.
var publicPrefixes = []string{
	"/v1/auth/login",
	"/v1/auth/register",
	"/v1/auth/logout",
	"/v1/auth/session-status",
	"/v1/password/",
	"/swagger/",
	"/livez",
	"/readyz",
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	codec        *jwtx.Codec
	sessions     *sessionx.Tracker
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	validate     *validator.Validate

	store        store.Store
	AuthService  *service.AuthService
	ResetService *service.PasswordResetService
}

func NewRouter(
	codec *jwtx.Codec,
	sessions *sessionx.Tracker,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		codec:        codec,
		sessions:     sessions,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		validate:     validator.New(),
		store:        st,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.AuthnMiddleware(codec, sessions, publicPrefixes),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerPassword()
	r.registerProfile()
	r.registerRoles()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Comitte Identity Service API
//	@version		0.1.0
//	@description	Token-based authentication for the comitte committee backend.
//	@description
//	@description				Access tokens are HS512-signed JWTs. A server-side activity tracker
//	@description				revokes tokens on logout and expires sessions after inactivity.
//
//	@contact.name				LS Softworks
//	@contact.url				https://github.com/ls-softworks/comitte
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
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	loginHandler := &LoginHandler{AuthService: r.AuthService, Validate: r.validate}
	logoutHandler := &LogoutHandler{AuthService: r.AuthService}
	statusHandler := &SessionStatusHandler{AuthService: r.AuthService}
	registerHandler := &RegisterHandler{AuthService: r.AuthService, Validate: r.validate}

	// POST /login - strict rate limit (authentication attempts)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /register - strict rate limit (public signup endpoint)
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logoutHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/auth/session-status",
		httpx.Chain(statusHandler,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerPassword() {
	requestHandler := &PasswordResetRequestHandler{ResetService: r.ResetService, Validate: r.validate}
	resetHandler := &PasswordResetHandler{ResetService: r.ResetService, Validate: r.validate}

	r.Mux.Handle("POST /v1/password/request",
		httpx.Chain(requestHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/password/reset",
		httpx.Chain(resetHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerProfile() {
	h := &ProfileHandler{AuthService: r.AuthService, Validate: r.validate}

	r.Mux.Handle("GET /v1/me",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /v1/me",
		httpx.Chain(http.HandlerFunc(h.HandlePut),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerRoles() {
	h := &AssignRoleHandler{AuthService: r.AuthService, Validate: r.validate}

	r.Mux.Handle("POST /v1/members/{id}/roles",
		httpx.Chain(h,
			httpx.RequireAny("ROLE_ADMIN"),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
