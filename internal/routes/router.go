package routes

import (
	"log/slog"
	"net/http"

	"github.com/AnshRaj112/videotube-backend/internal/handlers"
	"github.com/AnshRaj112/videotube-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RouterOptions selects the optional middleware layers.
type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// Production enables security headers, the host check and the global per-IP limit.
	Production  bool
	AllowedHost string
	// RateLimiter is the Redis fixed-window limiter; nil when Redis is not configured.
	RateLimiter *middleware.RedisRateLimiter
}

// NewRouter builds the HTTP handler with the middleware stack in front of the routes.
func NewRouter(h *handlers.UserHandler, auth middleware.Authenticator, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(middleware.ClientIP)

	if opts.Production {
		for _, mw := range middleware.ProductionSecurity(opts.AllowedHost) {
			r.Use(mw)
		}
	}
	if opts.RateLimiter != nil {
		r.Use(opts.RateLimiter.Middleware)
	}
	r.Use(middleware.CredentialRateLimit(middleware.CredentialPaths))

	SetupRoutes(r, h, auth)
	return r
}
