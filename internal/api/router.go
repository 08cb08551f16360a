package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/notionmd/internal/metrics"
)

// Options configures the router.
type Options struct {
	// AuthMode is AuthModePassthrough or AuthModeStatic.
	AuthMode string
	// AuthToken is the secret clients present in static mode.
	AuthToken string
	// NotionToken is sent upstream in static mode.
	NotionToken string
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// NewRouter creates the service router: unauthenticated health and metrics
// endpoints plus the authenticated page routes.
func NewRouter(svc PageService, opts Options) chi.Router {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger, opts.Metrics))
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", Health)
	r.Get("/health/ready", Health)
	r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(opts.AuthMode, opts.AuthToken, opts.NotionToken))
		r.Get("/page/{id}", h.GetPage)
		r.Get("/page/*", rejectNestedID)
		r.Get("/database/{id}", h.ListDatabase)
		r.Get("/database/*", rejectNestedID)
	})

	return r
}
