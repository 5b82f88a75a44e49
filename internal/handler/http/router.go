package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bcart01v/atlas-cinema-guru/internal/domain"
	"github.com/bcart01v/atlas-cinema-guru/pkg/health"
	"github.com/bcart01v/atlas-cinema-guru/pkg/middleware"
)

const genresMaxAge = 300

// RouterConfig carries everything NewRouter mounts.
type RouterConfig struct {
	ServiceName    string
	Library        LibraryService
	Catalog        CatalogService
	Activities     ActivityService
	TokenValidator middleware.TokenValidator
	Health         *health.Handler
	// RateLimiter guards the write routes. Nil disables limiting.
	RateLimiter *middleware.RateLimiter
	CORS        middleware.CORSConfig
	PprofCIDRs  []string
	Logger      *slog.Logger
}

// NewRouter creates a chi router with all cinema guru routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	logger := cfg.Logger

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	library := NewLibraryHandler(cfg.Library, logger)
	catalog := NewCatalogHandler(cfg.Catalog, cfg.Activities, logger)

	writeLimit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimiter != nil {
		writeLimit = cfg.RateLimiter.Middleware
	}

	// Every /api route requires an identity; the gate runs before any
	// parameter is looked at.
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.TokenValidator))

		mountList := func(path string, kind domain.ListKind) {
			r.Get(path, library.List(kind))
			r.With(writeLimit).Post(path+"/{movieId}", library.Toggle(kind))
			r.With(writeLimit).Delete(path+"/{movieId}", library.Remove(kind))
		}
		mountList("/favorites", domain.KindFavorites)
		mountList("/watch-later", domain.KindWatchLater)

		r.Get("/titles", catalog.Titles)
		r.With(middleware.CacheControl(genresMaxAge)).Get("/genres", catalog.Genres)
		r.Get("/activities", catalog.Activities)
	})

	return r
}
