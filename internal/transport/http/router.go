package http

import (
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/microfix/dashboard/internal/config"
	"github.com/microfix/dashboard/internal/constants"
	"github.com/microfix/dashboard/internal/infrastructure/telemetry"
	"github.com/microfix/dashboard/internal/processing/links"
	"github.com/microfix/dashboard/internal/transport/http/middleware"
	"github.com/microfix/dashboard/pkg/httputils"
)

var spanNames = map[string]string{
	"GET /api/health":        "health",
	"GET /metrics":           "metrics",
	"GET /api/links":         "links.list",
	"POST /api/links":        "links.create",
	"PUT /api/links/{id}":    "links.update",
	"DELETE /api/links/{id}": "links.delete",
	"POST /api/setup-db":     "links.setup_db",
	"GET /":                  "static",
}

type RouterOptions struct {
	EnableCORS    bool
	EnableLogging bool
	EnableMetrics bool
}

func DefaultRouterOptions() RouterOptions {
	return RouterOptions{
		EnableCORS:    true,
		EnableLogging: true,
		EnableMetrics: true,
	}
}

func NewRouter(cfg *config.Config, linkService *links.Service, limiter *middleware.WriteLimiter) http.Handler {
	return NewRouterWithOptions(cfg, linkService, limiter, DefaultRouterOptions())
}

func NewRouterWithOptions(cfg *config.Config, linkService *links.Service, limiter *middleware.WriteLimiter, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()

	healthHandler := NewHealthHandler()
	linksHandler := NewLinksHandler(linkService)

	mux.HandleFunc("GET /api/health", healthHandler.Health)
	mux.Handle("GET /metrics", healthHandler.Metrics())

	mux.HandleFunc("GET /api/links", linksHandler.List)
	mux.HandleFunc("POST /api/links", linksHandler.Create)
	mux.HandleFunc("PUT /api/links/{id}", linksHandler.Update)
	mux.HandleFunc("DELETE /api/links/{id}", linksHandler.Delete)
	mux.HandleFunc("POST /api/setup-db", linksHandler.SetupDB)

	if cfg.Server.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(cfg.Server.StaticDir)))
	} else {
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			httputils.WriteAPIError(w, r, constants.ErrNotFound)
		})
	}

	var chain []func(http.Handler) http.Handler
	if cfg.RateLimit.TrustProxyHeaders {
		chain = append(chain, chimiddleware.RealIP)
	}
	chain = append(chain, middleware.RateLimitMiddleware(limiter), chimiddleware.Recoverer)

	var innerHandler http.Handler = middleware.Chain(mux, chain...)
	if opts.EnableCORS {
		innerHandler = middleware.CORSMiddleware(middleware.NewOriginPolicy(cfg.CORS))(innerHandler)
	}
	if opts.EnableLogging {
		innerHandler = middleware.LoggingMiddleware(innerHandler)
	}
	if opts.EnableMetrics {
		innerHandler = middleware.MetricsMiddleware(innerHandler)
	}

	otelOptions := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			key := r.Method + " " + r.Pattern
			if name, ok := spanNames[key]; ok {
				return name
			}
			if r.Pattern != "" {
				return r.Pattern
			}
			path := strings.TrimSpace(r.URL.Path)
			if path == "" {
				path = "/"
			}
			return path
		}),
	}

	if telemetry.TracerProvider != nil {
		otelOptions = append(otelOptions, otelhttp.WithTracerProvider(telemetry.TracerProvider))
	}

	return otelhttp.NewHandler(innerHandler, cfg.App.Name, otelOptions...)
}
