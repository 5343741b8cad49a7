// Package httpapi assembles the public router. Domain handlers own their routes;
// this package only composes middleware and mounts them.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"crmdir/internal/platform/metrics"
	platformmw "crmdir/internal/platform/middleware"
	"crmdir/pkg/platform/httputil"
	authmw "crmdir/pkg/platform/middleware/auth"
	"crmdir/pkg/platform/middleware/request"
	"crmdir/pkg/platform/middleware/requesttime"
)

// Registrar is implemented by every domain handler.
type Registrar interface {
	Register(r chi.Router)
}

// Deps holds what the router needs from main.
type Deps struct {
	Logger         *slog.Logger
	Gatherer       prometheus.Gatherer
	Metrics        *metrics.Metrics
	Validator      authmw.TokenValidator
	AllowedOrigins []string
	// Handlers are mounted behind tenant authentication.
	Handlers []Registrar
}

// NewRouter wires the middleware chain, the unauthenticated operational
// endpoints and every tenant-scoped domain handler.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(logger))
	r.Use(request.Logger(logger))
	r.Use(requesttime.Middleware)
	if deps.Metrics != nil {
		r.Use(platformmw.Metrics(deps.Metrics))
	}
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", request.HeaderRequestID},
		ExposedHeaders:   []string{"Content-Disposition", request.HeaderRequestID},
	}).Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireTenant(deps.Validator, logger))
		for _, h := range deps.Handlers {
			h.Register(r)
		}
	})

	return r
}
