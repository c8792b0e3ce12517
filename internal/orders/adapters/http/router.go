package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig carries the optional pieces of the API router.
type RouterConfig struct {
	Logger         *slog.Logger
	Metrics        *Metrics
	MetricsPath    string
	MetricsHandler http.Handler
}

// NewRouter builds the API router around the order handler.
func NewRouter(handler *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.Logger != nil {
		r.Use(WithLogging(cfg.Logger))
	}
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(WithMetrics(cfg.Metrics))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.MetricsHandler != nil && cfg.MetricsPath != "" {
		r.Method(http.MethodGet, cfg.MetricsPath, cfg.MetricsHandler)
	}

	handler.Register(r)
	return r
}
