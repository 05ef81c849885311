package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterConfig wires the handlers served under /events/{eventID}. Nil
// handlers leave their routes unmounted.
type RouterConfig struct {
	Program    *ProgramHandler
	Reminders  *ReminderHandler
	Catalog    *CatalogHandler
	Logger     *slog.Logger
	Middleware []func(http.Handler) http.Handler
}

// NewRouter builds the API router with request ids, request logging, panic
// recovery and a /health heartbeat.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	for _, mw := range cfg.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.Route("/events/{eventID}", func(r chi.Router) {
		if cfg.Program != nil {
			cfg.Program.RegisterRoutes(r)
		}
		if cfg.Reminders != nil {
			cfg.Reminders.RegisterRoutes(r)
		}
		if cfg.Catalog != nil {
			cfg.Catalog.RegisterRoutes(r)
		}
	})

	return r
}
