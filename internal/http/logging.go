package http

import (
	"log/slog"
	"net/http"

	"github.com/example/program-scheduler/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// requestLogger prefers the logger the middleware stored on the request and
// tags it with the handler, the action and the event the route is scoped to.
func requestLogger(r *http.Request, fallback *slog.Logger, handler, action string, attrs ...any) *slog.Logger {
	pairs := make([]any, 0, 6+len(attrs))
	pairs = append(pairs, "handler", handler)
	if action != "" {
		pairs = append(pairs, "action", action)
	}
	if eventID := eventIDFrom(r); eventID != "" {
		pairs = append(pairs, "event_id", eventID)
	}
	return logging.Scoped(r.Context(), fallback, append(pairs, attrs...)...)
}
