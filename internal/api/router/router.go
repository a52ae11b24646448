// Package router assembles the HTTP surface: the LINE webhook, the
// automation callback, health, and metrics.
package router

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/buskerbot/permit-assistant/internal/events"
	"github.com/buskerbot/permit-assistant/internal/line"
	"github.com/buskerbot/permit-assistant/pkg/logging"
)

// CallbackHandler receives the automation service's completion report.
type CallbackHandler interface {
	HandleAutomationResult(ctx context.Context, res events.AutomationResult) error
}

// Config holds router configuration.
type Config struct {
	Logger         *logging.Logger
	LineWebhook    *line.WebhookHandler
	Automation     CallbackHandler
	MetricsHandler http.Handler
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/health", healthCheck)

	if cfg.LineWebhook != nil {
		r.Post("/webhooks/line", cfg.LineWebhook.HandleInbound)
	}
	if cfg.Automation != nil {
		r.Post("/webhooks/automation/callback", automationCallback(cfg.Automation, cfg.Logger))
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func automationCallback(handler CallbackHandler, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var res events.AutomationResult
		if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		if res.RequestID == "" {
			http.Error(w, "request_id is required", http.StatusBadRequest)
			return
		}

		if err := handler.HandleAutomationResult(r.Context(), res); err != nil {
			if logger != nil {
				logger.Error("automation callback failed",
					"request_id", res.RequestID,
					"error", err.Error(),
				)
			}
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
	}
}
