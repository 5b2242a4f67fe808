/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the citizen portal

ROUTE GROUPS:
  /api/water-tax/*      Penalty, summary, reminder, payment
  /api/reminders/*      Batch planning and dispatch
  /api/tariff           Active tariff
  /healthz              Liveness
  /metrics              Prometheus exposition

SECURITY NOTE:
  No authentication middleware. Deploy behind the municipal gateway.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultCORSOrigins is used when no origins are configured.
var DefaultCORSOrigins = []string{"http://localhost:5173", "http://localhost:3000"}

// NewRouter creates a new router with all routes configured. When gatherer
// is nil /metrics is not mounted.
func NewRouter(h *Handler, corsOrigins []string, gatherer prometheus.Gatherer) *chi.Mux {
	if len(corsOrigins) == 0 {
		corsOrigins = DefaultCORSOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.Health)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/water-tax", func(r chi.Router) {
			r.Post("/quarters/{quarter}/penalty", h.QuarterPenalty)
			r.Post("/summary", h.Summary)
			r.Post("/breakdown", h.Breakdown)
			r.Post("/reminder", h.Reminder)
			r.Post("/payments", h.RecordPayment)
			r.Post("/projection", h.Projection)
		})

		r.Route("/reminders", func(r chi.Router) {
			r.Post("/plan", h.PlanReminders)
			r.Post("/send", h.SendReminders)
		})

		r.Get("/tariff", h.GetTariff)
	})

	return r
}
