/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/zakat/*         Calculations, validation, type reference
  /api/calculations/*  Stored calculation history
  /api/payments/*      Payment records
  /api/reminders/*     Annual recalculation reminders
  /api/reports/*       Period reports
  /api/reset           Database reset (dev only)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Calculation routes
		r.Route("/zakat", func(r chi.Router) {
			r.Post("/cash", h.CalculateCash)
			r.Post("/gold", h.CalculateGold)
			r.Post("/silver", h.CalculateSilver)
			r.Post("/camels", h.CalculateCamels)
			r.Post("/cattle", h.CalculateCattle)
			r.Post("/sheep-goats", h.CalculateSheepGoats)
			r.Post("/crops", h.CalculateCrops)
			r.Post("/business-inventory", h.CalculateBusinessInventory)
			r.Post("/total", h.CalculateTotal)
			r.Post("/validate", h.ValidateAssets)

			r.Get("/types", h.ListZakatTypes)
			r.Get("/types/{code}", h.GetZakatType)
		})

		// Stored calculation routes
		r.Route("/calculations", func(r chi.Router) {
			r.Get("/", h.ListCalculations)
			r.Get("/{id}", h.GetCalculation)
		})

		// Payment routes
		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.ListPayments)
			r.Post("/", h.CreatePayment)
			r.Get("/{id}", h.GetPayment)
		})

		// Reminder routes
		r.Route("/reminders", func(r chi.Router) {
			r.Get("/", h.ListReminders)
			r.Post("/", h.CreateReminder)
			r.Get("/{id}", h.GetReminder)
			r.Delete("/{id}", h.DeleteReminder)
		})

		// Report routes
		r.Route("/reports", func(r chi.Router) {
			r.Get("/", h.ListReports)
			r.Post("/", h.CreateReport)
			r.Get("/{id}", h.GetReport)
		})

		// Admin
		r.Post("/reset", h.ResetDatabase)
	})

	return r
}
