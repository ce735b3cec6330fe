// handler.go — APIHandler събира доменните обработчици и регистрира
// маршрутите върху chi router.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIHandler — единен обработчик на всички endpoints.
type APIHandler struct {
	forms  *FormsHandler
	health *HealthHandler
}

// NewAPIHandler създава единния обработчик.
func NewAPIHandler(forms *FormsHandler, health *HealthHandler) *APIHandler {
	return &APIHandler{
		forms:  forms,
		health: health,
	}
}

// Routes регистрира всички маршрути върху router-а.
func (h *APIHandler) Routes(r chi.Router) {
	r.Post("/api/form/generate", h.forms.Generate)
	r.Get("/api/form/{formId}", h.forms.Retrieve)

	r.Get("/api/health", h.health.Health)
	r.Get("/health/live", h.health.Live)
	r.Get("/health/ready", h.health.Ready)

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}
