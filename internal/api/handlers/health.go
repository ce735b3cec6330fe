// health.go — health endpoints: публичен /api/health и Kubernetes probes.
package handlers

import (
	"net/http"
	"time"

	"github.com/bgforms/declaration-service/internal/config"
)

// ReadinessChecker — проверка за готовност на компонент.
type ReadinessChecker interface {
	Ready() bool
}

// ReadinessFunc адаптира функция към ReadinessChecker.
type ReadinessFunc func() bool

func (f ReadinessFunc) Ready() bool { return f() }

// HealthHandler реализира /api/health, /health/live и /health/ready.
type HealthHandler struct {
	version string
	checks  []ReadinessChecker
}

// NewHealthHandler създава health обработчика.
// checks — проверки за готовност (рендериране, хранилище).
func NewHealthHandler(checks ...ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		version: config.Version,
		checks:  checks,
	}
}

// healthResponse — тяло на /api/health.
type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// Health обработва GET /api/health.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	code := http.StatusOK
	if !h.ready() {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, healthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Version:   h.version,
	})
}

// Live обработва GET /health/live — процесът е жив.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready обработва GET /health/ready — компонентите са готови да
// обслужват заявки.
func (h *HealthHandler) Ready(w http.ResponseWriter, _ *http.Request) {
	if !h.ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "fail"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) ready() bool {
	for _, c := range h.checks {
		if !c.Ready() {
			return false
		}
	}
	return true
}
