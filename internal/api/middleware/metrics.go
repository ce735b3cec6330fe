// metrics.go — Prometheus HTTP метрики на Declaration Service.
// Регистрира ds_http_requests_total и ds_http_request_duration_seconds.
// Бизнес-метриките (генерирани декларации, retry на хранилището и др.)
// се регистрират в съответните пакети и се обновяват от сервизния слой.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общ брой HTTP заявки.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ds_http_requests_total",
			Help: "Общ брой HTTP заявки към Declaration Service",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — хистограма на продължителността на HTTP заявките.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ds_http_request_duration_seconds",
			Help:    "Продължителност на HTTP заявките към Declaration Service в секунди",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware връща HTTP middleware за събиране на Prometheus метрики.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Нормализиран път за лейблите (formId се заменя с {formId},
			// за да не расте кардиналността на метриките)
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// normalizePath заменя идентификатора на декларация с {formId}.
// /api/form/20240101123000_abc... → /api/form/{formId}
func normalizePath(path string) string {
	switch path {
	case "/api/health", "/health/live", "/health/ready", "/metrics", "/api/form/generate":
		return path
	}
	if strings.HasPrefix(path, "/api/form/") {
		return "/api/form/{formId}"
	}
	return path
}
