package middleware

import (
	"net/http"
	"time"

	"machinery-service/internal/metrics"
)

// Metrics считает запросы по шаблону маршрута, чтобы не плодить метки на каждый путь.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := wrap(w)
			next.ServeHTTP(sw, r)
			m.ObserveHTTP(routePattern(r), r.Method, sw.status, time.Since(start))
		})
	}
}
