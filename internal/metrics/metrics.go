package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "machinery"

// Metrics: счётчики сервиса на собственном реестре (не глобальном).
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	analyses      *prometheus.CounterVec
	subsystemErrs *prometheus.CounterVec
	aliasIssues   prometheus.Gauge
}

func New() (*Metrics, error) {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Completed analyses by kind and outcome.",
		}, []string{"kind", "outcome"}),
		subsystemErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subsystem_errors_total",
			Help:      "Subsystem checks that could not be computed.",
		}, []string{"subsystem"}),
		aliasIssues: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alias_table_issues",
			Help:      "Problems found while loading the alias table.",
		}),
	}

	for _, c := range []prometheus.Collector{m.httpRequests, m.httpDuration, m.analyses, m.subsystemErrs, m.aliasIssues} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return m, nil
}

// Handler: /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

func (m *Metrics) ObserveHTTP(route, method string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(dur.Seconds())
}

func (m *Metrics) Analysis(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.analyses.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) SubsystemError(label string) {
	if m == nil {
		return
	}
	m.subsystemErrs.WithLabelValues(label).Inc()
}

func (m *Metrics) SetAliasIssues(n int) {
	if m == nil {
		return
	}
	m.aliasIssues.Set(float64(n))
}
