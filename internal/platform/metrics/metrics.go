// Package metrics exposes Prometheus metrics for the HTTP API and the daily analysis batch.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered on one registry.
type Metrics struct {
	gatherer prometheus.Gatherer

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge

	batchRuns     *prometheus.CounterVec
	batchItems    *prometheus.CounterVec
	batchDuration prometheus.Histogram
}

// NewMetrics registers all collectors on reg. A nil reg uses a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		gatherer: reg,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method", "class"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "Current number of in-flight HTTP requests",
		}),
		batchRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "daily_analysis_batch_runs_total",
				Help: "Completed daily analysis batch runs",
			},
			[]string{"outcome"},
		),
		batchItems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "daily_analysis_batch_items_total",
				Help: "Instruments processed by the daily analysis batch",
			},
			[]string{"result"},
		),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "daily_analysis_batch_duration_seconds",
			Help:    "Wall time of one daily analysis batch run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.inFlight, m.batchRuns, m.batchItems, m.batchDuration)
	return m
}

// Middleware records request metrics labelled by route template to keep cardinality low.
// Unmatched routes are recorded as "unmatched".
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.inFlight.Inc()
		start := time.Now()

		c.Next()

		m.inFlight.Dec()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		method := c.Request.Method
		m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(route, method, statusClass(status)).Observe(time.Since(start).Seconds())
	}
}

// ObserveBatch records the outcome of one daily batch run.
func (m *Metrics) ObserveBatch(success, failed int, elapsed time.Duration) {
	outcome := "ok"
	if failed > 0 {
		outcome = "partial"
		if success == 0 {
			outcome = "failed"
		}
	}
	m.batchRuns.WithLabelValues(outcome).Inc()
	m.batchItems.WithLabelValues("success").Add(float64(success))
	m.batchItems.WithLabelValues("failed").Add(float64(failed))
	m.batchDuration.Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func statusClass(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
