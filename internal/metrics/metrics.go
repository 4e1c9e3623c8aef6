// Package metrics exposes Prometheus collectors for the HTTP API and complaint events.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hostelfix/backend/internal/models"
)

const namespace = "hostelfix"

type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	ComplaintsCreated     *prometheus.CounterVec
	ComplaintStatusUpdate *prometheus.CounterVec
	ComplaintsDeleted     prometheus.Counter

	registry *prometheus.Registry
}

// New creates the collectors on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		HTTPRequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		ComplaintsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "complaints_created_total",
				Help:      "Complaints submitted, by category",
			},
			[]string{"category"},
		),
		ComplaintStatusUpdate: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "complaint_status_updates_total",
				Help:      "Complaint status changes, by new status",
			},
			[]string{"status"},
		),
		ComplaintsDeleted: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "complaints_deleted_total",
				Help:      "Complaints deleted",
			},
		),
		registry: reg,
	}
}

// Registry is exposed so tests and extra collectors can reach it.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// RegisterFeedClients exports the live feed subscriber count.
func (m *Metrics) RegisterFeedClients(count func() int) {
	promauto.With(m.registry).NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_connections_active",
			Help:      "Active complaint feed websocket connections",
		},
		func() float64 { return float64(count()) },
	)
}

// Middleware records request counts and latency labelled by the matched
// route template, never the raw path.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Publish counts complaint events. It satisfies complaint.Publisher.
func (m *Metrics) Publish(_ context.Context, e models.ComplaintEvent) error {
	switch e.Type {
	case models.EventCreated:
		m.ComplaintsCreated.WithLabelValues(string(e.Category)).Inc()
	case models.EventStatusUpdated:
		m.ComplaintStatusUpdate.WithLabelValues(string(e.Status)).Inc()
	case models.EventDeleted:
		m.ComplaintsDeleted.Inc()
	}
	return nil
}
