package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP layer
// and the enrollment workflow.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	enrollmentsStarted  prometheus.Counter
	invoicesIssued      prometheus.Counter
	expirationsExecuted prometheus.Counter
	expirationsSkipped  prometheus.Counter
}

// NewMetricsService registers the service's Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	enrollmentsStarted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "enrollments_started_total",
		Help: "Enrollments created through the workflow",
	})

	invoicesIssued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invoices_issued_total",
		Help: "Invoices created by payment setup",
	})

	expirationsExecuted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "expirations_executed_total",
		Help: "Deferred expirations that removed a student",
	})

	expirationsSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "expirations_skipped_total",
		Help: "Deferred expirations that found an enrolled or missing student",
	})

	registry.MustRegister(requestDuration, requestTotal, enrollmentsStarted, invoicesIssued, expirationsExecuted, expirationsSkipped)

	return &MetricsService{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		enrollmentsStarted:  enrollmentsStarted,
		invoicesIssued:      invoicesIssued,
		expirationsExecuted: expirationsExecuted,
		expirationsSkipped:  expirationsSkipped,
	}
}

// Handler exposes the /metrics endpoint handler.
func (m *MetricsService) Handler() http.Handler {
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := prometheus.Labels{"method": method, "path": path, "status": strconv.Itoa(status)}
	m.requestDuration.With(labels).Observe(duration.Seconds())
	m.requestTotal.With(labels).Inc()
}

// IncEnrollmentsStarted counts a workflow-created enrollment.
func (m *MetricsService) IncEnrollmentsStarted() {
	m.enrollmentsStarted.Inc()
}

// IncInvoicesIssued counts invoices created by payment setup.
func (m *MetricsService) IncInvoicesIssued(n int) {
	m.invoicesIssued.Add(float64(n))
}

// IncExpirationsExecuted counts expirations that removed a student.
func (m *MetricsService) IncExpirationsExecuted() {
	m.expirationsExecuted.Inc()
}

// IncExpirationsSkipped counts expirations that were no-ops.
func (m *MetricsService) IncExpirationsSkipped() {
	m.expirationsSkipped.Inc()
}
