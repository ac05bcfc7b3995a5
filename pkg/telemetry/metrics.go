package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the Prometheus instruments for the API and job workers.
type Metrics struct {
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	activityEntries *prometheus.CounterVec
	jobRuns         *prometheus.CounterVec
}

// NewMetrics registers and returns the application metrics.
func NewMetrics() *Metrics {
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taskhive_http_requests_total",
		Help: "Counts HTTP requests by method, route, and status.",
	}, []string{"method", "route", "status"})

	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "taskhive_http_request_duration_seconds",
		Help:    "HTTP request latency per method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	activityEntries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taskhive_activity_entries_total",
		Help: "Activity log entries written, by action.",
	}, []string{"action"})

	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taskhive_job_runs_total",
		Help: "Background job completions by job name and status.",
	}, []string{"job", "status"})

	prometheus.MustRegister(
		httpRequests,
		httpDuration,
		activityEntries,
		jobRuns,
	)

	return &Metrics{
		httpRequests:    httpRequests,
		httpDuration:    httpDuration,
		activityEntries: activityEntries,
		jobRuns:         jobRuns,
	}
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// CountActivity records one written activity entry.
func (m *Metrics) CountActivity(action string) {
	if m == nil {
		return
	}
	m.activityEntries.WithLabelValues(action).Inc()
}

// CountJobRun records a finished job attempt.
func (m *Metrics) CountJobRun(job, status string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, status).Inc()
}
