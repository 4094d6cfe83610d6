package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the service. All methods are
// safe on a nil receiver so metrics stay optional in tests and tools.
type Metrics struct {
	ApplicationsCreated    prometheus.Counter
	ApplicationTransitions *prometheus.CounterVec
	NotificationsCreated   *prometheus.CounterVec
	JobsPosted             prometheus.Counter
	ImportRecords          *prometheus.CounterVec
	RequestDuration        *prometheus.HistogramVec
	RateLimited            *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. Pass
// prometheus.DefaultRegisterer in main and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ApplicationsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "hiretrack_applications_created_total",
			Help: "Total number of applications submitted",
		}),
		ApplicationTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hiretrack_application_transitions_total",
			Help: "Application status transitions by target status",
		}, []string{"status"}),
		NotificationsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hiretrack_notifications_created_total",
			Help: "Notifications created by fan-out, by type",
		}, []string{"type"}),
		JobsPosted: f.NewCounter(prometheus.CounterOpts{
			Name: "hiretrack_jobs_posted_total",
			Help: "Total number of job openings posted",
		}),
		ImportRecords: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hiretrack_import_records_total",
			Help: "Bulk import records by entity and outcome",
		}, []string{"entity", "outcome"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hiretrack_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route pattern and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route", "status"}),
		RateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hiretrack_rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter, by endpoint class",
		}, []string{"class"}),
	}
}

func (m *Metrics) IncApplicationsCreated() {
	if m == nil {
		return
	}
	m.ApplicationsCreated.Inc()
}

func (m *Metrics) IncTransition(status string) {
	if m == nil {
		return
	}
	m.ApplicationTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) AddNotifications(notificationType string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.NotificationsCreated.WithLabelValues(notificationType).Add(float64(n))
}

func (m *Metrics) IncJobsPosted() {
	if m == nil {
		return
	}
	m.JobsPosted.Inc()
}

func (m *Metrics) AddImportRecords(entity, outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ImportRecords.WithLabelValues(entity, outcome).Add(float64(n))
}

// ObserveRequest records one HTTP request. Call with the start time.
func (m *Metrics) ObserveRequest(method, route string, status int, start time.Time) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncRateLimited(class string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(class).Inc()
}
