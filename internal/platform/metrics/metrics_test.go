package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncApplicationsCreated()
	m.AddNotifications("NEW_JOB", 3)
	m.AddNotifications("NEW_JOB", 0)
	m.IncTransition("Interview")
	m.ObserveRequest("GET", "/jobs", 200, time.Now())

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ApplicationsCreated))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.NotificationsCreated.WithLabelValues("NEW_JOB")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ApplicationTransitions.WithLabelValues("Interview")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncApplicationsCreated()
		m.IncJobsPosted()
		m.AddImportRecords("candidate", "created", 1)
		m.ObserveRequest("GET", "/", 200, time.Now())
	})
}
