package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordVote("liked")
	m.RecordVote("liked")
	m.RecordVote("FORBIDDEN")
	m.RecordTransition("withdraw", "Withdrawn")
	m.RecordSweep(3, nil)
	m.RecordSweep(0, errors.New("boom"))
	m.RecordRequest("/complaints/:id/vote", "POST", 200, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.voteToggles.WithLabelValues("liked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.voteToggles.WithLabelValues("FORBIDDEN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("withdraw", "Withdrawn")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.purged))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sweepRuns.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues("/complaints/:id/vote", "POST", "200")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordVote("liked")
		m.RecordTransition("restore", "Open")
		m.RecordSweep(1, nil)
		m.RecordError("/", "GET", "NOT_FOUND")
		m.RecordRequest("/", "GET", 200, time.Millisecond)
	})
	assert.NotNil(t, m.Handler())
}
