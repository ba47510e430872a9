package observability

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAPI("GET", "/x", "200", time.Millisecond)
		m.IncLedgerWrite("quiz", "success")
		m.AddPoints("quiz", 10)
		m.IncAggregateConflict("op")
		m.IncAnalyticsMetricFailure("points")
	})
}

func TestMetrics_CountersAndHandler(t *testing.T) {
	m := New()
	m.IncLedgerWrite("quiz", "success")
	m.IncLedgerWrite("quiz", "success")
	m.AddPoints("video", 60)
	m.AddPoints("video", 0)

	assert.InDelta(t, 2, testutil.ToFloat64(m.ledgerWrites.WithLabelValues("quiz", "success")), 1e-9)
	assert.InDelta(t, 60, testutil.ToFloat64(m.pointsAwarded.WithLabelValues("video")), 1e-9)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "pe_points_awarded_total"))
}
