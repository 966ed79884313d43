package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Observe("trim", "", time.Millisecond)
	m.Observe("trim", "DegenerateEquilibriumError", time.Millisecond)
	m.Observe("damage", "", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("trim", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("trim", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("trim", "DegenerateEquilibriumError")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestHandlerExposes(t *testing.T) {
	m := New(nil)
	m.Observe("curve", "", time.Millisecond)
	m.ObserveBatch(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `keel_calc_requests_total{op="curve",status="ok"} 1`))
	assert.Contains(t, body, "keel_batch_size_count 1")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Observe("trim", "", 0)
	m.ObserveBatch(1)
}
