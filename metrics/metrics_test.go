package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSyncMetrics(t *testing.T) {
	m := NewSyncMetrics(prometheus.NewRegistry())
	start := time.Now()

	m.ObserveSuccess(start, 7, 0, []string{"filing"})
	m.ObserveFailure(start)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("error")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.RowsWritten.WithLabelValues("action")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TablesSkipped.WithLabelValues("filing")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "visa_bulletin_sync_runs_total")
}
