package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAndStageMetrics(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.ObserveRun("completed")
	m.ObserveRun("completed")
	m.ObserveRun("failed")
	m.ObserveStage("load", 20*time.Millisecond)
	m.ObserveStage("load", 30*time.Millisecond)
	m.AddRecordsLoaded(3)
	m.AddRecordsLoaded(4)
	m.AddParseWarnings(2)
	m.ObserveExport("csv", true)
	m.ObserveExport("database", false)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.runsTotal.WithLabelValues("completed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.runsTotal.WithLabelValues("failed")))
	assert.Equal(t, float64(7), testutil.ToFloat64(m.recordsLoaded))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.parseWarnings))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.exportsTotal.WithLabelValues("database", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.stageDuration))
}

func TestRequestMetrics(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.ObserveRequest("/api/v1/dashboards", http.StatusCreated)
	m.ObserveRequest("/api/v1/dashboards", http.StatusCreated)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/v1/dashboards", "201")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	m.ObserveRun("completed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `boxoffice_dashboard_runs_total{status="completed"} 1`))
	assert.Contains(t, string(body), "go_goroutines")
}
