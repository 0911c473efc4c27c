package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxoffice-pipeline/internal/api/handler"
	"boxoffice-pipeline/internal/model"
	"boxoffice-pipeline/internal/observability"
	"boxoffice-pipeline/internal/pipeline"
	"boxoffice-pipeline/internal/store"
	"boxoffice-pipeline/pkg/router"
)

const scenarioCSV = `movieCd,movieNm,salesAmt,audiCnt,scrnCnt,showCnt,openDt,targetDt
cd-A,A,100,1,1,1,2023-01-01,2023-01-01
cd-B,B,50,2,2,2,2023-01-10,2023-01-10
cd-C,C,10,3,3,3,2023-03-01,2023-03-01
`

type testServer struct {
	handler http.Handler
	store   *store.Store
}

func newTestServer(t *testing.T, source string) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := store.InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	metrics, err := observability.NewMetrics()
	require.NoError(t, err)

	exporter := pipeline.NewExportManager(filepath.Join(t.TempDir(), "outputs"),
		[]string{pipeline.FormatCSV, pipeline.FormatDatabase}, s, logger)
	opts := pipeline.Options{DefaultCodes: []string{"cd-C"}}
	runner := pipeline.NewRunner(source, opts, s, metrics, exporter, logger)
	h := handler.New(s, runner, exporter.Output, 0, logger)

	r := router.New(logger)
	RegisterRoutes(r, h, metrics)
	return &testServer{handler: r.Handler(), store: s}
}

func writeSource(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "boxoffice.csv")
	require.NoError(t, os.WriteFile(p, []byte(scenarioCSV), 0o644))
	return p
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestCreateAndInspectDashboard(t *testing.T) {
	ts := newTestServer(t, writeSource(t))

	rec := ts.do(t, http.MethodPost, "/api/v1/dashboards", model.DashboardRequest{Movies: []string{"A"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	d := decode[model.Dashboard](t, rec)

	assert.Equal(t, []string{"A"}, d.Selection)
	require.Len(t, d.Combined, 2)
	assert.Equal(t, "B", d.Combined[1].MovieName)
	assert.Equal(t, int64(100), pipeline.MetricValue(d.Summary, model.MetricSalesAmount))
	require.Len(t, d.Exports, 2)
	assert.True(t, d.Exports[1].Success, d.Exports[1].Error)
	jobID := d.JobID
	require.NotEmpty(t, jobID)

	rec = ts.do(t, http.MethodGet, "/api/v1/dashboards", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.JobInfo](t, rec), 1)

	rec = ts.do(t, http.MethodGet, "/api/v1/dashboards/"+jobID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	job := decode[model.JobInfo](t, rec)
	assert.Equal(t, model.StatusCompleted, job.Status)
	assert.Equal(t, []string{"A"}, job.Request.Movies)

	rec = ts.do(t, http.MethodGet, "/api/v1/dashboards/"+jobID+"/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	progress := decode[struct {
		Progress []model.StageProgress `json:"progress"`
	}](t, rec)
	require.Len(t, progress.Progress, 3)
	assert.Equal(t, "load", progress.Progress[0].Stage)
	assert.Equal(t, "export", progress.Progress[2].Stage)

	rec = ts.do(t, http.MethodGet, "/api/v1/dashboards/"+jobID+"/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[struct {
		Cards []model.MetricCard `json:"cards"`
	}](t, rec)
	require.Len(t, summary.Cards, 4)
	assert.Equal(t, "100", summary.Cards[0].Formatted)

	rec = ts.do(t, http.MethodGet, "/api/v1/dashboards/"+jobID+"/logs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dashboard built")

	rec = ts.do(t, http.MethodGet, "/api/v1/dashboards/"+jobID+"/errors", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode[map[string]any](t, rec)["count"])

	rec = ts.do(t, http.MethodGet, "/api/v1/dashboards/"+jobID+"/records?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	records := decode[map[string]any](t, rec)
	assert.Equal(t, float64(1), records["count"])
	assert.Equal(t, float64(2), records["total"])

	rec = ts.do(t, http.MethodGet, "/api/v1/dashboards/"+jobID+"/files", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/v1/download/"+jobID+"/records.csv")

	rec = ts.do(t, http.MethodGet, "/api/v1/download/"+jobID+"/records.csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cd-B,B,50,2,2,2,2023-01-10,2023-01-10")

	rec = ts.do(t, http.MethodGet, "/api/v1/download/"+jobID+"/missing.csv", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRerunGivesSameDashboard(t *testing.T) {
	ts := newTestServer(t, writeSource(t))

	rec := ts.do(t, http.MethodPost, "/api/v1/dashboards", model.DashboardRequest{Movies: []string{"A"}, Variant: "v3"})
	require.Equal(t, http.StatusCreated, rec.Code)
	first := decode[model.Dashboard](t, rec)

	rec = ts.do(t, http.MethodPost, "/api/v1/dashboards/"+first.JobID+"/rerun", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	second := decode[model.Dashboard](t, rec)

	assert.NotEqual(t, first.JobID, second.JobID)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.Combined, second.Combined)
	assert.Equal(t, first.Charts, second.Charts)

	rec = ts.do(t, http.MethodGet, "/api/v1/dashboards", nil)
	assert.Len(t, decode[[]model.JobInfo](t, rec), 2)
}

func TestDefaultsApplyWhenSelectionOmitted(t *testing.T) {
	ts := newTestServer(t, writeSource(t))

	rec := ts.do(t, http.MethodPost, "/api/v1/dashboards", map[string]any{"variant": "v1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"C"}, decode[model.Dashboard](t, rec).Selection)

	rec = ts.do(t, http.MethodPost, "/api/v1/dashboards", map[string]any{"movies": []string{}, "variant": "v1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, decode[model.Dashboard](t, rec).Selection)
}

func TestErrorStatusMapping(t *testing.T) {
	ts := newTestServer(t, writeSource(t))

	rec := ts.do(t, http.MethodPost, "/api/v1/dashboards", model.DashboardRequest{Variant: "v9"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "unknown variant")

	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/dashboards", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, path := range []string{
		"/api/v1/dashboards/nope",
		"/api/v1/dashboards/nope/logs",
		"/api/v1/dashboards/nope/progress",
		"/api/v1/dashboards/nope/summary",
		"/api/v1/dashboards/nope/errors",
	} {
		assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, path, nil).Code, path)
	}
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/api/v1/dashboards/nope/rerun", nil).Code)

	// no jobs were created by rejected requests
	assert.Empty(t, decode[[]model.JobInfo](t, ts.do(t, http.MethodGet, "/api/v1/dashboards", nil)))
}

func TestUnreadableSource(t *testing.T) {
	ts := newTestServer(t, filepath.Join(t.TempDir(), "missing.csv"))

	rec := ts.do(t, http.MethodPost, "/api/v1/dashboards", model.DashboardRequest{Movies: []string{"A"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	jobs := decode[[]model.JobInfo](t, ts.do(t, http.MethodGet, "/api/v1/dashboards", nil))
	require.Len(t, jobs, 1)
	assert.Equal(t, model.StatusFailed, jobs[0].Status)

	rec = ts.do(t, http.MethodGet, "/api/v1/dashboards/"+jobs[0].ID+"/errors", nil)
	assert.Contains(t, rec.Body.String(), "missing.csv")

	assert.Equal(t, http.StatusUnprocessableEntity, ts.do(t, http.MethodGet, "/api/v1/movies", nil).Code)
}

func TestSchemaMismatch(t *testing.T) {
	p := filepath.Join(t.TempDir(), "partial.csv")
	require.NoError(t, os.WriteFile(p, []byte("movieNm,salesAmt\nA,1\n"), 0o644))
	ts := newTestServer(t, p)

	rec := ts.do(t, http.MethodPost, "/api/v1/dashboards", model.DashboardRequest{Movies: []string{"A"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "movieCd")
}

func TestListMoviesAndVariants(t *testing.T) {
	ts := newTestServer(t, writeSource(t))

	rec := ts.do(t, http.MethodGet, "/api/v1/movies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	names := decode[struct {
		Values   []string `json:"values"`
		Defaults []string `json:"defaults"`
	}](t, rec)
	assert.Equal(t, []string{"A", "B", "C"}, names.Values)
	assert.Empty(t, names.Defaults)

	rec = ts.do(t, http.MethodGet, "/api/v1/movies?by=code", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	codes := decode[struct {
		Values   []string `json:"values"`
		Defaults []string `json:"defaults"`
	}](t, rec)
	assert.Equal(t, []string{"cd-A", "cd-B", "cd-C"}, codes.Values)
	assert.Equal(t, []string{"cd-C"}, codes.Defaults)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/v1/movies?by=title", nil).Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/variants", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	variants := decode[[]model.Variant](t, rec)
	require.Len(t, variants, 5)
	assert.Equal(t, model.SelectByCode, variants[0].SelectBy)
	assert.Len(t, variants[4].Charts, 4)
}

func TestMetricsAndSwagger(t *testing.T) {
	ts := newTestServer(t, writeSource(t))
	ts.do(t, http.MethodPost, "/api/v1/dashboards", model.DashboardRequest{Movies: []string{"A"}})

	rec := ts.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `boxoffice_dashboard_runs_total{status="completed"} 1`)
	assert.Contains(t, rec.Body.String(), `boxoffice_http_requests_total{code="201",route="/api/v1/dashboards"} 1`)

	rec = ts.do(t, http.MethodGet, "/swagger/doc.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Box Office Dashboard API")
}
