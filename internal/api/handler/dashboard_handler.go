package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"boxoffice-pipeline/internal/model"
	"boxoffice-pipeline/internal/pipeline"
	"boxoffice-pipeline/internal/store"
	"boxoffice-pipeline/pkg/utils"
)

const dashboardsPrefix = "/api/v1/dashboards/"

// Handler serves the dashboard API.
type Handler struct {
	Store      *store.Store
	Runner     *pipeline.Runner
	Output     *utils.OutputManager
	JobTimeout time.Duration
	Logger     *slog.Logger
}

// New creates a handler. output may be nil when nothing is exported to disk.
func New(s *store.Store, runner *pipeline.Runner, output *utils.OutputManager, jobTimeout time.Duration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Store: s, Runner: runner, Output: output, JobTimeout: jobTimeout, Logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error onto its HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrIO), errors.Is(err, pipeline.ErrSchema):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.Logger.Error("❌ request failed", "error", err)
	}
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

// jobIDFrom extracts the job ID from /api/v1/dashboards/{id}{suffix}.
func jobIDFrom(path, suffix string) (string, bool) {
	if !strings.HasPrefix(path, dashboardsPrefix) || !strings.HasSuffix(path, suffix) {
		return "", false
	}
	jobID := path[len(dashboardsPrefix) : len(path)-len(suffix)]
	if jobID == "" || strings.Contains(jobID, "/") {
		return "", false
	}
	return jobID, true
}

// requireJob extracts the job ID and checks the job exists, writing the error response if not.
func (h *Handler) requireJob(w http.ResponseWriter, r *http.Request, suffix string) (string, bool) {
	jobID, ok := jobIDFrom(r.URL.Path, suffix)
	if !ok {
		http.Error(w, "Job ID is required", http.StatusBadRequest)
		return "", false
	}
	if _, err := h.Store.GetJob(r.Context(), jobID); err != nil {
		h.writeError(w, err)
		return "", false
	}
	return jobID, true
}

// run stores a new job for req and runs it.
func (h *Handler) run(ctx context.Context, req model.DashboardRequest) (string, *model.Dashboard, error) {
	jobID := uuid.New().String()
	if err := h.Store.SaveJob(ctx, jobID, req); err != nil {
		return jobID, nil, fmt.Errorf("save job: %w", err)
	}

	ctx, cancel := h.jobContext(ctx)
	defer cancel()
	d, err := h.Runner.Run(ctx, jobID, req)
	return jobID, d, err
}

// jobContext bounds a run by JobTimeout; zero means no limit.
func (h *Handler) jobContext(parent context.Context) (context.Context, context.CancelFunc) {
	if h.JobTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, h.JobTimeout)
}

// CreateDashboard runs a new dashboard job
// @Summary Run a dashboard
// @Description Select movies, match competing releases and aggregate. With async=true the job runs in the background.
// @Tags dashboards
// @Accept json
// @Produce json
// @Param request body model.DashboardRequest true "Selection and variant"
// @Param async query bool false "Return 202 and run in the background"
// @Success 201 {object} model.Dashboard "Dashboard built"
// @Success 202 {object} map[string]interface{} "Job accepted"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 422 {object} errorResponse "Source unreadable or schema mismatch"
// @Failure 500 {object} errorResponse "Internal server error"
// @Router /dashboards [post]
func (h *Handler) CreateDashboard(w http.ResponseWriter, r *http.Request) {
	var req model.DashboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON payload"})
		return
	}

	// reject bad variants before a job is created
	if _, err := pipeline.ResolveVariant(req, h.Runner.Options.DefaultVariant); err != nil {
		h.writeError(w, err)
		return
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		jobID := uuid.New().String()
		if err := h.Store.SaveJob(r.Context(), jobID, req); err != nil {
			h.writeError(w, fmt.Errorf("save job: %w", err))
			return
		}
		go func() {
			ctx, cancel := h.jobContext(context.Background())
			defer cancel()
			if _, err := h.Runner.Run(ctx, jobID, req); err != nil {
				h.Logger.Warn("background dashboard job failed", "job_id", jobID, "error", err)
			}
		}()
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"message":   "Dashboard job accepted",
			"jobID":     jobID,
			"status":    model.StatusPending,
			"createdAt": time.Now().UTC(),
		})
		return
	}

	_, d, err := h.run(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// ListDashboards lists all dashboard jobs
// @Summary List dashboard jobs
// @Tags dashboards
// @Produce json
// @Success 200 {array} model.JobInfo "Jobs, newest first"
// @Failure 500 {object} errorResponse "Internal server error"
// @Router /dashboards [get]
func (h *Handler) ListDashboards(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Store.ListJobs(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// GetDashboard returns one job
// @Summary Get a dashboard job
// @Tags dashboards
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} model.JobInfo
// @Failure 404 {object} errorResponse "Unknown job"
// @Router /dashboards/{id} [get]
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFrom(r.URL.Path, "")
	if !ok {
		h.writeError(w, fmt.Errorf("%w: %s", store.ErrNotFound, strings.TrimPrefix(r.URL.Path, dashboardsPrefix)))
		return
	}
	job, err := h.Store.GetJob(r.Context(), jobID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// GetDashboardLogs returns a job's log lines
// @Summary Job log lines
// @Tags dashboards
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errorResponse "Unknown job"
// @Router /dashboards/{id}/logs [get]
func (h *Handler) GetDashboardLogs(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.requireJob(w, r, "/logs")
	if !ok {
		return
	}
	logs, err := h.Store.GetPipelineLogs(r.Context(), jobID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job_id": jobID,
		"logs":   logs,
		"count":  len(logs),
	})
}

// GetDashboardProgress returns a job's stage progress
// @Summary Job stage progress
// @Tags dashboards
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errorResponse "Unknown job"
// @Router /dashboards/{id}/progress [get]
func (h *Handler) GetDashboardProgress(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.requireJob(w, r, "/progress")
	if !ok {
		return
	}
	progress, err := h.Store.GetStageProgress(r.Context(), jobID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job_id":   jobID,
		"progress": progress,
		"count":    len(progress),
	})
}

// GetDashboardSummary returns the stored metric summary and its cards
// @Summary Job metric summary and cards
// @Tags dashboards
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errorResponse "Unknown job"
// @Router /dashboards/{id}/summary [get]
func (h *Handler) GetDashboardSummary(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.requireJob(w, r, "/summary")
	if !ok {
		return
	}
	summary, err := h.Store.GetMetricSummary(r.Context(), jobID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job_id":  jobID,
		"summary": summary,
		"cards":   pipeline.Cards(summary),
	})
}

// GetDashboardErrors returns errors recorded for a job
// @Summary Job errors
// @Tags dashboards
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errorResponse "Unknown job"
// @Router /dashboards/{id}/errors [get]
func (h *Handler) GetDashboardErrors(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.requireJob(w, r, "/errors")
	if !ok {
		return
	}
	errs, err := h.Store.GetJobErrors(r.Context(), jobID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job_id": jobID,
		"errors": errs,
		"count":  len(errs),
	})
}

// GET /api/v1/dashboards/{id}/records
func (h *Handler) GetDashboardRecords(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.requireJob(w, r, "/records")
	if !ok {
		return
	}

	// Get limit from query parameter
	limit := 100 // default
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	records, err := h.Store.GetDashboardRecords(r.Context(), jobID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	total := len(records)
	if total > limit {
		records = records[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job_id":  jobID,
		"records": records,
		"count":   len(records),
		"total":   total,
		"limit":   limit,
	})
}

// GetDashboardFiles lists a job's exported files
// @Summary Exported files of a job
// @Tags files
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errorResponse "Unknown job"
// @Router /dashboards/{id}/files [get]
func (h *Handler) GetDashboardFiles(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.requireJob(w, r, "/files")
	if !ok {
		return
	}
	files := []utils.OutputFile{}
	if h.Output != nil {
		var err error
		if files, err = h.Output.ListJobFiles(jobID); err != nil {
			h.writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job_id": jobID,
		"files":  files,
		"count":  len(files),
	})
}

// RerunDashboard runs a stored request again as a new job
// @Summary Rerun a dashboard job
// @Description Loads the source again and rebuilds with the stored request. Same inputs give the same dashboard.
// @Tags dashboards
// @Produce json
// @Param id path string true "Job ID"
// @Success 201 {object} model.Dashboard
// @Failure 404 {object} errorResponse "Unknown job"
// @Failure 422 {object} errorResponse "Source unreadable or schema mismatch"
// @Router /dashboards/{id}/rerun [post]
func (h *Handler) RerunDashboard(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFrom(r.URL.Path, "/rerun")
	if !ok {
		http.Error(w, "Job ID is required", http.StatusBadRequest)
		return
	}
	job, err := h.Store.GetJob(r.Context(), jobID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	newID, d, err := h.run(r.Context(), job.Request)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.Logger.Info("🔁 dashboard rerun", "job_id", jobID, "new_job_id", newID)
	writeJSON(w, http.StatusCreated, d)
}

// DownloadFile serves an exported file
// @Summary Download file
// @Tags files
// @Produce application/octet-stream
// @Param jobID path string true "Job ID"
// @Param filename path string true "File name"
// @Success 200 {file} file "File download"
// @Failure 400 {object} errorResponse "Invalid URL format"
// @Failure 404 {object} errorResponse "File not found"
// @Router /download/{jobID}/{filename} [get]
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	// URL format: /api/v1/download/jobID/filename
	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(pathParts) != 5 || h.Output == nil {
		http.Error(w, "Invalid URL format", http.StatusBadRequest)
		return
	}
	jobID, fileName := pathParts[3], pathParts[4]

	jobDir, err := h.Output.JobDir(jobID)
	if err != nil || fileName != filepath.Base(fileName) {
		http.Error(w, "Invalid URL format", http.StatusBadRequest)
		return
	}
	filePath := filepath.Join(jobDir, fileName)
	if info, err := os.Stat(filePath); err != nil || info.IsDir() {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeFile(w, r, filePath)
}

// ListMovies lists the values a selection control offers
// @Summary Selectable movie names or codes
// @Tags movies
// @Produce json
// @Param by query string false "name (default) or code"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errorResponse "Unknown selector"
// @Failure 422 {object} errorResponse "Source unreadable or schema mismatch"
// @Router /movies [get]
func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	by := model.SelectBy(r.URL.Query().Get("by"))
	if by == "" {
		by = model.SelectByName
	}
	if by != model.SelectByName && by != model.SelectByCode {
		h.writeError(w, fmt.Errorf("%w: unknown selector %q", pipeline.ErrInvalidRequest, by))
		return
	}

	loaded, err := h.Runner.Load(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	values := pipeline.DistinctNames(loaded.Records)
	defaults := h.Runner.Options.DefaultMovies
	if by == model.SelectByCode {
		values = pipeline.DistinctCodes(loaded.Records)
		defaults = h.Runner.Options.DefaultCodes
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"by":       by,
		"values":   values,
		"defaults": pipeline.ResolveDefaults(defaults, values),
		"count":    len(values),
	})
}

// ListVariants lists the dashboard presets
// @Summary Dashboard presets
// @Tags dashboards
// @Produce json
// @Success 200 {array} model.Variant
// @Router /variants [get]
func (h *Handler) ListVariants(w http.ResponseWriter, _ *http.Request) {
	names := pipeline.VariantNames()
	out := make([]model.Variant, 0, len(names))
	for _, name := range names {
		v, err := pipeline.LookupVariant(name)
		if err != nil {
			h.writeError(w, err)
			return
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, out)
}
