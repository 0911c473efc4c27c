package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"boxoffice-pipeline/internal/model"
)

// Options are the configured defaults a request can fall back to.
type Options struct {
	WindowDays     int
	DefaultVariant string
	DefaultMovies  []string
	DefaultCodes   []string
}

// ------------------- Pure Build -------------------

// Build runs Selector -> Window Matcher -> Aggregator over an already loaded
// table. It reads records but never modifies them; the same inputs always
// give the same dashboard.
func Build(records []model.Record, req model.DashboardRequest, opts Options) (*model.Dashboard, error) {
	v, err := ResolveVariant(req, opts.DefaultVariant)
	if err != nil {
		return nil, err
	}
	radius := opts.WindowDays
	if radius <= 0 {
		radius = DefaultWindowDays
	}

	names, codes := req.Movies, req.Codes
	if req.UsesDefaults() {
		names = ResolveDefaults(opts.DefaultMovies, DistinctNames(records))
		codes = ResolveDefaults(opts.DefaultCodes, DistinctCodes(records))
	}

	selected := Union(
		Select(records, model.NewSelection(names...)),
		SelectByCode(records, model.NewSelection(codes...)),
	)

	d := &model.Dashboard{
		Variant:     v.Name,
		Aggregation: v.Aggregation,
		Selection:   DistinctNames(selected),
		Selected:    selected,
		Summary:     SummarizeMetrics(selected),
		Windows:     []model.DateWindow{},
		Combined:    selected,
	}
	d.Cards = Cards(d.Summary)

	if v.Competing {
		d.Windows = CompetingWindows(records, EntityNames(selected), radius)
		d.Combined = Union(selected, MatchWindows(records, d.Windows))
	}

	d.YearGroups = GroupByEntityYear(d.Combined)
	d.Durations = DurationByEntity(d.Combined)
	d.Periods = GroupByPeriod(d.Combined, v.Aggregation)
	d.Charts = BuildCharts(v, d)
	return d, nil
}

// ------------------- Pipeline Runner -------------------

// JobRecorder persists job history. *store.Store implements it.
type JobRecorder interface {
	UpdateJobStatus(ctx context.Context, jobID, status string) error
	SaveJobError(ctx context.Context, jobID string, err error) error
	SavePipelineLog(ctx context.Context, jobID, stage, level, message string, details map[string]any) error
	SaveStageProgress(ctx context.Context, jobID string, p model.StageProgress) error
	SaveMetricSummary(ctx context.Context, jobID string, rows []model.AggregateRow) error
}

// MetricsRecorder receives run metrics. *observability.Metrics implements it.
type MetricsRecorder interface {
	ObserveStage(stage string, d time.Duration)
	ObserveRun(status string)
	AddRecordsLoaded(n int)
	AddParseWarnings(n int)
	ObserveExport(format string, success bool)
}

// Runner loads the configured source and builds a dashboard per request.
// The source is re-read on every run.
type Runner struct {
	Source   string
	Options  Options
	Store    JobRecorder     // optional
	Metrics  MetricsRecorder // optional
	Exporter *ExportManager  // optional
	Logger   *slog.Logger
}

// NewRunner wires a runner; store, metrics and exporter may be nil.
func NewRunner(source string, opts Options, store JobRecorder, metrics MetricsRecorder, exporter *ExportManager, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Source: source, Options: opts, Store: store, Metrics: metrics, Exporter: exporter, Logger: logger}
}

// Load reads the runner's source.
func (r *Runner) Load(ctx context.Context) (*LoadResult, error) {
	return Load(ctx, r.Source)
}

// Run executes one dashboard job end to end.
func (r *Runner) Run(ctx context.Context, jobID string, req model.DashboardRequest) (d *model.Dashboard, err error) {
	start := time.Now()
	log := r.Logger.With("job_id", jobID)
	log.Info("🚀 starting dashboard job", "source", r.Source, "variant", req.Variant)

	t := newTracker(ctx, jobID, r.Store, r.Metrics, log)

	defer func() {
		if err != nil {
			t.fail(err)
			return
		}
		t.complete()
		log.Info("🏁 dashboard job completed",
			"duration", time.Since(start),
			"selected", len(d.Selected),
			"combined", len(d.Combined))
	}()

	// --- LOAD STAGE ---
	t.status(model.StatusLoading)
	t.startStage("load", 0)
	loaded, err := Load(ctx, r.Source)
	if err != nil {
		t.endStage("load", "failed", 0)
		return nil, fmt.Errorf("load stage: %w", err)
	}
	t.endStage("load", "completed", len(loaded.Records))
	if r.Metrics != nil {
		r.Metrics.AddRecordsLoaded(len(loaded.Records))
		r.Metrics.AddParseWarnings(len(loaded.Warnings))
	}
	if n := len(loaded.Warnings); n > 0 {
		t.logLine("load", "warning", "date or count cells coerced", map[string]any{
			"warnings": n,
			"first":    loaded.Warnings[0].String(),
		})
	}

	if s := loaded.Stats; s.NullReleaseDates+s.NullObservedDates+s.ReleaseAfterTarget+s.BlankNames > 0 {
		t.logLine("load", "warning", "table breaks soft invariants", map[string]any{
			"null_release_dates":   s.NullReleaseDates,
			"null_observed_dates":  s.NullObservedDates,
			"release_after_target": s.ReleaseAfterTarget,
			"blank_names":          s.BlankNames,
		})
	}

	// --- BUILD STAGE ---
	t.status(model.StatusBuilding)
	t.startStage("build", len(loaded.Records))
	d, err = Build(loaded.Records, req, r.Options)
	if err != nil {
		t.endStage("build", "failed", 0)
		return nil, fmt.Errorf("build stage: %w", err)
	}
	d.JobID = jobID
	d.Warnings = len(loaded.Warnings)
	t.endStage("build", "completed", len(d.Combined))
	t.logLine("build", "info", "dashboard built", map[string]any{
		"selection": d.Selection,
		"windows":   len(d.Windows),
		"charts":    len(d.Charts),
	})
	if r.Store != nil {
		if serr := r.Store.SaveMetricSummary(ctx, jobID, d.Summary); serr != nil {
			log.Warn("failed to save metric summary", "error", serr)
		}
	}

	// --- EXPORT STAGE ---
	if r.Exporter != nil {
		t.status(model.StatusExporting)
		t.startStage("export", len(d.Combined))
		d.Exports = r.Exporter.Export(ctx, jobID, d)
		failed := 0
		for _, res := range d.Exports {
			if r.Metrics != nil {
				r.Metrics.ObserveExport(res.Type, res.Success)
			}
			if !res.Success {
				failed++
			}
		}
		status := "completed"
		if failed > 0 {
			status = "partial"
			t.logLine("export", "warning", "some exports failed", map[string]any{"failed": failed})
		}
		t.endStage("export", status, len(d.Exports)-failed)
	}

	return d, nil
}

// IsClientError reports whether err comes from the caller's input or source
// file rather than from the service itself.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) || errors.Is(err, ErrSchema) || errors.Is(err, ErrIO)
}
