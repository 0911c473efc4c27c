package pipeline

import (
	"context"
	"log/slog"
	"time"

	"boxoffice-pipeline/internal/model"
)

// tracker records stage progress for one job into the store, metrics and log.
// Persistence failures are logged and never fail the job.
type tracker struct {
	ctx     context.Context
	jobID   string
	store   JobRecorder
	metrics MetricsRecorder
	logger  *slog.Logger
	started map[string]time.Time
	counts  map[string]int
}

func newTracker(ctx context.Context, jobID string, store JobRecorder, metrics MetricsRecorder, log *slog.Logger) *tracker {
	return &tracker{
		ctx:     ctx,
		jobID:   jobID,
		store:   store,
		metrics: metrics,
		logger:  log,
		started: make(map[string]time.Time),
		counts:  make(map[string]int),
	}
}

func (t *tracker) status(status string) {
	if t.store == nil {
		return
	}
	if err := t.store.UpdateJobStatus(t.ctx, t.jobID, status); err != nil {
		t.logger.Warn("failed to update job status", "status", status, "error", err)
	}
}

// startStage marks a stage as started with recordsIn rows entering it.
func (t *tracker) startStage(stage string, recordsIn int) {
	now := time.Now()
	t.started[stage] = now
	t.counts[stage] = recordsIn
	t.logger.Debug("stage started", "stage", stage, "records_in", recordsIn)
	t.saveProgress(model.StageProgress{Stage: stage, Status: "started", StartedAt: &now, RecordsIn: recordsIn})
}

// endStage closes a stage with the given status and output row count.
func (t *tracker) endStage(stage, status string, recordsOut int) {
	start := t.started[stage]
	end := time.Now()
	elapsed := end.Sub(start)

	if t.metrics != nil {
		t.metrics.ObserveStage(stage, elapsed)
	}
	t.logger.Debug("stage finished", "stage", stage, "status", status, "records_out", recordsOut, "duration", elapsed)
	t.saveProgress(model.StageProgress{
		Stage:      stage,
		Status:     status,
		StartedAt:  &start,
		EndedAt:    &end,
		RecordsIn:  t.counts[stage],
		RecordsOut: recordsOut,
	})
	t.persist(stage, "info", "stage "+status, map[string]any{
		"duration_ms": elapsed.Milliseconds(),
		"records_out": recordsOut,
	})
}

func (t *tracker) saveProgress(p model.StageProgress) {
	if t.store == nil {
		return
	}
	if err := t.store.SaveStageProgress(t.ctx, t.jobID, p); err != nil {
		t.logger.Warn("failed to save stage progress", "stage", p.Stage, "error", err)
	}
}

// logLine persists a job log line and mirrors it to the process logger.
func (t *tracker) logLine(stage, level, message string, details map[string]any) {
	switch level {
	case "warning":
		t.logger.Warn(message, "stage", stage, "details", details)
	case "error":
		t.logger.Error(message, "stage", stage, "details", details)
	default:
		t.logger.Info(message, "stage", stage, "details", details)
	}
	t.persist(stage, level, message, details)
}

// persist stores a log line without mirroring it.
func (t *tracker) persist(stage, level, message string, details map[string]any) {
	if t.store == nil {
		return
	}
	if err := t.store.SavePipelineLog(t.ctx, t.jobID, stage, level, message, details); err != nil {
		t.logger.Warn("failed to save pipeline log", "error", err)
	}
}

func (t *tracker) complete() {
	t.status(model.StatusCompleted)
	if t.metrics != nil {
		t.metrics.ObserveRun(model.StatusCompleted)
	}
}

func (t *tracker) fail(err error) {
	t.logger.Error("❌ dashboard job failed", "error", err)
	t.status(model.StatusFailed)
	if t.store != nil {
		if serr := t.store.SaveJobError(t.ctx, t.jobID, err); serr != nil {
			t.logger.Warn("failed to save job error", "error", serr)
		}
	}
	if t.metrics != nil {
		t.metrics.ObserveRun(model.StatusFailed)
	}
}
