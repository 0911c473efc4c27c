package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"boxoffice-pipeline/internal/model"
)

// ErrNotFound is returned when a job does not exist.
var ErrNotFound = errors.New("job not found")

// Store persists dashboard jobs and their history in SQLite.
type Store struct {
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		spec TEXT,
		status TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`,
	`CREATE TABLE IF NOT EXISTS job_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT,
		error_message TEXT,
		created_at DATETIME
	);`,
	`CREATE TABLE IF NOT EXISTS pipeline_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT,
		stage TEXT,
		level TEXT,
		message TEXT,
		details TEXT,
		created_at DATETIME
	);`,
	`CREATE TABLE IF NOT EXISTS stage_progress (
		job_id TEXT,
		stage TEXT,
		status TEXT,
		started_at DATETIME,
		ended_at DATETIME,
		records_in INTEGER,
		records_out INTEGER,
		PRIMARY KEY (job_id, stage)
	);`,
	`CREATE TABLE IF NOT EXISTS metric_summaries (
		job_id TEXT,
		metric TEXT,
		value INTEGER,
		position INTEGER,
		PRIMARY KEY (job_id, metric)
	);`,
	`CREATE TABLE IF NOT EXISTS dashboard_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT,
		movie_cd TEXT,
		movie_nm TEXT,
		sales_amt INTEGER,
		audi_cnt INTEGER,
		scrn_cnt INTEGER,
		show_cnt INTEGER,
		open_dt TEXT,
		target_dt TEXT
	);`,
	`CREATE INDEX IF NOT EXISTS idx_dashboard_records_job ON dashboard_records (job_id);`,
}

// InitDB opens the database at dbPath and creates missing tables.
// ":memory:" gives a private in-memory database.
func InitDB(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// sqlite allows one writer; an in-memory db also lives on a single connection
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) exec(ctx context.Context, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec %s: %w", strings.Fields(query)[0], err)
	}
	return nil
}

func (s *Store) query(ctx context.Context, b sq.SelectBuilder) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return rows, nil
}

// ------------------- Jobs -------------------

// SaveJob stores a new pending dashboard job.
func (s *Store) SaveJob(ctx context.Context, jobID string, req model.DashboardRequest) error {
	specJSON, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode spec: %w", err)
	}

	now := time.Now().UTC()
	return s.exec(ctx, sq.Insert("jobs").
		Columns("id", "spec", "status", "created_at", "updated_at").
		Values(jobID, string(specJSON), model.StatusPending, now, now))
}

// UpdateJobStatus updates job status
func (s *Store) UpdateJobStatus(ctx context.Context, jobID, status string) error {
	return s.exec(ctx, sq.Update("jobs").
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": jobID}))
}

// SaveJobError records an error for a job
func (s *Store) SaveJobError(ctx context.Context, jobID string, err error) error {
	if err == nil {
		return nil
	}
	return s.exec(ctx, sq.Insert("job_errors").
		Columns("job_id", "error_message", "created_at").
		Values(jobID, err.Error(), time.Now().UTC()))
}

// ListJobs returns all jobs, newest first.
func (s *Store) ListJobs(ctx context.Context) ([]model.JobInfo, error) {
	rows, err := s.query(ctx, sq.Select("id", "spec", "status", "created_at", "updated_at").
		From("jobs").
		OrderBy("created_at DESC", "id"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]model.JobInfo, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// GetJob fetches a job's request and status. Unknown IDs give ErrNotFound.
func (s *Store) GetJob(ctx context.Context, jobID string) (model.JobInfo, error) {
	query, args, err := sq.Select("id", "spec", "status", "created_at", "updated_at").
		From("jobs").
		Where(sq.Eq{"id": jobID}).
		ToSql()
	if err != nil {
		return model.JobInfo{}, fmt.Errorf("build query: %w", err)
	}

	job, err := scanJob(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.JobInfo{}, fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	return job, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (model.JobInfo, error) {
	var (
		job      model.JobInfo
		specJSON string
	)
	if err := row.Scan(&job.ID, &specJSON, &job.Status, &job.CreatedAt, &job.UpdatedAt); err != nil {
		return model.JobInfo{}, err
	}
	if err := json.Unmarshal([]byte(specJSON), &job.Request); err != nil {
		return model.JobInfo{}, fmt.Errorf("decode spec of %s: %w", job.ID, err)
	}
	return job, nil
}

// GetJobErrors returns the errors recorded for a job, oldest first.
func (s *Store) GetJobErrors(ctx context.Context, jobID string) ([]model.JobError, error) {
	rows, err := s.query(ctx, sq.Select("error_message", "created_at").
		From("job_errors").
		Where(sq.Eq{"job_id": jobID}).
		OrderBy("id"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.JobError, 0)
	for rows.Next() {
		var e model.JobError
		if err := rows.Scan(&e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan job error: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ------------------- Logs and Progress -------------------

// SavePipelineLog appends one log line to a job's history.
func (s *Store) SavePipelineLog(ctx context.Context, jobID, stage, level, message string, details map[string]any) error {
	var detailsJSON any
	if len(details) > 0 {
		b, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("encode details: %w", err)
		}
		detailsJSON = string(b)
	}
	return s.exec(ctx, sq.Insert("pipeline_logs").
		Columns("job_id", "stage", "level", "message", "details", "created_at").
		Values(jobID, stage, level, message, detailsJSON, time.Now().UTC()))
}

// GetPipelineLogs returns a job's log lines in the order they were written.
func (s *Store) GetPipelineLogs(ctx context.Context, jobID string) ([]model.PipelineLog, error) {
	rows, err := s.query(ctx, sq.Select("stage", "level", "message", "details", "created_at").
		From("pipeline_logs").
		Where(sq.Eq{"job_id": jobID}).
		OrderBy("id"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]model.PipelineLog, 0)
	for rows.Next() {
		var (
			l       model.PipelineLog
			details sql.NullString
		)
		if err := rows.Scan(&l.Stage, &l.Level, &l.Message, &details, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		if details.Valid {
			if err := json.Unmarshal([]byte(details.String), &l.Details); err != nil {
				return nil, fmt.Errorf("decode log details: %w", err)
			}
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// SaveStageProgress upserts the progress row of one stage.
func (s *Store) SaveStageProgress(ctx context.Context, jobID string, p model.StageProgress) error {
	return s.exec(ctx, sq.Insert("stage_progress").
		Columns("job_id", "stage", "status", "started_at", "ended_at", "records_in", "records_out").
		Values(jobID, p.Stage, p.Status, nullTime(p.StartedAt), nullTime(p.EndedAt), p.RecordsIn, p.RecordsOut).
		Suffix(`ON CONFLICT (job_id, stage) DO UPDATE SET
			status = excluded.status,
			started_at = COALESCE(excluded.started_at, stage_progress.started_at),
			ended_at = excluded.ended_at,
			records_in = excluded.records_in,
			records_out = excluded.records_out`))
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// stageOrder sorts progress rows in pipeline order rather than by name.
const stageOrder = `CASE stage WHEN 'load' THEN 0 WHEN 'build' THEN 1 WHEN 'export' THEN 2 ELSE 3 END`

// GetStageProgress returns a job's stages in pipeline order.
func (s *Store) GetStageProgress(ctx context.Context, jobID string) ([]model.StageProgress, error) {
	rows, err := s.query(ctx, sq.Select("stage", "status", "started_at", "ended_at", "records_in", "records_out").
		From("stage_progress").
		Where(sq.Eq{"job_id": jobID}).
		OrderBy(stageOrder, "stage"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.StageProgress, 0)
	for rows.Next() {
		var (
			p            model.StageProgress
			started, end sql.NullTime
		)
		if err := rows.Scan(&p.Stage, &p.Status, &started, &end, &p.RecordsIn, &p.RecordsOut); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		if started.Valid {
			p.StartedAt = &started.Time
		}
		if end.Valid {
			p.EndedAt = &end.Time
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ------------------- Results -------------------

// SaveMetricSummary replaces the stored summary of a job.
func (s *Store) SaveMetricSummary(ctx context.Context, jobID string, summary []model.AggregateRow) error {
	if len(summary) == 0 {
		return nil
	}
	b := sq.Insert("metric_summaries").
		Columns("job_id", "metric", "value", "position").
		Suffix("ON CONFLICT (job_id, metric) DO UPDATE SET value = excluded.value, position = excluded.position")
	for i, row := range summary {
		b = b.Values(jobID, row.Metric, row.Value, i)
	}
	return s.exec(ctx, b)
}

// GetMetricSummary returns a job's metric summary in its saved order.
func (s *Store) GetMetricSummary(ctx context.Context, jobID string) ([]model.AggregateRow, error) {
	rows, err := s.query(ctx, sq.Select("metric", "value").
		From("metric_summaries").
		Where(sq.Eq{"job_id": jobID}).
		OrderBy("position"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.AggregateRow, 0, len(model.Metrics))
	for rows.Next() {
		var r model.AggregateRow
		if err := rows.Scan(&r.Metric, &r.Value); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// recordBatch keeps multi-row inserts under sqlite's bound-variable limit.
const recordBatch = 100

// SaveDashboardRecords stores a job's combined dataset in one transaction and
// returns the number of rows written.
func (s *Store) SaveDashboardRecords(ctx context.Context, jobID string, records []model.Record) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for start := 0; start < len(records); start += recordBatch {
		end := min(start+recordBatch, len(records))
		b := sq.Insert("dashboard_records").
			Columns("job_id", "movie_cd", "movie_nm", "sales_amt", "audi_cnt", "scrn_cnt", "show_cnt", "open_dt", "target_dt")
		for _, r := range records[start:end] {
			b = b.Values(jobID, r.MovieCode, r.MovieName, r.SalesAmount, r.Audience, r.Screens, r.Shows, r.ReleaseDate, r.ObservedOn)
		}
		query, args, err := b.ToSql()
		if err != nil {
			return 0, fmt.Errorf("build query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("insert records: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(records), nil
}

// GetDashboardRecords reads back the dataset stored for a job, in insert order.
func (s *Store) GetDashboardRecords(ctx context.Context, jobID string) ([]model.Record, error) {
	rows, err := s.query(ctx, sq.Select("movie_cd", "movie_nm", "sales_amt", "audi_cnt", "scrn_cnt", "show_cnt", "open_dt", "target_dt").
		From("dashboard_records").
		Where(sq.Eq{"job_id": jobID}).
		OrderBy("id"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Record, 0)
	for rows.Next() {
		var r model.Record
		if err := rows.Scan(&r.MovieCode, &r.MovieName, &r.SalesAmount, &r.Audience, &r.Screens, &r.Shows, &r.ReleaseDate, &r.ObservedOn); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
