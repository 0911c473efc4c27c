package model

import "time"

// Job statuses stored in the jobs table.
const (
	StatusPending   = "pending"
	StatusLoading   = "loading"
	StatusBuilding  = "building"
	StatusExporting = "exporting"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// JobInfo is a row of the jobs table.
type JobInfo struct {
	ID        string           `json:"id"`
	Request   DashboardRequest `json:"spec"`
	Status    string           `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// StageProgress records one pipeline stage of a job.
type StageProgress struct {
	Stage      string     `json:"stage"`
	Status     string     `json:"status"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	RecordsIn  int        `json:"records_in"`
	RecordsOut int        `json:"records_out"`
}

// PipelineLog is one structured log line persisted for a job.
type PipelineLog struct {
	Stage     string         `json:"stage"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// JobError is a failure recorded for a job.
type JobError struct {
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
