package model

// MetricCard is one numeric summary card.
type MetricCard struct {
	Metric    string `json:"metric" yaml:"metric"`
	Label     string `json:"label" yaml:"label"`
	Value     int64  `json:"value" yaml:"value"`
	Formatted string `json:"formatted" yaml:"formatted"`
}

// Field types for chart channels.
const (
	FieldTemporal     = "temporal"
	FieldQuantitative = "quantitative"
	FieldNominal      = "nominal"
)

// Channel maps a dataset field onto a visual channel.
type Channel struct {
	Field string `json:"field" yaml:"field"`
	Type  string `json:"type" yaml:"type"`
}

// Encoding is the field-to-channel mapping a renderer needs.
type Encoding struct {
	X       Channel  `json:"x" yaml:"x"`
	X2      *Channel `json:"x2,omitempty" yaml:"x2,omitempty"`
	Y       Channel  `json:"y" yaml:"y"`
	Color   *Channel `json:"color,omitempty" yaml:"color,omitempty"`
	Tooltip []string `json:"tooltip,omitempty" yaml:"tooltip,omitempty"`
}

// ChartDataset is a renderable table plus its encoding.
type ChartDataset struct {
	Kind     ChartKind        `json:"kind" yaml:"kind"`
	Title    string           `json:"title" yaml:"title"`
	Encoding Encoding         `json:"encoding" yaml:"encoding"`
	Rows     []map[string]any `json:"rows" yaml:"rows"`
}

// Dashboard is everything one pipeline run hands to a presenter.
type Dashboard struct {
	JobID       string            `json:"job_id,omitempty" yaml:"jobId,omitempty"`
	Variant     string            `json:"variant" yaml:"variant"`
	Aggregation Granularity       `json:"aggregation" yaml:"aggregation"`
	Selection   []string          `json:"selection" yaml:"selection"`
	Cards       []MetricCard      `json:"cards" yaml:"cards"`
	Summary     []AggregateRow    `json:"summary" yaml:"summary"`
	Windows     []DateWindow      `json:"windows" yaml:"windows"`
	Selected    []Record          `json:"-" yaml:"-"`
	Combined    []Record          `json:"records" yaml:"records"`
	YearGroups  []GroupAggregate  `json:"year_groups" yaml:"yearGroups"`
	Durations   []DurationSummary `json:"durations" yaml:"durations"`
	Periods     []PeriodAggregate `json:"periods" yaml:"periods"`
	Charts      []ChartDataset    `json:"charts" yaml:"charts"`
	Warnings    int               `json:"parse_warnings" yaml:"parseWarnings"`
	Exports     []ExportResult    `json:"exports,omitempty" yaml:"-"`
}
