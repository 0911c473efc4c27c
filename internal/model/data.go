package model

import "time"

// Metric names in the fixed order used by summaries and cards.
const (
	MetricSalesAmount = "salesAmt"
	MetricAudience    = "audiCnt"
	MetricScreens     = "scrnCnt"
	MetricShows       = "showCnt"
)

// Metrics lists the tracked metrics in summary order.
var Metrics = []string{MetricSalesAmount, MetricAudience, MetricScreens, MetricShows}

// DateWindow is the closed interval [Start, End] around a movie's release date.
type DateWindow struct {
	Movie  string `json:"movie" yaml:"movie"`
	Anchor Date   `json:"anchor" yaml:"anchor"`
	Start  Date   `json:"start" yaml:"start"`
	End    Date   `json:"end" yaml:"end"`
}

// Contains reports whether d falls inside the window, bounds included.
func (w DateWindow) Contains(d Date) bool {
	if !d.Valid() {
		return false
	}
	return !d.Before(w.Start) && !d.After(w.End)
}

// AggregateRow is one summed metric.
type AggregateRow struct {
	Metric string `json:"metric" yaml:"metric"`
	Value  int64  `json:"value" yaml:"value"`
}

// GroupAggregate is the movie x release-year rollup.
type GroupAggregate struct {
	Movie        string `json:"movieNm" yaml:"movieNm"`
	Year         int    `json:"year" yaml:"year"`
	Shows        int64  `json:"showCnt" yaml:"showCnt"`
	Screens      int64  `json:"scrnCnt" yaml:"scrnCnt"`
	Audience     int64  `json:"audiCnt" yaml:"audiCnt"`
	FirstRelease Date   `json:"openDt" yaml:"openDt"`
}

// DurationSummary spans the earliest and latest release date seen for a movie.
type DurationSummary struct {
	Movie string `json:"movieNm" yaml:"movieNm"`
	Start Date   `json:"start" yaml:"start"`
	End   Date   `json:"end" yaml:"end"`
	Days  int    `json:"durationDays" yaml:"durationDays"`
}

// PeriodAggregate sums a movie's counts over one observation period.
type PeriodAggregate struct {
	Movie       string `json:"movieNm" yaml:"movieNm"`
	Period      string `json:"period" yaml:"period"`
	PeriodStart Date   `json:"periodStart" yaml:"periodStart"`
	SalesAmount int64  `json:"salesAmt" yaml:"salesAmt"`
	Audience    int64  `json:"audiCnt" yaml:"audiCnt"`
	Screens     int64  `json:"scrnCnt" yaml:"scrnCnt"`
	Shows       int64  `json:"showCnt" yaml:"showCnt"`
}

// ExportResult represents the result of an export operation
type ExportResult struct {
	Type        string    `json:"type"` // "csv", "json", "yaml", "parquet", "html", "database"
	Path        string    `json:"path"` // file path or table name
	RecordCount int       `json:"record_count"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
