package model

// ChartKind names a chart dataset the pipeline can produce.
type ChartKind string

const (
	ChartLine     ChartKind = "line"
	ChartScatter  ChartKind = "scatter"
	ChartBoxplot  ChartKind = "boxplot"
	ChartDumbbell ChartKind = "dumbbell"
)

// Granularity is the observation-date bucket used for period rollups.
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "week"
	GranularityMonthly Granularity = "month"
	GranularityYearly  Granularity = "year"
)

// SelectBy says whether a selection holds movie names or movie codes.
type SelectBy string

const (
	SelectByName SelectBy = "name"
	SelectByCode SelectBy = "code"
)

// Variant is a named dashboard preset: which charts to build and how to aggregate.
type Variant struct {
	Name        string      `json:"name" yaml:"name"`
	Charts      []ChartKind `json:"charts" yaml:"charts"`
	Competing   bool        `json:"competing" yaml:"competing"`
	Aggregation Granularity `json:"aggregation" yaml:"aggregation"`
	SelectBy    SelectBy    `json:"selectBy" yaml:"selectBy"`
}

// Enabled reports whether the variant builds chart kind k.
func (v Variant) Enabled(k ChartKind) bool {
	for _, c := range v.Charts {
		if c == k {
			return true
		}
	}
	return false
}

// DashboardRequest is the body of POST /api/v1/dashboards and the job spec stored per run.
//
// Leaving both Movies and Codes out applies the configured defaults; an explicit
// empty list selects nothing.
type DashboardRequest struct {
	Movies      []string    `json:"movies,omitempty"`
	Codes       []string    `json:"codes,omitempty"`
	Variant     string      `json:"variant,omitempty"`
	Charts      []ChartKind `json:"charts,omitempty"`
	Aggregation Granularity `json:"aggregation,omitempty"`
}

// UsesDefaults reports whether the request leaves selection to the configured defaults.
func (r DashboardRequest) UsesDefaults() bool {
	return r.Movies == nil && r.Codes == nil
}
