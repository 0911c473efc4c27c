package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxoffice-pipeline/internal/model"
)

func TestBuildChartsFollowsVariantOrder(t *testing.T) {
	d := scenarioDashboard(t)
	v := model.Variant{
		Aggregation: model.GranularityDaily,
		Charts:      []model.ChartKind{model.ChartDumbbell, model.ChartLine},
	}

	charts := BuildCharts(v, d)

	require.Len(t, charts, 2)
	assert.Equal(t, model.ChartDumbbell, charts[0].Kind)
	assert.Equal(t, model.ChartLine, charts[1].Kind)
}

func TestLineChartDaily(t *testing.T) {
	d := scenarioDashboard(t)

	line := lineChart(model.GranularityDaily, d)

	assert.Equal(t, "targetDt", line.Encoding.X.Field)
	assert.Equal(t, model.FieldTemporal, line.Encoding.X.Type)
	assert.Equal(t, "audiCnt", line.Encoding.Y.Field)
	require.NotNil(t, line.Encoding.Color)
	assert.Equal(t, "movieNm", line.Encoding.Color.Field)
	require.Len(t, line.Rows, 2)
	assert.Equal(t, "2023-01-10", line.Rows[1]["targetDt"])
	assert.Equal(t, int64(2), line.Rows[1]["audiCnt"])
}

func TestLineChartPeriods(t *testing.T) {
	d := scenarioDashboard(t)

	line := lineChart(model.GranularityWeekly, d)

	assert.Equal(t, "Audience per week", line.Title)
	assert.Equal(t, "periodStart", line.Encoding.X.Field)
	require.Len(t, line.Rows, len(d.Periods))
	assert.Equal(t, "2022-W52", line.Rows[0]["period"])
	assert.Equal(t, "2022-12-26", line.Rows[0]["periodStart"])
}

func TestScatterAndBoxplot(t *testing.T) {
	d := scenarioDashboard(t)

	scatter := scatterChart(d)
	assert.Equal(t, "scrnCnt", scatter.Encoding.X.Field)
	assert.Equal(t, "audiCnt", scatter.Encoding.Y.Field)
	require.Len(t, scatter.Rows, 2)
	assert.Equal(t, 2023, scatter.Rows[0]["year"])

	box := boxplotChart(d)
	assert.Equal(t, model.FieldNominal, box.Encoding.X.Type)
	assert.Equal(t, "salesAmt", box.Encoding.Y.Field)
	assert.Len(t, box.Rows, len(d.Combined))
}

func TestDumbbellChart(t *testing.T) {
	d := &model.Dashboard{Durations: DurationByEntity([]model.Record{
		rec("A", "2023-01-01", "2023-01-01", 0, 0, 0, 0),
		rec("A", "2023-01-15", "2023-01-15", 0, 0, 0, 0),
	})}

	chart := dumbbellChart(d)

	require.NotNil(t, chart.Encoding.X2)
	assert.Equal(t, "end", chart.Encoding.X2.Field)
	assert.Equal(t, "movieNm", chart.Encoding.Y.Field)
	require.Len(t, chart.Rows, 1)
	assert.Equal(t, "2023-01-01", chart.Rows[0]["start"])
	assert.Equal(t, "2023-01-15", chart.Rows[0]["end"])
	assert.Equal(t, 14, chart.Rows[0]["durationDays"])
}
