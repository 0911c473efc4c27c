package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxoffice-pipeline/internal/model"
)

func sampleTable() []model.Record {
	return []model.Record{
		rec("Alpha", "2023-01-01", "2023-01-01", 1200, 120, 30, 90),
		rec("Beta", "2023-01-05", "2023-01-05", 800, 80, 20, 60),
		rec("Alpha", "2023-01-01", "2023-01-02", 1100, 110, 28, 85),
		rec("Gamma", "2022-12-20", "2023-01-03", 300, 30, 10, 20),
		rec("Beta", "2023-01-05", "2023-01-06", 700, 70, 19, 55),
		rec("Delta", "", "", 50, 5, 1, 2),
	}
}

func TestSummarizeMetricsMatchesManualSums(t *testing.T) {
	records := sampleTable()
	selections := [][]string{
		{"Alpha"},
		{"Alpha", "Beta"},
		{"Gamma", "Delta"},
		{"Alpha", "Beta", "Gamma", "Delta"},
		{"Nobody"},
	}

	for _, sel := range selections {
		set := model.NewSelection(sel...)
		var sales, audience, screens, shows int64
		for _, r := range records {
			if set.Has(r.MovieName) {
				sales += r.SalesAmount
				audience += r.Audience
				screens += r.Screens
				shows += r.Shows
			}
		}

		summary := SummarizeMetrics(Select(records, set))
		require.Len(t, summary, 4)
		assert.Equal(t, []model.AggregateRow{
			{Metric: model.MetricSalesAmount, Value: sales},
			{Metric: model.MetricAudience, Value: audience},
			{Metric: model.MetricScreens, Value: screens},
			{Metric: model.MetricShows, Value: shows},
		}, summary, "selection %v", sel)
	}
}

func TestSumsSaturateInsteadOfWrapping(t *testing.T) {
	records := []model.Record{
		rec("Alpha", "2023-01-01", "2023-01-01", math.MaxInt64, math.MaxInt64, 1, 1),
		rec("Alpha", "2023-01-01", "2023-01-02", 1, 5, 1, 1),
	}

	summary := SummarizeMetrics(records)
	assert.Equal(t, int64(math.MaxInt64), MetricValue(summary, model.MetricSalesAmount))
	assert.Equal(t, int64(math.MaxInt64), MetricValue(summary, model.MetricAudience))
	assert.Equal(t, int64(2), MetricValue(summary, model.MetricShows))

	groups := GroupByEntityYear(records)
	require.Len(t, groups, 1)
	assert.Equal(t, int64(math.MaxInt64), groups[0].Audience)

	periods := GroupByPeriod(records, model.GranularityMonthly)
	require.Len(t, periods, 1)
	assert.Equal(t, int64(math.MaxInt64), periods[0].SalesAmount)
	assert.Equal(t, int64(2), periods[0].Screens)
}

func TestSummarizeMetricsEmpty(t *testing.T) {
	summary := SummarizeMetrics(nil)

	require.Len(t, summary, 4)
	for i, row := range summary {
		assert.Equal(t, model.Metrics[i], row.Metric)
		assert.Zero(t, row.Value)
	}
}

func TestScenarioSelectedSummary(t *testing.T) {
	summary := SummarizeMetrics(Select(scenarioRecords(), model.NewSelection("A")))

	assert.Equal(t, int64(100), MetricValue(summary, model.MetricSalesAmount))
	assert.Equal(t, int64(1), MetricValue(summary, model.MetricAudience))
	assert.Equal(t, int64(1), MetricValue(summary, model.MetricScreens))
	assert.Equal(t, int64(1), MetricValue(summary, model.MetricShows))
}

func TestGroupByEntityYear(t *testing.T) {
	records := []model.Record{
		rec("A", "2023-01-15", "2023-01-15", 0, 5, 10, 100),
		rec("A", "2023-01-01", "2023-01-16", 0, 7, 20, 200),
		rec("A", "2024-02-01", "2024-02-01", 0, 1, 1, 1),
		rec("B", "", "2023-01-01", 0, 9, 9, 9),
	}

	groups := GroupByEntityYear(records)

	require.Len(t, groups, 2)
	assert.Equal(t, model.GroupAggregate{
		Movie: "A", Year: 2023, Shows: 300, Screens: 30, Audience: 12,
		FirstRelease: model.MustParseDate("2023-01-01"),
	}, groups[0])
	assert.Equal(t, 2024, groups[1].Year)
}

func TestDurationByEntity(t *testing.T) {
	records := []model.Record{
		rec("A", "2023-01-01", "2023-01-01", 0, 0, 0, 0),
		rec("A", "2023-01-01", "2023-01-02", 0, 0, 0, 0),
		rec("A", "2023-01-15", "2023-01-15", 0, 0, 0, 0),
		rec("B", "2023-05-05", "2023-05-05", 0, 0, 0, 0),
		rec("C", "", "2023-05-05", 0, 0, 0, 0),
	}

	durations := DurationByEntity(records)

	require.Len(t, durations, 2)
	assert.Equal(t, model.DurationSummary{
		Movie: "A",
		Start: model.MustParseDate("2023-01-01"),
		End:   model.MustParseDate("2023-01-15"),
		Days:  14,
	}, durations[0])
	assert.Equal(t, 0, durations[1].Days)
}

func TestUnion(t *testing.T) {
	records := sampleTable()
	selected := Select(records, model.NewSelection("Alpha"))
	competing := []model.Record{records[1], records[0], records[3], records[1]}

	merged := Union(selected, competing)

	seen := make(map[model.Record]int)
	for _, r := range merged {
		seen[r]++
	}
	for r, n := range seen {
		assert.Equal(t, 1, n, "duplicate %v", r)
	}
	for _, r := range append(append([]model.Record{}, selected...), competing...) {
		assert.Contains(t, merged, r)
	}
	assert.Equal(t, []string{"Alpha", "Alpha", "Beta", "Gamma"}, names(merged))
}

func TestUnionEmpty(t *testing.T) {
	merged := Union(nil, nil)
	assert.NotNil(t, merged)
	assert.Empty(t, merged)
}

func TestGroupByPeriod(t *testing.T) {
	records := []model.Record{
		rec("A", "2023-01-01", "2023-01-02", 10, 1, 1, 1), // Monday
		rec("A", "2023-01-01", "2023-01-08", 20, 2, 1, 1), // Sunday, same ISO week
		rec("A", "2023-01-01", "2023-01-09", 40, 4, 1, 1), // next Monday
		rec("B", "2023-01-01", "2023-02-01", 5, 1, 1, 1),
		rec("B", "2023-01-01", "", 5, 1, 1, 1),
	}

	weekly := GroupByPeriod(records, model.GranularityWeekly)
	require.Len(t, weekly, 3)
	assert.Equal(t, "2023-W01", weekly[0].Period)
	assert.Equal(t, "2023-01-02", weekly[0].PeriodStart.String())
	assert.Equal(t, int64(30), weekly[0].SalesAmount)
	assert.Equal(t, "2023-W02", weekly[1].Period)
	assert.Equal(t, "B", weekly[2].Movie)

	monthly := GroupByPeriod(records, model.GranularityMonthly)
	require.Len(t, monthly, 2)
	assert.Equal(t, "2023-01", monthly[0].Period)
	assert.Equal(t, int64(70), monthly[0].SalesAmount)
	assert.Equal(t, int64(7), monthly[0].Audience)

	yearly := GroupByPeriod(records, model.GranularityYearly)
	require.Len(t, yearly, 2)
	assert.Equal(t, "2023", yearly[0].Period)

	daily := GroupByPeriod(records, model.GranularityDaily)
	assert.Len(t, daily, 4)
}
