package pipeline

import (
	"fmt"
	"math"
	"sort"
	"time"

	"boxoffice-pipeline/internal/model"
)

// SummarizeMetrics sums the four tracked metrics over records, in model.Metrics
// order. An empty input yields four zero rows.
func SummarizeMetrics(records []model.Record) []model.AggregateRow {
	var sales, audience, screens, shows int64
	for _, rec := range records {
		sales = addCount(sales, rec.SalesAmount)
		audience = addCount(audience, rec.Audience)
		screens = addCount(screens, rec.Screens)
		shows = addCount(shows, rec.Shows)
	}
	return []model.AggregateRow{
		{Metric: model.MetricSalesAmount, Value: sales},
		{Metric: model.MetricAudience, Value: audience},
		{Metric: model.MetricScreens, Value: screens},
		{Metric: model.MetricShows, Value: shows},
	}
}

// addCount adds two non-negative counts, saturating at math.MaxInt64.
func addCount(a, b int64) int64 {
	if b > math.MaxInt64-a {
		return math.MaxInt64
	}
	return a + b
}

// MetricValue looks a metric up in a summary; 0 when absent.
func MetricValue(summary []model.AggregateRow, metric string) int64 {
	for _, row := range summary {
		if row.Metric == metric {
			return row.Value
		}
	}
	return 0
}

type movieYear struct {
	movie string
	year  int
}

// GroupByEntityYear rolls records up by (movie, release year), summing show,
// screen and audience counts and keeping the earliest release date. Rows with a
// null release date have no year and are skipped. Output is sorted by movie, then year.
func GroupByEntityYear(records []model.Record) []model.GroupAggregate {
	groups := make(map[movieYear]*model.GroupAggregate)
	for _, rec := range records {
		if !rec.ReleaseDate.Valid() {
			continue
		}
		key := movieYear{movie: rec.MovieName, year: rec.ReleaseDate.Year()}
		g, ok := groups[key]
		if !ok {
			g = &model.GroupAggregate{Movie: key.movie, Year: key.year, FirstRelease: rec.ReleaseDate}
			groups[key] = g
		}
		g.Shows = addCount(g.Shows, rec.Shows)
		g.Screens = addCount(g.Screens, rec.Screens)
		g.Audience = addCount(g.Audience, rec.Audience)
		if rec.ReleaseDate.Before(g.FirstRelease) {
			g.FirstRelease = rec.ReleaseDate
		}
	}

	out := make([]model.GroupAggregate, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Movie != out[j].Movie {
			return out[i].Movie < out[j].Movie
		}
		return out[i].Year < out[j].Year
	})
	return out
}

// DurationByEntity reports, per movie, the earliest and latest release date seen
// and the whole days between them. Movies without any valid release date are omitted.
func DurationByEntity(records []model.Record) []model.DurationSummary {
	spans := make(map[string]*model.DurationSummary)
	for _, rec := range records {
		d := rec.ReleaseDate
		if !d.Valid() {
			continue
		}
		s, ok := spans[rec.MovieName]
		if !ok {
			spans[rec.MovieName] = &model.DurationSummary{Movie: rec.MovieName, Start: d, End: d}
			continue
		}
		if d.Before(s.Start) {
			s.Start = d
		}
		if d.After(s.End) {
			s.End = d
		}
	}

	out := make([]model.DurationSummary, 0, len(spans))
	for _, s := range spans {
		s.Days = s.Start.DaysUntil(s.End)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Movie < out[j].Movie })
	return out
}

// Union merges two record sets keyed by full record identity, keeping the
// first occurrence and its position.
func Union(selected, competing []model.Record) []model.Record {
	seen := make(map[model.Record]bool, len(selected)+len(competing))
	out := make([]model.Record, 0, len(selected)+len(competing))
	for _, set := range [][]model.Record{selected, competing} {
		for _, rec := range set {
			if seen[rec] {
				continue
			}
			seen[rec] = true
			out = append(out, rec)
		}
	}
	return out
}

// PeriodOf returns the bucket label and start date of d for granularity g.
// Weeks are ISO weeks starting on Monday.
func PeriodOf(d model.Date, g model.Granularity) (string, model.Date) {
	t := d.Time()
	switch g {
	case model.GranularityWeekly:
		offset := (int(t.Weekday()) + 6) % 7
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week), d.AddDays(-offset)
	case model.GranularityMonthly:
		start := model.NewDate(t.Year(), t.Month(), 1)
		return t.Format("2006-01"), start
	case model.GranularityYearly:
		start := model.NewDate(t.Year(), time.January, 1)
		return t.Format("2006"), start
	default:
		return d.String(), d
	}
}

type moviePeriod struct {
	movie string
	start model.Date
}

// GroupByPeriod sums each movie's counts per observation-date bucket. Rows with
// a null observation date are skipped. Output is sorted by movie, then period start.
func GroupByPeriod(records []model.Record, g model.Granularity) []model.PeriodAggregate {
	groups := make(map[moviePeriod]*model.PeriodAggregate)
	for _, rec := range records {
		if !rec.ObservedOn.Valid() {
			continue
		}
		label, start := PeriodOf(rec.ObservedOn, g)
		key := moviePeriod{movie: rec.MovieName, start: start}
		p, ok := groups[key]
		if !ok {
			p = &model.PeriodAggregate{Movie: rec.MovieName, Period: label, PeriodStart: start}
			groups[key] = p
		}
		p.SalesAmount = addCount(p.SalesAmount, rec.SalesAmount)
		p.Audience = addCount(p.Audience, rec.Audience)
		p.Screens = addCount(p.Screens, rec.Screens)
		p.Shows = addCount(p.Shows, rec.Shows)
	}

	out := make([]model.PeriodAggregate, 0, len(groups))
	for _, p := range groups {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Movie != out[j].Movie {
			return out[i].Movie < out[j].Movie
		}
		return out[i].PeriodStart.Before(out[j].PeriodStart)
	})
	return out
}
