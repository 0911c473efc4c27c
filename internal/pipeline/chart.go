package pipeline

import (
	"boxoffice-pipeline/internal/model"
)

func channel(field, typ string) model.Channel { return model.Channel{Field: field, Type: typ} }

func channelRef(field, typ string) *model.Channel {
	c := channel(field, typ)
	return &c
}

// BuildCharts produces the datasets enabled by v from an already aggregated dashboard.
// Chart order follows v.Charts.
func BuildCharts(v model.Variant, d *model.Dashboard) []model.ChartDataset {
	charts := make([]model.ChartDataset, 0, len(v.Charts))
	for _, kind := range v.Charts {
		switch kind {
		case model.ChartLine:
			charts = append(charts, lineChart(v.Aggregation, d))
		case model.ChartScatter:
			charts = append(charts, scatterChart(d))
		case model.ChartBoxplot:
			charts = append(charts, boxplotChart(d))
		case model.ChartDumbbell:
			charts = append(charts, dumbbellChart(d))
		}
	}
	return charts
}

// lineChart plots audience over time, per movie. Daily mode uses raw rows;
// other modes use the period rollup.
func lineChart(g model.Granularity, d *model.Dashboard) model.ChartDataset {
	if g == model.GranularityDaily || g == "" {
		rows := make([]map[string]any, 0, len(d.Combined))
		for _, rec := range d.Combined {
			if !rec.ObservedOn.Valid() {
				continue
			}
			rows = append(rows, map[string]any{
				colMovieName: rec.MovieName,
				colTarget:    rec.ObservedOn.String(),
				colAudience:  rec.Audience,
				colSales:     rec.SalesAmount,
			})
		}
		return model.ChartDataset{
			Kind:  model.ChartLine,
			Title: "Daily audience",
			Encoding: model.Encoding{
				X:       channel(colTarget, model.FieldTemporal),
				Y:       channel(colAudience, model.FieldQuantitative),
				Color:   channelRef(colMovieName, model.FieldNominal),
				Tooltip: []string{colMovieName, colTarget, colAudience, colSales},
			},
			Rows: rows,
		}
	}

	rows := make([]map[string]any, 0, len(d.Periods))
	for _, p := range d.Periods {
		rows = append(rows, map[string]any{
			colMovieName:  p.Movie,
			"period":      p.Period,
			"periodStart": p.PeriodStart.String(),
			colAudience:   p.Audience,
			colSales:      p.SalesAmount,
		})
	}
	return model.ChartDataset{
		Kind:  model.ChartLine,
		Title: "Audience per " + string(g),
		Encoding: model.Encoding{
			X:       channel("periodStart", model.FieldTemporal),
			Y:       channel(colAudience, model.FieldQuantitative),
			Color:   channelRef(colMovieName, model.FieldNominal),
			Tooltip: []string{colMovieName, "period", colAudience, colSales},
		},
		Rows: rows,
	}
}

func scatterChart(d *model.Dashboard) model.ChartDataset {
	rows := make([]map[string]any, 0, len(d.YearGroups))
	for _, g := range d.YearGroups {
		rows = append(rows, map[string]any{
			colMovieName: g.Movie,
			"year":       g.Year,
			colShows:     g.Shows,
			colScreens:   g.Screens,
			colAudience:  g.Audience,
			colOpenDate:  g.FirstRelease.String(),
		})
	}
	return model.ChartDataset{
		Kind:  model.ChartScatter,
		Title: "Screens vs audience by release year",
		Encoding: model.Encoding{
			X:       channel(colScreens, model.FieldQuantitative),
			Y:       channel(colAudience, model.FieldQuantitative),
			Color:   channelRef(colMovieName, model.FieldNominal),
			Tooltip: []string{colMovieName, "year", colShows, colScreens, colAudience},
		},
		Rows: rows,
	}
}

func boxplotChart(d *model.Dashboard) model.ChartDataset {
	rows := make([]map[string]any, 0, len(d.Combined))
	for _, rec := range d.Combined {
		rows = append(rows, map[string]any{
			colMovieName: rec.MovieName,
			colSales:     rec.SalesAmount,
			colTarget:    rec.ObservedOn.String(),
		})
	}
	return model.ChartDataset{
		Kind:  model.ChartBoxplot,
		Title: "Daily sales distribution",
		Encoding: model.Encoding{
			X:       channel(colMovieName, model.FieldNominal),
			Y:       channel(colSales, model.FieldQuantitative),
			Color:   channelRef(colMovieName, model.FieldNominal),
			Tooltip: []string{colMovieName, colTarget, colSales},
		},
		Rows: rows,
	}
}

func dumbbellChart(d *model.Dashboard) model.ChartDataset {
	rows := make([]map[string]any, 0, len(d.Durations))
	for _, s := range d.Durations {
		rows = append(rows, map[string]any{
			colMovieName:   s.Movie,
			"start":        s.Start.String(),
			"end":          s.End.String(),
			"durationDays": s.Days,
		})
	}
	return model.ChartDataset{
		Kind:  model.ChartDumbbell,
		Title: "Release span",
		Encoding: model.Encoding{
			X:       channel("start", model.FieldTemporal),
			X2:      channelRef("end", model.FieldTemporal),
			Y:       channel(colMovieName, model.FieldNominal),
			Tooltip: []string{colMovieName, "start", "end", "durationDays"},
		},
		Rows: rows,
	}
}
