package pipeline

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"boxoffice-pipeline/internal/model"
)

var numberPrinter = message.NewPrinter(language.English)

// FormatNumber renders n with grouped thousands, e.g. 1234567 -> "1,234,567".
func FormatNumber(n int64) string {
	return numberPrinter.Sprintf("%d", n)
}

var cardLabels = map[string]string{
	model.MetricSalesAmount: "Total Sales Amount",
	model.MetricAudience:    "Total Audience Count",
	model.MetricScreens:     "Total Screen Count",
	model.MetricShows:       "Total Show Count",
}

// Cards turns a metric summary into the four display cards, always in
// model.Metrics order. Metrics missing from summary show as 0.
func Cards(summary []model.AggregateRow) []model.MetricCard {
	cards := make([]model.MetricCard, 0, len(model.Metrics))
	for _, metric := range model.Metrics {
		v := MetricValue(summary, metric)
		cards = append(cards, model.MetricCard{
			Metric:    metric,
			Label:     cardLabels[metric],
			Value:     v,
			Formatted: FormatNumber(v),
		})
	}
	return cards
}
