package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxoffice-pipeline/internal/model"
)

func TestFormatNumber(t *testing.T) {
	cases := map[int64]string{
		0:          "0",
		999:        "999",
		1000:       "1,000",
		1234567:    "1,234,567",
		9876543210: "9,876,543,210",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatNumber(in))
	}
}

func TestCards(t *testing.T) {
	cards := Cards([]model.AggregateRow{
		{Metric: model.MetricShows, Value: 12},
		{Metric: model.MetricSalesAmount, Value: 1500000},
	})

	require.Len(t, cards, 4)
	assert.Equal(t, model.MetricCard{
		Metric: model.MetricSalesAmount, Label: "Total Sales Amount", Value: 1500000, Formatted: "1,500,000",
	}, cards[0])
	assert.Equal(t, "Total Audience Count", cards[1].Label)
	assert.Zero(t, cards[1].Value)
	assert.Equal(t, "Total Screen Count", cards[2].Label)
	assert.Equal(t, "12", cards[3].Formatted)
}
