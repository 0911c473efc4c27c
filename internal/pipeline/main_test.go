package pipeline

import (
	"testing"

	"go.uber.org/goleak"

	"boxoffice-pipeline/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// rec builds a record the way the fixtures in the tests describe rows:
// name, release date, observation date, then sales, audience, screens, shows.
func rec(name, open, target string, sales, audience, screens, shows int64) model.Record {
	r := model.Record{
		MovieCode:   "cd-" + name,
		MovieName:   name,
		SalesAmount: sales,
		Audience:    audience,
		Screens:     screens,
		Shows:       shows,
	}
	if open != "" {
		r.ReleaseDate = model.MustParseDate(open)
	}
	if target != "" {
		r.ObservedOn = model.MustParseDate(target)
	}
	return r
}

// scenarioRecords is the three-movie example: A and B release nine days apart, C two months later.
func scenarioRecords() []model.Record {
	return []model.Record{
		rec("A", "2023-01-01", "2023-01-01", 100, 1, 1, 1),
		rec("B", "2023-01-10", "2023-01-10", 50, 2, 2, 2),
		rec("C", "2023-03-01", "2023-03-01", 10, 3, 3, 3),
	}
}

func names(records []model.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.MovieName)
	}
	return out
}
