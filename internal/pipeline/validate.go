package pipeline

import (
	"boxoffice-pipeline/internal/model"
)

// validateHeader returns the required columns absent from idx, in schema order.
func validateHeader(idx columnIndex) []string {
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// ValidationStats summarises soft checks over a loaded table. None of them reject rows.
type ValidationStats struct {
	Rows               int `json:"rows"`
	NullReleaseDates   int `json:"null_release_dates"`
	NullObservedDates  int `json:"null_observed_dates"`
	ReleaseAfterTarget int `json:"release_after_target"`
	BlankNames         int `json:"blank_names"`
}

// ValidateRecords counts rows that break the expected (but unenforced) invariants:
// release date on or before observation date, both dates present, a movie name.
func ValidateRecords(records []model.Record) ValidationStats {
	stats := ValidationStats{Rows: len(records)}
	for _, rec := range records {
		if !rec.ReleaseDate.Valid() {
			stats.NullReleaseDates++
		}
		if !rec.ObservedOn.Valid() {
			stats.NullObservedDates++
		}
		if rec.ReleaseDate.After(rec.ObservedOn) {
			stats.ReleaseAfterTarget++
		}
		if rec.MovieName == "" {
			stats.BlankNames++
		}
	}
	return stats
}
