package pipeline

import (
	"boxoffice-pipeline/internal/model"
)

// Select returns the records whose movie name is in names, in original order.
// An empty selection yields an empty (non-nil) result.
func Select(records []model.Record, names model.Selection) []model.Record {
	return selectWhere(records, func(rec model.Record) bool { return names.Has(rec.MovieName) })
}

// SelectByCode is Select keyed on movie code.
func SelectByCode(records []model.Record, codes model.Selection) []model.Record {
	return selectWhere(records, func(rec model.Record) bool { return codes.Has(rec.MovieCode) })
}

func selectWhere(records []model.Record, keep func(model.Record) bool) []model.Record {
	out := make([]model.Record, 0)
	for _, rec := range records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// DistinctNames lists movie names in first-seen order, for a selection control.
func DistinctNames(records []model.Record) []string {
	return distinct(records, func(rec model.Record) string { return rec.MovieName })
}

// DistinctCodes lists movie codes in first-seen order.
func DistinctCodes(records []model.Record) []string {
	return distinct(records, func(rec model.Record) string { return rec.MovieCode })
}

func distinct(records []model.Record, key func(model.Record) string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, rec := range records {
		k := key(rec)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// ResolveDefaults keeps the defaults present in available, in default order.
// Absent defaults are dropped silently.
func ResolveDefaults(defaults, available []string) []string {
	present := model.NewSelection(available...)
	out := make([]string, 0, len(defaults))
	for _, d := range defaults {
		if present.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// EntityNames returns the selection of movie names appearing in records.
func EntityNames(records []model.Record) model.Selection {
	return model.NewSelection(DistinctNames(records)...)
}
