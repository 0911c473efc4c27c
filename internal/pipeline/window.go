package pipeline

import (
	"sort"

	"boxoffice-pipeline/internal/model"
)

// DefaultWindowDays is the radius of a competing window around a release date.
const DefaultWindowDays = 14

// CompetingWindows builds one [release-radius, release+radius] window per selected
// movie, using the release date of the movie's first record. Movies whose first
// record has a null release date produce no window. Windows come back in the
// order the movies first appear in records.
func CompetingWindows(records []model.Record, names model.Selection, radiusDays int) []model.DateWindow {
	windows := make([]model.DateWindow, 0, names.Len())
	seen := make(map[string]bool, names.Len())
	for _, rec := range records {
		if !names.Has(rec.MovieName) || seen[rec.MovieName] {
			continue
		}
		seen[rec.MovieName] = true
		if !rec.ReleaseDate.Valid() {
			continue
		}
		windows = append(windows, model.DateWindow{
			Movie:  rec.MovieName,
			Anchor: rec.ReleaseDate,
			Start:  rec.ReleaseDate.AddDays(-radiusDays),
			End:    rec.ReleaseDate.AddDays(radiusDays),
		})
	}
	return windows
}

// span is a merged, inclusive date interval.
type span struct {
	start, end model.Date
}

// windowIndex is the union of a window set as sorted, disjoint spans.
type windowIndex []span

// newWindowIndex merges overlapping or adjacent windows.
func newWindowIndex(windows []model.DateWindow) windowIndex {
	spans := make([]span, 0, len(windows))
	for _, w := range windows {
		if !w.Start.Valid() || !w.End.Valid() || w.End.Before(w.Start) {
			continue
		}
		spans = append(spans, span{start: w.Start, end: w.End})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start.Before(spans[j].start) })

	merged := make(windowIndex, 0, len(spans))
	for _, s := range spans {
		if n := len(merged); n > 0 && !s.start.After(merged[n-1].end.AddDays(1)) {
			if s.end.After(merged[n-1].end) {
				merged[n-1].end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// contains binary-searches for the first span ending on or after d.
func (idx windowIndex) contains(d model.Date) bool {
	if !d.Valid() {
		return false
	}
	i := sort.Search(len(idx), func(i int) bool { return !idx[i].end.Before(d) })
	return i < len(idx) && !d.Before(idx[i].start)
}

// MatchWindows returns the records whose observation date lies in at least one
// window, bounds inclusive, each record once and in original order.
func MatchWindows(records []model.Record, windows []model.DateWindow) []model.Record {
	idx := newWindowIndex(windows)
	out := make([]model.Record, 0)
	if len(idx) == 0 {
		return out
	}
	for _, rec := range records {
		if idx.contains(rec.ObservedOn) {
			out = append(out, rec)
		}
	}
	return out
}
