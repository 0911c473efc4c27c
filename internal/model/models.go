package model

import "sort"

// Record is one row of the box-office table: a movie's counts on one observation day.
type Record struct {
	MovieCode   string `json:"movieCd" yaml:"movieCd"`
	MovieName   string `json:"movieNm" yaml:"movieNm"`
	SalesAmount int64  `json:"salesAmt" yaml:"salesAmt"`
	Audience    int64  `json:"audiCnt" yaml:"audiCnt"`
	Screens     int64  `json:"scrnCnt" yaml:"scrnCnt"`
	Shows       int64  `json:"showCnt" yaml:"showCnt"`
	ReleaseDate Date   `json:"openDt" yaml:"openDt"`   // movie-level, same on every row of a movie
	ObservedOn  Date   `json:"targetDt" yaml:"targetDt"` // row-level snapshot day
}

// Selection is a set of movie names (or codes). Order is irrelevant.
type Selection map[string]struct{}

// NewSelection builds a selection; duplicates collapse and blanks are ignored.
func NewSelection(values ...string) Selection {
	s := make(Selection, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		s[v] = struct{}{}
	}
	return s
}

// Has reports whether v is selected.
func (s Selection) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of selected values.
func (s Selection) Len() int { return len(s) }

// Sorted returns the selected values in lexical order.
func (s Selection) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
