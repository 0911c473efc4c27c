package pipeline

import (
	"strings"
	"time"

	"boxoffice-pipeline/internal/model"
	"boxoffice-pipeline/pkg/utils"
)

// Canonical column names of the box-office table.
const (
	colMovieCode = "movieCd"
	colMovieName = "movieNm"
	colSales     = "salesAmt"
	colAudience  = "audiCnt"
	colScreens   = "scrnCnt"
	colShows     = "showCnt"
	colOpenDate  = "openDt"
	colTarget    = "targetDt"
)

// requiredColumns in the order reported by SchemaError.
var requiredColumns = []string{
	colMovieCode, colMovieName, colSales, colAudience, colScreens, colShows, colOpenDate, colTarget,
}

// columnAliases maps lower-cased header spellings onto canonical names.
var columnAliases = map[string]string{
	"moviecd": colMovieCode, "movie_cd": colMovieCode, "movie_code": colMovieCode,
	"movienm": colMovieName, "movie_nm": colMovieName, "movie_name": colMovieName,
	"salesamt": colSales, "sales_amt": colSales, "sales_amount": colSales,
	"audicnt": colAudience, "audi_cnt": colAudience, "audience_count": colAudience,
	"scrncnt": colScreens, "scrn_cnt": colScreens, "screen_count": colScreens,
	"showcnt": colShows, "show_cnt": colShows, "show_count": colShows,
	"opendt": colOpenDate, "open_dt": colOpenDate, "release_date": colOpenDate,
	"targetdt": colTarget, "target_dt": colTarget, "observation_date": colTarget,
}

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"20060102",
	"2006/01/02",
	"2006.01.02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseDate parses a date cell tolerantly. ok is false when nothing matched;
// callers substitute the null date.
func ParseDate(s string) (model.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.NullDate(), false
	}
	// Spreadsheet exports sometimes turn YYYYMMDD into "20230101.0"
	s = strings.TrimSuffix(s, ".0")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.DateOf(t), true
		}
	}
	return model.NullDate(), false
}

// columnIndex resolves canonical column -> position in a raw header row.
type columnIndex map[string]int

// indexHeader matches a header row against the required columns.
func indexHeader(path string, header []string) (columnIndex, error) {
	if len(header) == 0 {
		return nil, &SchemaError{Path: path}
	}
	idx := make(columnIndex, len(requiredColumns))
	for i, h := range header {
		clean := utils.CleanHeader(h)
		canonical, ok := columnAliases[strings.ToLower(clean)]
		if !ok {
			continue
		}
		if _, seen := idx[canonical]; !seen {
			idx[canonical] = i
		}
	}
	if missing := validateHeader(idx); len(missing) > 0 {
		return nil, &SchemaError{Path: path, Missing: missing}
	}
	return idx, nil
}

// cell returns the trimmed value of column col, or "" for short rows.
func (c columnIndex) cell(row []string, col string) string {
	i := c[col]
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// toRecord converts one raw row into a typed Record, parsing every field once.
// Cells that fail to parse are coerced (0 or null date) and reported as warnings.
// An empty date cell is a plain null date.
func (c columnIndex) toRecord(line int, row []string) (model.Record, []ParseWarning) {
	var warnings []ParseWarning

	count := func(col string) int64 {
		raw := c.cell(row, col)
		v, err := utils.ParseCount(raw)
		if err != nil {
			warnings = append(warnings, ParseWarning{Line: line, Column: col, Value: raw, Reason: err.Error()})
			return 0
		}
		return v
	}
	date := func(col string) model.Date {
		raw := c.cell(row, col)
		d, ok := ParseDate(raw)
		if !ok && raw != "" {
			warnings = append(warnings, ParseWarning{Line: line, Column: col, Value: raw, Reason: "unparseable date"})
		}
		return d
	}

	rec := model.Record{
		MovieCode:   c.cell(row, colMovieCode),
		MovieName:   c.cell(row, colMovieName),
		SalesAmount: count(colSales),
		Audience:    count(colAudience),
		Screens:     count(colScreens),
		Shows:       count(colShows),
		ReleaseDate: date(colOpenDate),
		ObservedOn:  date(colTarget),
	}
	return rec, warnings
}
