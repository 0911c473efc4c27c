package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the canonical text form of a Date.
const DateLayout = "2006-01-02"

// Date is a nullable calendar date. The zero value is the null date.
//
// Dates are normalised to midnight UTC so two Dates for the same day compare
// equal with ==, which lets Record be used as a map key.
type Date struct {
	t     time.Time
	valid bool
}

// NewDate returns the date for year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), valid: true}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// NullDate returns the null date marker.
func NullDate() Date { return Date{} }

// MustParseDate parses a YYYY-MM-DD string and panics on failure. Test helper.
func MustParseDate(s string) Date {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return DateOf(t)
}

// Valid reports whether d holds a date.
func (d Date) Valid() bool { return d.valid }

// Time returns the date as midnight UTC; zero time for the null date.
func (d Date) Time() time.Time { return d.t }

// Year returns the calendar year, or 0 for the null date.
func (d Date) Year() int {
	if !d.valid {
		return 0
	}
	return d.t.Year()
}

// AddDays returns d shifted by n days. The null date stays null.
func (d Date) AddDays(n int) Date {
	if !d.valid {
		return d
	}
	return Date{t: d.t.AddDate(0, 0, n), valid: true}
}

// Before reports whether d is strictly before o. Null dates are never before anything.
func (d Date) Before(o Date) bool {
	return d.valid && o.valid && d.t.Before(o.t)
}

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool {
	return d.valid && o.valid && d.t.After(o.t)
}

// Compare orders dates with the null date first.
func (d Date) Compare(o Date) int {
	switch {
	case !d.valid && !o.valid:
		return 0
	case !d.valid:
		return -1
	case !o.valid:
		return 1
	}
	return d.t.Compare(o.t)
}

// DaysUntil returns the whole days from d to o (negative if o is earlier).
func (d Date) DaysUntil(o Date) int {
	if !d.valid || !o.valid {
		return 0
	}
	return int(o.t.Sub(d.t).Hours() / 24)
}

func (d Date) String() string {
	if !d.valid {
		return ""
	}
	return d.t.Format(DateLayout)
}

// MarshalJSON encodes the null date as JSON null.
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = NullDate()
		return nil
	}
	t, err := time.Parse(DateLayout, *s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", *s, err)
	}
	*d = DateOf(t)
	return nil
}

// MarshalYAML writes the canonical text form; null dates become empty.
func (d Date) MarshalYAML() (interface{}, error) {
	if !d.valid {
		return nil, nil
	}
	return d.String(), nil
}

// Value stores the date as TEXT so sqlite keeps it verbatim.
func (d Date) Value() (driver.Value, error) {
	if !d.valid {
		return nil, nil
	}
	return d.String(), nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = NullDate()
		return nil
	case time.Time:
		*d = DateOf(v.UTC())
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(s string) error {
	if s == "" {
		*d = NullDate()
		return nil
	}
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("cannot scan %q into Date: %w", s, err)
	}
	*d = DateOf(t)
	return nil
}
