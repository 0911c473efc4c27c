package utils

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	errEmpty    = errors.New("empty value")
	errNegative = errors.New("negative value")
	errFraction = errors.New("not a whole number")
	errOverflow = errors.New("value out of range")
)

// ParseDuration safely parses duration string like "5m", falling back to def.
func ParseDuration(d string, def time.Duration) time.Duration {
	if d == "" {
		return def
	}
	duration, err := time.ParseDuration(d)
	if err != nil {
		return def
	}
	return duration
}

// ParseCount parses a non-negative whole number, accepting grouped thousands
// ("1,234") and integral floats ("12.0"). Values beyond int64 are an error.
func ParseCount(s string) (int64, error) {
	// Trim whitespace and drop grouping separators first
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "_", "")
	if s == "" {
		return 0, errEmpty
	}

	// try int
	i, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		if i < 0 {
			return 0, errNegative
		}
		return i, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(s, "-") {
			return 0, errNegative
		}
		return 0, errOverflow
	}
	// try float
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, errFraction
	}
	if f < 0 {
		return 0, errNegative
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold
	if f >= math.MaxInt64 {
		return 0, errOverflow
	}
	return int64(f), nil
}

// CleanHeader trims a header cell and strips quotes and a UTF-8 BOM.
func CleanHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.TrimSpace(h)
	return strings.ReplaceAll(h, `"`, "")
}
