// Package fiscal maps filing dates to canonical quarter keys and provides
// the pure change-detection decision used by the extraction engine.
package fiscal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Quarterly filings reach the wire roughly 45 days after the fiscal
// quarter closes, so the filing month determines which quarter the
// document covers:
//
//	Apr-Jun  -> Q1 of the filing year
//	Jul-Sep  -> Q2
//	Oct-Dec  -> Q3
//	Jan-Mar  -> Q4 of the PRIOR year
//
// Annual filings (which would cover Q4 directly) are not mapped here;
// the engine only processes quarterly form types.

// QuarterForFilingDate computes the canonical quarter key (e.g. "2025-Q2")
// for a quarterly filing made on the given date.
func QuarterForFilingDate(date time.Time) string {
	year := date.Year()
	month := int(date.Month())

	switch {
	case month >= 4 && month <= 6:
		return fmt.Sprintf("%d-Q1", year)
	case month >= 7 && month <= 9:
		return fmt.Sprintf("%d-Q2", year)
	case month >= 10:
		return fmt.Sprintf("%d-Q3", year)
	default: // Jan-Mar reports the final quarter of the prior year
		return fmt.Sprintf("%d-Q4", year-1)
	}
}

// ParseQuarter splits a canonical key into year and quarter number.
func ParseQuarter(key string) (year int, q int, err error) {
	parts := strings.SplitN(key, "-Q", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid quarter key %q", key)
	}
	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid quarter key %q", key)
	}
	q, err = strconv.Atoi(parts[1])
	if err != nil || q < 1 || q > 4 {
		return 0, 0, fmt.Errorf("invalid quarter key %q", key)
	}
	return year, q, nil
}

// PrevQuarter returns the key of the quarter immediately before the given one.
func PrevQuarter(key string) (string, error) {
	year, q, err := ParseQuarter(key)
	if err != nil {
		return "", err
	}
	q--
	if q == 0 {
		q = 4
		year--
	}
	return fmt.Sprintf("%d-Q%d", year, q), nil
}

// LastNQuarters generates the keys of the n most recent reportable
// quarters as of the given date, oldest first. Keys are derived from the
// calendar, never by scanning storage, so two callers always agree on the
// window.
func LastNQuarters(now time.Time, n int) []string {
	if n <= 0 {
		return nil
	}
	keys := make([]string, n)
	key := QuarterForFilingDate(now)
	for i := n - 1; i >= 0; i-- {
		keys[i] = key
		key, _ = PrevQuarter(key)
	}
	return keys
}

// CompareQuarters orders two canonical keys chronologically. Returns a
// negative number when a precedes b, zero when equal.
func CompareQuarters(a, b string) int {
	ay, aq, errA := ParseQuarter(a)
	by, bq, errB := ParseQuarter(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	if ay != by {
		return ay - by
	}
	return aq - bq
}
