// Package series builds normalized numeric time series from heterogeneous
// cached quarter records. Two historical value encodings exist (plain
// numeric-with-display, and legacy display-string-only); this package is
// the single boundary where both are normalized, so parsing rules cannot
// silently diverge between call sites.
package series

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseMetricValue parses a formatted display value into the series' base
// unit (millions for currency amounts, percentage points for percentages).
//
// Grammar:
//   - currency symbols, commas, and whitespace are stripped
//   - a value wrapped in parentheses is negative
//   - trailing "M" is already in the base unit
//   - trailing "B" multiplies by 1000 to normalize into the base unit
//   - trailing "%" is a percentage-point value, parsed as-is
func ParseMetricValue(display string) (float64, error) {
	s := strings.TrimSpace(display)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, symbol := range []string{"$", "€", "£", ",", " ", " "} {
		s = strings.ReplaceAll(s, symbol, "")
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "%"):
		s = strings.TrimSuffix(s, "%")
	case strings.HasSuffix(strings.ToUpper(s), "B"):
		multiplier = 1000
		s = s[:len(s)-1]
	case strings.HasSuffix(strings.ToUpper(s), "M"):
		s = s[:len(s)-1]
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable value %q", display)
	}
	value *= multiplier
	if negative {
		value = -value
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("non-finite value %q", display)
	}
	return value, nil
}
