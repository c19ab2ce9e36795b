package series

import (
	"math"
	"sort"

	"quartercache/pkg/core/fiscal"
	"quartercache/pkg/models"
)

// trendThreshold is the relative change beyond which a series is called
// positive or negative rather than neutral.
const trendThreshold = 0.05

// Build assembles a sparkline series for one metric from the stored
// quarter records, plus an optional in-flight current record whose quarter
// may not be persisted in the historical window yet.
//
// Records whose metric value fails to parse are dropped, never zeroed:
// a fabricated zero would be indistinguishable from a reported zero.
func Build(historical []models.QuarterRecord, current *models.QuarterRecord, metricName string) models.SparklineSeries {
	s := models.SparklineSeries{Metric: metricName, Trend: "neutral"}

	records := make([]models.QuarterRecord, len(historical))
	copy(records, historical)
	sort.SliceStable(records, func(i, j int) bool {
		return fiscal.CompareQuarters(records[i].Quarter, records[j].Quarter) < 0
	})

	seen := make(map[string]bool, len(records)+1)
	for _, rec := range records {
		value, ok := metricValue(rec, metricName)
		if !ok {
			continue
		}
		s.Points = append(s.Points, models.SparklinePoint{Quarter: rec.Quarter, Value: value})
		seen[rec.Quarter] = true
	}

	if current != nil && !seen[current.Quarter] {
		if value, ok := metricValue(*current, metricName); ok {
			s.Points = append(s.Points, models.SparklinePoint{Quarter: current.Quarter, Value: value})
		}
	}

	if len(s.Points) == 0 {
		return s
	}

	first := s.Points[0].Value
	latest := s.Points[len(s.Points)-1].Value
	min, max := first, first
	for _, p := range s.Points {
		if p.Value < min {
			min = p.Value
		}
		if p.Value > max {
			max = p.Value
		}
	}
	s.First = &first
	s.Latest = &latest
	s.Min = &min
	s.Max = &max

	if first != 0 {
		change := (latest - first) / math.Abs(first)
		pct := change * 100
		s.ChangePercent = &pct
		switch {
		case change > trendThreshold:
			s.Trend = "positive"
		case change < -trendThreshold:
			s.Trend = "negative"
		}
	}
	// first == 0: ChangePercent stays nil rather than dividing by zero.

	return s
}

// metricValue normalizes one record's metric through the shared grammar.
// The plain numeric encoding wins when present; the legacy display-string
// encoding is parsed otherwise.
func metricValue(rec models.QuarterRecord, metricName string) (float64, bool) {
	point, ok := rec.Metrics[metricName]
	if !ok {
		return 0, false
	}
	if point.Value != nil {
		if math.IsNaN(*point.Value) || math.IsInf(*point.Value, 0) {
			return 0, false
		}
		return *point.Value, true
	}
	if point.Display == "" {
		return 0, false
	}
	value, err := ParseMetricValue(point.Display)
	if err != nil {
		return 0, false
	}
	return value, true
}
