// Package models defines the shared data types for the quarterly filing
// cache: filing identities, cached quarter records, tracker pointers, and
// the derived sparkline view.
package models

import (
	"time"
)

// FilingRef identifies one real-world filing. It is re-derived from the
// filing source on every request and immutable once observed.
type FilingRef struct {
	Symbol          string    `json:"symbol"`
	FormType        string    `json:"form_type"`
	AccessionNumber string    `json:"accession_number"` // e.g., "0000320193-25-000057"
	FilingDate      time.Time `json:"filing_date"`
}

// MetricPoint is one extracted metric for a quarter. Value may be nil when
// the source only carried a formatted display string (legacy encoding);
// SeriesAssembler normalizes that case through its shared parser.
type MetricPoint struct {
	Value   *float64 `json:"value"`
	Unit    string   `json:"unit"`
	Display string   `json:"display"`
	Trend   string   `json:"trend,omitempty"`
}

// QuarterRecord is the permanent, per-quarter extraction result. Once
// written for a (symbol, quarter) key it is treated as immutable ground
// truth unless explicitly force-reprocessed.
type QuarterRecord struct {
	Quarter         string                 `json:"quarter"` // canonical, e.g. "2025-Q2"
	Symbol          string                 `json:"symbol"`
	ExtractedAt     time.Time              `json:"extracted_at"`
	AccessionNumber string                 `json:"accession_number"`
	Metrics         map[string]MetricPoint `json:"metrics"`
}

// FilingTrackerRecord is the single mutable pointer to the last
// successfully processed filing per (symbol, form type). Last write wins;
// it is shared by every pipeline operating on the same symbol so that
// independent consumers cannot disagree on "is this filing new".
type FilingTrackerRecord struct {
	Symbol          string    `json:"symbol"`
	FormType        string    `json:"form_type"`
	AccessionNumber string    `json:"accession_number"`
	FilingDate      time.Time `json:"filing_date"`
	Quarter         string    `json:"quarter"`
}

// SparklinePoint is one (quarter, value) pair in a derived series.
type SparklinePoint struct {
	Quarter string  `json:"quarter"`
	Value   float64 `json:"value"`
}

// SparklineSeries is the derived, never-persisted-as-authority view built
// from quarterly records. Statistics are nil when no point parsed.
type SparklineSeries struct {
	Metric        string           `json:"metric"`
	Points        []SparklinePoint `json:"points"`
	Min           *float64         `json:"min"`
	Max           *float64         `json:"max"`
	First         *float64         `json:"first"`
	Latest        *float64         `json:"latest"`
	Trend         string           `json:"trend"` // "positive", "negative", "neutral"
	ChangePercent *float64         `json:"change_percent"`
}
