// Package extract defines the extraction collaborator contract and the
// Gemini-backed implementation that converts filing text into structured
// quarterly metrics. Collaborator output is untrusted: it may be partial,
// malformed, or empty, and the engine validates it before storing.
package extract

import (
	"context"
)

// RawMetric is one metric as reported by the collaborator. Value may be
// nil when the model only produced a formatted display string.
type RawMetric struct {
	Value   *float64 `json:"value"`
	Unit    string   `json:"unit"`
	Display string   `json:"display"`
	Trend   string   `json:"trend,omitempty"`
}

// RawExtraction is the collaborator's full result for one filing.
type RawExtraction struct {
	Metrics map[string]RawMetric `json:"metrics"`
}

// Extractor converts filing full text into structured facts. Implementations
// must not fabricate values: a metric the text does not support is simply
// absent from the result.
type Extractor interface {
	Extract(ctx context.Context, fullText, symbol string) (*RawExtraction, error)
}

// PopulatedCount reports how many of the required metric names carry a
// usable value (numeric or display string). The engine's quality gate is
// built on this count.
func (r *RawExtraction) PopulatedCount(required []string) int {
	if r == nil {
		return 0
	}
	count := 0
	for _, name := range required {
		m, ok := r.Metrics[name]
		if !ok {
			continue
		}
		if m.Value != nil || m.Display != "" {
			count++
		}
	}
	return count
}
