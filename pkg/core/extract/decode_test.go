package extract

import (
	"testing"
)

func TestDecodeStandardJSON(t *testing.T) {
	raw := `{"metrics": {"revenue": {"value": 24927, "unit": "millions", "display": "$24,927M"}}}`

	result, err := DecodeRawExtraction(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	m, ok := result.Metrics["revenue"]
	if !ok || m.Value == nil || *m.Value != 24927 {
		t.Errorf("revenue metric wrong: %+v", m)
	}
}

func TestDecodeStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"metrics\": {\"revenue\": {\"value\": 100, \"unit\": \"millions\", \"display\": \"$100M\"}}}\n```"

	result, err := DecodeRawExtraction(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if result.Metrics["revenue"].Display != "$100M" {
		t.Errorf("fenced JSON not decoded: %+v", result.Metrics)
	}
}

func TestDecodeRepairsMalformedJSON(t *testing.T) {
	// Trailing comma and unquoted key, typical model slop.
	raw := `{"metrics": {revenue: {"value": 100, "unit": "millions", "display": "$100M"},}}`

	result, err := DecodeRawExtraction(raw)
	if err != nil {
		t.Fatalf("repair ladder failed: %v", err)
	}
	if m := result.Metrics["revenue"]; m.Value == nil || *m.Value != 100 {
		t.Errorf("repaired metric wrong: %+v", m)
	}
}

func TestDecodeHjsonFallback(t *testing.T) {
	raw := `{
  # model added a comment
  metrics: {
    revenue: { value: 100, unit: millions, display: "$100M" }
  }
}`

	result, err := DecodeRawExtraction(raw)
	if err != nil {
		t.Fatalf("hjson fallback failed: %v", err)
	}
	if m := result.Metrics["revenue"]; m.Value == nil || *m.Value != 100 {
		t.Errorf("hjson metric wrong: %+v", m)
	}
}

func TestDecodeRejectsUnusableOutput(t *testing.T) {
	for _, raw := range []string{"", "I could not find any metrics.", "null"} {
		if _, err := DecodeRawExtraction(raw); err == nil {
			t.Errorf("DecodeRawExtraction(%q) should fail", raw)
		}
	}
}

func TestPopulatedCount(t *testing.T) {
	v := 100.0
	r := &RawExtraction{Metrics: map[string]RawMetric{
		"revenue":    {Value: &v},
		"net_income": {Display: "$10M"}, // display-only still counts
		"eps":        {},                // neither: not populated
	}}

	required := []string{"revenue", "net_income", "eps", "margin"}
	if got := r.PopulatedCount(required); got != 2 {
		t.Errorf("PopulatedCount = %d, want 2", got)
	}

	var nilResult *RawExtraction
	if nilResult.PopulatedCount(required) != 0 {
		t.Error("nil extraction should count zero")
	}
}
