package fiscal

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestQuarterForFilingDate(t *testing.T) {
	cases := []struct {
		filingDate string
		want       string
	}{
		// ~45-day filing lag: an August filing covers the Apr-Jun quarter's successor
		{"2025-08-07", "2025-Q2"},
		{"2025-05-10", "2025-Q1"},
		{"2025-11-03", "2025-Q3"},
		// Jan-Mar filings report the final quarter of the PRIOR year
		{"2025-02-01", "2024-Q4"},
		{"2025-01-02", "2024-Q4"},
		{"2025-03-31", "2024-Q4"},
		// Boundaries
		{"2025-04-01", "2025-Q1"},
		{"2025-06-30", "2025-Q1"},
		{"2025-07-01", "2025-Q2"},
		{"2025-09-30", "2025-Q2"},
		{"2025-10-01", "2025-Q3"},
		{"2025-12-31", "2025-Q3"},
	}

	for _, c := range cases {
		got := QuarterForFilingDate(date(c.filingDate))
		if got != c.want {
			t.Errorf("QuarterForFilingDate(%s) = %s, want %s", c.filingDate, got, c.want)
		}
	}
}

func TestPrevQuarter(t *testing.T) {
	prev, err := PrevQuarter("2025-Q1")
	if err != nil {
		t.Fatalf("PrevQuarter failed: %v", err)
	}
	if prev != "2024-Q4" {
		t.Errorf("PrevQuarter(2025-Q1) = %s, want 2024-Q4", prev)
	}

	prev, _ = PrevQuarter("2025-Q3")
	if prev != "2025-Q2" {
		t.Errorf("PrevQuarter(2025-Q3) = %s, want 2025-Q2", prev)
	}

	if _, err := PrevQuarter("garbage"); err == nil {
		t.Error("expected error for invalid quarter key")
	}
}

func TestLastNQuarters(t *testing.T) {
	// August 2025 maps to 2025-Q2, so the 4-quarter window ends there.
	now := date("2025-08-23")
	got := LastNQuarters(now, 4)

	want := []string{"2024-Q3", "2024-Q4", "2025-Q1", "2025-Q2"}
	if len(got) != len(want) {
		t.Fatalf("LastNQuarters returned %d keys, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("LastNQuarters[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if keys := LastNQuarters(now, 0); keys != nil {
		t.Errorf("LastNQuarters(now, 0) = %v, want nil", keys)
	}
}

func TestCompareQuarters(t *testing.T) {
	if CompareQuarters("2024-Q4", "2025-Q1") >= 0 {
		t.Error("2024-Q4 should precede 2025-Q1")
	}
	if CompareQuarters("2025-Q3", "2025-Q1") <= 0 {
		t.Error("2025-Q3 should follow 2025-Q1")
	}
	if CompareQuarters("2025-Q2", "2025-Q2") != 0 {
		t.Error("equal keys should compare to zero")
	}
}
