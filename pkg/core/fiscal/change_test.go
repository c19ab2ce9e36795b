package fiscal

import (
	"testing"

	"quartercache/pkg/models"
)

func TestDecide(t *testing.T) {
	latest := models.FilingRef{
		Symbol:          "ACME",
		FormType:        "10-Q",
		AccessionNumber: "0001",
		FilingDate:      date("2025-05-10"),
	}

	// No tracker record yet: new.
	d := Decide(nil, latest, false)
	if !d.IsNew {
		t.Error("expected IsNew=true with absent tracker")
	}
	if d.Quarter != "2025-Q1" {
		t.Errorf("quarter = %s, want 2025-Q1", d.Quarter)
	}

	tracked := &models.FilingTrackerRecord{
		Symbol:          "ACME",
		FormType:        "10-Q",
		AccessionNumber: "0001",
		FilingDate:      latest.FilingDate,
		Quarter:         "2025-Q1",
	}

	// Same accession: unchanged.
	d = Decide(tracked, latest, false)
	if d.IsNew {
		t.Error("expected IsNew=false for matching accession")
	}

	// forceReprocess overrides the match.
	d = Decide(tracked, latest, true)
	if !d.IsNew {
		t.Error("expected IsNew=true with forceReprocess")
	}

	// Accession mismatch: new.
	latest.AccessionNumber = "0002"
	latest.FilingDate = date("2025-08-07")
	d = Decide(tracked, latest, false)
	if !d.IsNew {
		t.Error("expected IsNew=true for accession mismatch")
	}
	if d.Quarter != "2025-Q2" {
		t.Errorf("quarter = %s, want 2025-Q2", d.Quarter)
	}
}
