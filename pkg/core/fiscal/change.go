package fiscal

import (
	"quartercache/pkg/models"
)

// Decision is the outcome of change detection for one observed filing.
type Decision struct {
	IsNew   bool   `json:"is_new"`
	Quarter string `json:"quarter"`
}

// Decide determines whether the latest filing requires re-extraction.
//
// IsNew is true iff forceReprocess is set, the tracker has no record yet,
// or the tracked accession number differs from the latest filing's. The
// function is pure: it never touches storage, so every pipeline sharing
// the same tracker state reaches the same answer.
func Decide(tracker *models.FilingTrackerRecord, latest models.FilingRef, forceReprocess bool) Decision {
	quarter := QuarterForFilingDate(latest.FilingDate)

	isNew := forceReprocess ||
		tracker == nil ||
		tracker.AccessionNumber != latest.AccessionNumber

	return Decision{IsNew: isNew, Quarter: quarter}
}
