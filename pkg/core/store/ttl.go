package store

import "time"

// TTLs for the ephemeral usage class. Permanent records (quarter records,
// tracker pointers) are always written with TTLPermanent: they are the
// ground truth everything else is rebuilt from.
const (
	TTLPermanent time.Duration = 0

	// Assembled sparkline payloads are always reconstructable from the
	// permanent quarter records, so a short TTL only bounds staleness of
	// the convenience layer.
	TTLSparkline = 15 * time.Minute

	// The filing source's submissions index changes at most a few times a
	// quarter; an hour keeps the metadata pre-check cheap without hiding
	// new filings for long.
	TTLFilingIndex = time.Hour
)
