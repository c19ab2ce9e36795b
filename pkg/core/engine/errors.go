// Package engine drives the check -> fetch -> extract -> validate -> store
// flow for quarterly filings and the stale fallback that wraps it.
package engine

import (
	"errors"
	"fmt"
)

// FetchError: the filing source was unreachable or returned no usable
// metadata. Subject to stale fallback.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("filing fetch failed: %v", e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionError: the collaborator call itself failed. Subject to stale
// fallback.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string { return fmt.Sprintf("extraction failed: %v", e.Err) }
func (e *ExtractionError) Unwrap() error { return e.Err }

// ExtractionQualityError: the collaborator ran but produced structurally
// insufficient data. Distinct from ExtractionError so callers can tell
// "service broken" from "service returned an unusable result". Subject to
// stale fallback.
type ExtractionQualityError struct {
	Populated int
	Required  int
}

func (e *ExtractionQualityError) Error() string {
	return fmt.Sprintf("extraction quality too low: %d of %d required metrics populated", e.Populated, e.Required)
}

// StoreError: a durable write failed. Non-fatal: the freshly computed
// record is still returned for the current request and change detection
// re-detects "new" on the next one.
type StoreError struct {
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("durable write failed for %s: %v", e.Key, e.Err)
}
func (e *StoreError) Unwrap() error { return e.Err }

// NoFilingError: no filing identity could be established and no stored
// quarter exists to fall back on. Always terminal; the engine never
// substitutes fabricated numbers for missing financial facts.
type NoFilingError struct {
	Symbol string
	Err    error
}

func (e *NoFilingError) Error() string {
	return fmt.Sprintf("no filing data available for %s: %v", e.Symbol, e.Err)
}
func (e *NoFilingError) Unwrap() error { return e.Err }

// fallbackEligible reports whether an engine failure may be answered with
// a stale-but-valid prior quarter.
func fallbackEligible(err error) bool {
	var fetchErr *FetchError
	var extractErr *ExtractionError
	var qualityErr *ExtractionQualityError
	return errors.As(err, &fetchErr) || errors.As(err, &extractErr) || errors.As(err, &qualityErr)
}
