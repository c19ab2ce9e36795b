package engine

import (
	"context"
	"log"

	"quartercache/pkg/core/store"
	"quartercache/pkg/models"
)

// staleLookback bounds how far back the fallback scans when the tracker
// itself is unavailable. Eight quarters matches the widest series view.
const staleLookback = 8

// StaleFallback wraps the orchestrator so that a fetch, extraction, or
// quality failure degrades to the last known-good quarter record instead
// of an error. Absence of any stored record stays a terminal, visible
// failure: the engine never masks missing financial facts with
// placeholder numbers.
type StaleFallback struct {
	engine   *Orchestrator
	quarters *store.QuarterStore
	tracker  *store.FilingTracker
	formType string
}

// NewStaleFallback wraps an orchestrator with stale-on-failure semantics.
func NewStaleFallback(engine *Orchestrator, quarters *store.QuarterStore, tracker *store.FilingTracker, formType string) *StaleFallback {
	return &StaleFallback{
		engine:   engine,
		quarters: quarters,
		tracker:  tracker,
		formType: formType,
	}
}

// Process runs the orchestrator and, when a fallback-eligible failure
// occurs, substitutes the quarter the tracker currently points to,
// annotated as stale. Terminal failures (NoFilingError, or no stored
// record at all) propagate.
func (f *StaleFallback) Process(ctx context.Context, symbol string, opts Options) (*Result, error) {
	result, err := f.engine.Process(ctx, symbol, opts)
	if err == nil {
		return result, nil
	}
	if !fallbackEligible(err) {
		return nil, err
	}

	log.Printf("[Fallback] %s: %v, looking for stale record", symbol, err)

	if rec := f.lastKnownGood(ctx, symbol); rec != nil {
		return &Result{
			Record:       rec,
			FromCache:    true,
			CacheType:    "stale",
			FilingStatus: "unchanged",
			Error:        err.Error(),
		}, nil
	}

	return nil, &NoFilingError{Symbol: symbol, Err: err}
}

// lastKnownGood finds the most recent stored quarter record: first the
// quarter the tracker points to, then a bounded scan of the recent
// calendar window for symbols whose tracker was never written.
func (f *StaleFallback) lastKnownGood(ctx context.Context, symbol string) *models.QuarterRecord {
	if tracked, err := f.tracker.Get(ctx, symbol, f.formType); err == nil && tracked != nil {
		if rec, err := f.quarters.Get(ctx, symbol, tracked.Quarter); err == nil && rec != nil {
			return rec
		}
	}

	records, err := f.quarters.GetRange(ctx, symbol, staleLookback)
	if err != nil || len(records) == 0 {
		return nil
	}
	return &records[len(records)-1]
}
