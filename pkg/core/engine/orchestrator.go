package engine

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"quartercache/pkg/core/extract"
	"quartercache/pkg/core/filings"
	"quartercache/pkg/core/fiscal"
	"quartercache/pkg/core/store"
	"quartercache/pkg/models"
)

// FilingSource retrieves filing identity and, unless metadataOnly is set,
// the document full text. metadataOnly must stay cheap: the change
// detector's pre-check runs it on every request.
type FilingSource interface {
	GetLatestFiling(ctx context.Context, symbol, formType string, metadataOnly bool) (*models.FilingRef, string, error)
}

// Result is the uniform response shape every consumer view built on this
// engine carries upward.
type Result struct {
	Record       *models.QuarterRecord `json:"record"`
	FromCache    bool                  `json:"from_cache"`
	CacheType    string                `json:"cache_type,omitempty"` // "quarter" or "stale"
	FilingStatus string                `json:"filing_status"`        // "new" or "unchanged"
	Error        string                `json:"error,omitempty"`      // set when a stale record masks a failure
	RunID        string                `json:"run_id,omitempty"`     // correlates a response with its engine log lines
}

// Options control one engine invocation.
type Options struct {
	// ForceReprocess re-extracts even when the accession number is
	// unchanged, overwriting the quarter record.
	ForceReprocess bool
}

// Orchestrator drives one extraction flow per invocation:
//
//	CHECK_CACHE -> (cache hit AND not new) -> RETURN_CACHED
//	else FETCH_FULL_CONTENT -> EXTRACT -> VALIDATE -> STORE_AND_RETURN
//	(invalid or any step fails)          -> FAIL
//
// No distributed lock: two requests racing on the same new filing may both
// extract and both write. Last write to a quarter key wins, which is
// accepted because repeated extraction from identical source content
// converges to the same facts.
type Orchestrator struct {
	source          FilingSource
	extractor       extract.Extractor
	quarters        *store.QuarterStore
	tracker         *store.FilingTracker
	formType        string
	requiredMetrics []string
}

// NewOrchestrator wires the engine's collaborators. formType is the
// quarterly form the engine tracks (annual forms are out of scope: their
// Q4 periods have no defined quarter mapping).
func NewOrchestrator(source FilingSource, extractor extract.Extractor, quarters *store.QuarterStore, tracker *store.FilingTracker, formType string, requiredMetrics []string) *Orchestrator {
	return &Orchestrator{
		source:          source,
		extractor:       extractor,
		quarters:        quarters,
		tracker:         tracker,
		formType:        formType,
		requiredMetrics: requiredMetrics,
	}
}

// Process runs the state machine for one symbol.
func (o *Orchestrator) Process(ctx context.Context, symbol string, opts Options) (*Result, error) {
	runID := uuid.New().String()[:8]

	// Identity pre-check is metadata-only; unchanged filings never pay for
	// a document download.
	ref, _, err := o.source.GetLatestFiling(ctx, symbol, o.formType, true)
	if err != nil {
		if errors.Is(err, filings.ErrNoFilings) {
			return nil, &NoFilingError{Symbol: symbol, Err: err}
		}
		return nil, &FetchError{Err: err}
	}

	tracked, err := o.tracker.Get(ctx, symbol, o.formType)
	if err != nil {
		// An unreadable tracker only costs a redundant extraction, which
		// is content-idempotent. Treat as absent.
		log.Printf("[Engine %s] tracker read failed for %s, treating as new: %v", runID, symbol, err)
		tracked = nil
	}

	decision := fiscal.Decide(tracked, *ref, opts.ForceReprocess)

	if !decision.IsNew {
		cached, err := o.quarters.Get(ctx, symbol, decision.Quarter)
		if err == nil && cached != nil {
			return &Result{
				Record:       cached,
				FromCache:    true,
				CacheType:    "quarter",
				FilingStatus: "unchanged",
				RunID:        runID,
			}, nil
		}
		// Tracker says unchanged but the quarter record is missing or
		// unreadable: the two stores drifted (e.g. an earlier tracker
		// write landed without its record). Re-extract.
		log.Printf("[Engine %s] cache miss for %s %s despite unchanged accession, re-extracting", runID, symbol, decision.Quarter)
	}

	log.Printf("[Engine %s] extracting %s %s (accession %s)", runID, symbol, decision.Quarter, ref.AccessionNumber)

	_, fullText, err := o.source.GetLatestFiling(ctx, symbol, o.formType, false)
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	raw, err := o.extractor.Extract(ctx, fullText, symbol)
	if err != nil {
		return nil, &ExtractionError{Err: err}
	}

	// Quality gate: reject results where fewer than half of the required
	// metrics are populated. The collaborator ran, but its output is
	// unusable; storing it would poison the permanent cache.
	populated := raw.PopulatedCount(o.requiredMetrics)
	if populated*2 < len(o.requiredMetrics) {
		return nil, &ExtractionQualityError{Populated: populated, Required: len(o.requiredMetrics)}
	}

	record := buildQuarterRecord(symbol, decision.Quarter, ref.AccessionNumber, raw)

	// The two durable writes are independent. A failed quarter write still
	// returns the fresh record for this request; a failed tracker write
	// leaves the stores inconsistent until the next successful run, which
	// simply re-detects "new" and re-extracts.
	if err := o.quarters.Put(ctx, symbol, decision.Quarter, record); err != nil {
		storeErr := &StoreError{Key: symbol + "/" + decision.Quarter, Err: err}
		log.Printf("[Engine %s] %v (returning fresh record anyway)", runID, storeErr)
	}
	if err := o.tracker.Set(ctx, symbol, o.formType, &models.FilingTrackerRecord{
		Symbol:          symbol,
		FormType:        o.formType,
		AccessionNumber: ref.AccessionNumber,
		FilingDate:      ref.FilingDate,
		Quarter:         decision.Quarter,
	}); err != nil {
		storeErr := &StoreError{Key: symbol + "/" + o.formType, Err: err}
		log.Printf("[Engine %s] %v (tracker will re-detect new next request)", runID, storeErr)
	}

	status := "new"
	if !decision.IsNew {
		status = "unchanged"
	}
	return &Result{Record: record, FilingStatus: status, RunID: runID}, nil
}

// buildQuarterRecord converts an accepted raw extraction into the
// permanent per-quarter record.
func buildQuarterRecord(symbol, quarter, accession string, raw *extract.RawExtraction) *models.QuarterRecord {
	metrics := make(map[string]models.MetricPoint, len(raw.Metrics))
	for name, m := range raw.Metrics {
		metrics[name] = models.MetricPoint{
			Value:   m.Value,
			Unit:    m.Unit,
			Display: m.Display,
			Trend:   m.Trend,
		}
	}
	return &models.QuarterRecord{
		Quarter:         quarter,
		Symbol:          symbol,
		ExtractedAt:     time.Now().UTC(),
		AccessionNumber: accession,
		Metrics:         metrics,
	}
}
