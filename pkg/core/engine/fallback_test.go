package engine

import (
	"context"
	"errors"
	"testing"

	"quartercache/pkg/core/extract"
	"quartercache/pkg/core/store"
)

func newFallbackFixture(source *stubSource, extractor *stubExtractor) (*fixture, *StaleFallback) {
	f := newFixture(store.NewMemoryKV(), source, extractor)
	return f, NewStaleFallback(f.engine, f.quarters, f.tracker, "10-Q")
}

func TestStaleFallbackServesLastKnownGood(t *testing.T) {
	ctx := context.Background()
	source := &stubSource{ref: testFiling("0001", "2025-05-10"), fullText: "text"}
	extractor := &stubExtractor{result: fullExtraction()}
	_, fallback := newFallbackFixture(source, extractor)

	// Seed one good quarter.
	first, err := fallback.Process(ctx, "ACME", Options{})
	if err != nil {
		t.Fatalf("seed extraction failed: %v", err)
	}

	// New filing appears but the collaborator is down.
	source.ref = testFiling("0002", "2025-08-07")
	extractor.err = errors.New("model unavailable")

	result, err := fallback.Process(ctx, "ACME", Options{})
	if err != nil {
		t.Fatalf("fallback should mask the failure: %v", err)
	}

	if !result.FromCache || result.CacheType != "stale" {
		t.Errorf("expected stale cache response, got fromCache=%v cacheType=%s", result.FromCache, result.CacheType)
	}
	if result.Error == "" {
		t.Error("stale response must carry the underlying error")
	}
	// The values are the previously stored ones, not fabricated.
	if result.Record.Quarter != first.Record.Quarter {
		t.Errorf("stale quarter = %s, want %s", result.Record.Quarter, first.Record.Quarter)
	}
	if *result.Record.Metrics["revenue"].Value != *first.Record.Metrics["revenue"].Value {
		t.Error("stale record values differ from stored ground truth")
	}
}

func TestStaleFallbackOnQualityFailure(t *testing.T) {
	ctx := context.Background()
	source := &stubSource{ref: testFiling("0001", "2025-05-10"), fullText: "text"}
	extractor := &stubExtractor{result: fullExtraction()}
	_, fallback := newFallbackFixture(source, extractor)

	if _, err := fallback.Process(ctx, "ACME", Options{}); err != nil {
		t.Fatalf("seed extraction failed: %v", err)
	}

	// Next filing extracts to garbage (quality failure, not a crash).
	source.ref = testFiling("0002", "2025-08-07")
	extractor.result = sparseExtraction()

	result, err := fallback.Process(ctx, "ACME", Options{})
	if err != nil {
		t.Fatalf("quality failure should fall back: %v", err)
	}
	if result.CacheType != "stale" {
		t.Errorf("cacheType = %s, want stale", result.CacheType)
	}
}

func TestNoStoredDataIsTerminal(t *testing.T) {
	ctx := context.Background()
	source := &stubSource{ref: testFiling("0001", "2025-05-10"), fullText: "text"}
	extractor := &stubExtractor{err: errors.New("model unavailable")}
	_, fallback := newFallbackFixture(source, extractor)

	result, err := fallback.Process(ctx, "ACME", Options{})

	if err == nil {
		t.Fatalf("zero stored quarters plus failing extraction must be terminal, got %+v", result)
	}
	var noFiling *NoFilingError
	if !errors.As(err, &noFiling) {
		t.Errorf("expected NoFilingError, got %v", err)
	}
}

func TestTerminalErrorsPropagateUnwrapped(t *testing.T) {
	ctx := context.Background()
	source := &stubSource{err: errors.New("connection refused")}
	extractor := &stubExtractor{result: fullExtraction()}
	_, fallback := newFallbackFixture(source, extractor)

	// Fetch failure with no stored record anywhere: terminal.
	_, err := fallback.Process(ctx, "ACME", Options{})
	var noFiling *NoFilingError
	if !errors.As(err, &noFiling) {
		t.Fatalf("expected NoFilingError, got %v", err)
	}
}

func sparseExtraction() *extract.RawExtraction {
	rev := 1500.0
	return &extract.RawExtraction{Metrics: map[string]extract.RawMetric{
		"revenue": {Value: &rev, Unit: "millions"},
	}}
}
