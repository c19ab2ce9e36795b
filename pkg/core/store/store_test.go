package store

import (
	"context"
	"testing"
	"time"

	"quartercache/pkg/models"
)

func TestMemoryKVPermanentAndTTL(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	if err := kv.Set(ctx, "permanent", []byte("keep"), TTLPermanent); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := kv.Set(ctx, "ephemeral", []byte("gone"), 10*time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	time.Sleep(25 * time.Millisecond)

	if _, found, _ := kv.Get(ctx, "permanent"); !found {
		t.Error("permanent entry expired")
	}
	if _, found, _ := kv.Get(ctx, "ephemeral"); found {
		t.Error("ephemeral entry survived its TTL")
	}
	if _, found, _ := kv.Get(ctx, "missing"); found {
		t.Error("missing key reported as found")
	}
}

func TestMemoryKVWholeValueReplacement(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	kv.Set(ctx, "k", []byte("first"), TTLPermanent)
	kv.Set(ctx, "k", []byte("second"), TTLPermanent)

	data, found, _ := kv.Get(ctx, "k")
	if !found || string(data) != "second" {
		t.Errorf("got %q, want last write to win", data)
	}
}

func testRecord(symbol, quarter string, revenue float64) *models.QuarterRecord {
	return &models.QuarterRecord{
		Quarter:         quarter,
		Symbol:          symbol,
		ExtractedAt:     time.Now().UTC(),
		AccessionNumber: "0001",
		Metrics: map[string]models.MetricPoint{
			"revenue": {Value: &revenue, Unit: "millions"},
		},
	}
}

func TestQuarterStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	qs := NewQuarterStore(NewMemoryKV())

	if rec, err := qs.Get(ctx, "ACME", "2025-Q1"); err != nil || rec != nil {
		t.Fatalf("expected absent record, got %v, %v", rec, err)
	}

	if err := qs.Put(ctx, "ACME", "2025-Q1", testRecord("ACME", "2025-Q1", 1500)); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	rec, err := qs.Get(ctx, "ACME", "2025-Q1")
	if err != nil || rec == nil {
		t.Fatalf("get failed: %v", err)
	}
	if rec.Quarter != "2025-Q1" || *rec.Metrics["revenue"].Value != 1500 {
		t.Errorf("round trip corrupted record: %+v", rec)
	}
}

func TestQuarterStoreRangeIsGapTolerant(t *testing.T) {
	ctx := context.Background()
	qs := NewQuarterStore(NewMemoryKV())

	// Window as of Aug 2025: 2024-Q3 .. 2025-Q2. Leave 2025-Q1 missing.
	qs.Put(ctx, "ACME", "2024-Q4", testRecord("ACME", "2024-Q4", 100))
	qs.Put(ctx, "ACME", "2025-Q2", testRecord("ACME", "2025-Q2", 120))
	// A different symbol must not leak into the range.
	qs.Put(ctx, "OTHER", "2025-Q2", testRecord("OTHER", "2025-Q2", 999))

	now, _ := time.Parse("2006-01-02", "2025-08-23")
	records, err := qs.getRangeAt(ctx, "ACME", 4, now)
	if err != nil {
		t.Fatalf("range failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records (gaps omitted), got %d", len(records))
	}
	if records[0].Quarter != "2024-Q4" || records[1].Quarter != "2025-Q2" {
		t.Errorf("range out of order: %s, %s", records[0].Quarter, records[1].Quarter)
	}
	for _, rec := range records {
		if rec.Symbol != "ACME" {
			t.Errorf("foreign symbol leaked into range: %s", rec.Symbol)
		}
	}
}

func TestFilingTrackerLastWriteWins(t *testing.T) {
	ctx := context.Background()
	tracker := NewFilingTracker(NewMemoryKV())

	if rec, err := tracker.Get(ctx, "ACME", "10-Q"); err != nil || rec != nil {
		t.Fatalf("expected absent tracker, got %v, %v", rec, err)
	}

	first := &models.FilingTrackerRecord{Symbol: "ACME", FormType: "10-Q", AccessionNumber: "0001", Quarter: "2025-Q1"}
	second := &models.FilingTrackerRecord{Symbol: "ACME", FormType: "10-Q", AccessionNumber: "0002", Quarter: "2025-Q2"}

	tracker.Set(ctx, "ACME", "10-Q", first)
	tracker.Set(ctx, "ACME", "10-Q", second)

	rec, err := tracker.Get(ctx, "ACME", "10-Q")
	if err != nil || rec == nil {
		t.Fatalf("get failed: %v", err)
	}
	if rec.AccessionNumber != "0002" {
		t.Errorf("accession = %s, want last write 0002", rec.AccessionNumber)
	}
}
