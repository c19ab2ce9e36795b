package store

import (
	"context"
	"encoding/json"
	"fmt"

	"quartercache/pkg/models"
)

// FilingTracker persists the durable pointer to the last successfully
// processed filing per (symbol, form type). It acts as the shared
// idempotency token: every pipeline that extracts for the same symbol
// consults and overwrites the same record, last write wins.
type FilingTracker struct {
	kv KV
}

// NewFilingTracker creates a tracker over the given KV backend.
func NewFilingTracker(kv KV) *FilingTracker {
	return &FilingTracker{kv: kv}
}

func trackerKey(symbol, formType string) string {
	return fmt.Sprintf("tracker:%s:%s", symbol, formType)
}

// Get returns the tracker record, or nil when no filing has been
// processed yet for this (symbol, form type).
func (t *FilingTracker) Get(ctx context.Context, symbol, formType string) (*models.FilingTrackerRecord, error) {
	data, found, err := t.kv.Get(ctx, trackerKey(symbol, formType))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var rec models.FilingTrackerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("corrupt tracker record %s/%s: %w", symbol, formType, err)
	}
	return &rec, nil
}

// Set overwrites the pointer permanently (no expiration).
func (t *FilingTracker) Set(ctx context.Context, symbol, formType string, rec *models.FilingTrackerRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal tracker record %s/%s: %w", symbol, formType, err)
	}
	return t.kv.Set(ctx, trackerKey(symbol, formType), data, TTLPermanent)
}
