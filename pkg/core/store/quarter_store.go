package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"quartercache/pkg/core/fiscal"
	"quartercache/pkg/models"
)

// QuarterStore persists one extraction result per (symbol, quarter),
// permanently. Records are whole-value replacements: once written they are
// treated as immutable ground truth unless a force-reprocess overwrites
// them with a fresh extraction of the same filing content.
type QuarterStore struct {
	kv KV
}

// NewQuarterStore creates a quarter store over the given KV backend.
func NewQuarterStore(kv KV) *QuarterStore {
	return &QuarterStore{kv: kv}
}

func quarterKey(symbol, quarter string) string {
	return fmt.Sprintf("quarter:%s:%s", symbol, quarter)
}

// Get returns the stored record for a quarter, or nil when absent.
func (s *QuarterStore) Get(ctx context.Context, symbol, quarter string) (*models.QuarterRecord, error) {
	data, found, err := s.kv.Get(ctx, quarterKey(symbol, quarter))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var rec models.QuarterRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("corrupt quarter record %s/%s: %w", symbol, quarter, err)
	}
	return &rec, nil
}

// Put stores a record permanently (no expiration).
func (s *QuarterStore) Put(ctx context.Context, symbol, quarter string, rec *models.QuarterRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal quarter record %s/%s: %w", symbol, quarter, err)
	}
	return s.kv.Set(ctx, quarterKey(symbol, quarter), data, TTLPermanent)
}

// GetRange returns the stored records for the last n reportable quarters,
// oldest first. The window is generated from the calendar (never by
// scanning storage) and quarters without a record are omitted, so the
// result may be shorter than n.
func (s *QuarterStore) GetRange(ctx context.Context, symbol string, lastN int) ([]models.QuarterRecord, error) {
	return s.getRangeAt(ctx, symbol, lastN, time.Now())
}

// getRangeAt is GetRange with an injectable clock, used by tests.
func (s *QuarterStore) getRangeAt(ctx context.Context, symbol string, lastN int, now time.Time) ([]models.QuarterRecord, error) {
	keys := fiscal.LastNQuarters(now, lastN)

	// Fan out the point reads; slots keep the ascending quarter order.
	slots := make([]*models.QuarterRecord, len(keys))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, quarter := range keys {
		g.Go(func() error {
			rec, err := s.Get(gctx, symbol, quarter)
			if err != nil {
				return err
			}
			mu.Lock()
			slots[i] = rec
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]models.QuarterRecord, 0, len(keys))
	for _, rec := range slots {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records, nil
}
