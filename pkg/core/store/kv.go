// Package store provides the durable key-value layer backing the quarter
// cache and the filing tracker. Two usage classes share one interface:
// permanent entries (no TTL - quarter records, tracker pointers) and
// ephemeral entries (bounded TTL - reconstructable convenience caches).
package store

import (
	"context"
	"sync"
	"time"
)

// KV is the minimal durable store contract. A ttl of zero means the entry
// never expires. Set replaces the whole value for a key; there is no
// partial in-place mutation, so concurrent writers can only race on whose
// content wins, never corrupt a key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// MemoryKV is the in-process implementation used for tests and offline
// operation. It replaces the module-level maps the engine once relied on:
// state is explicit and injectable, never hidden cross-request globals.
type MemoryKV struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means permanent
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{entries: make(map[string]memoryEntry)}
}

// Get returns the stored value, or found=false for missing/expired keys.
func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set stores a whole-value replacement for the key.
func (m *MemoryKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	m.entries[key] = entry
	return nil
}

// Len reports the number of live entries (expired entries included until
// their next Get). Used by tests.
func (m *MemoryKV) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
