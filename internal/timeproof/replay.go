package timeproof

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// RedeemStore enforces single-use semantics on a (kind, value) pair. Use
// marks the pair consumed for the TTL and reports whether this caller was the
// first to do so; concurrent redeemers must see exactly one true.
type RedeemStore interface {
	Use(ctx context.Context, kind, value string, ttl time.Duration) (bool, error)
}

// InMemoryRedeemStore is a process-local RedeemStore. Safe for concurrent use;
// expired entries are purged opportunistically on writes.
type InMemoryRedeemStore struct {
	mu       sync.Mutex
	entries  map[string]time.Time
	useCount uint64
	purgeN   uint64
	now      func() time.Time
}

// NewInMemoryRedeemStore creates an in-memory store purging expired entries
// every purgeEvery calls (default 1024 when <= 0).
func NewInMemoryRedeemStore(purgeEvery int) *InMemoryRedeemStore {
	if purgeEvery <= 0 {
		purgeEvery = 1024
	}
	return &InMemoryRedeemStore{
		entries: make(map[string]time.Time, 1024),
		purgeN:  uint64(purgeEvery),
		now:     time.Now,
	}
}

func (m *InMemoryRedeemStore) Use(ctx context.Context, kind, value string, ttl time.Duration) (bool, error) {
	kind = strings.TrimSpace(strings.ToLower(kind))
	value = strings.TrimSpace(value)
	if kind == "" || value == "" {
		return false, fmt.Errorf("redeem: kind and value are required")
	}
	now := m.now()
	k := kind + "|" + value

	m.mu.Lock()
	defer m.mu.Unlock()

	m.useCount++
	if m.useCount%m.purgeN == 0 {
		m.purgeLocked(now)
	}

	if until, ok := m.entries[k]; ok && until.After(now) {
		return false, nil
	}
	m.entries[k] = now.Add(ttl)
	return true, nil
}

func (m *InMemoryRedeemStore) purgeLocked(now time.Time) {
	for k, until := range m.entries {
		if !until.After(now) {
			delete(m.entries, k)
		}
	}
}
