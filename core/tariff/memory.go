// Package tariff - In-memory tariff store
package tariff

import (
	"context"
	"sync"

	"freight-rating/core/types"
)

// MemoryStore is an in-memory Resolver, safe for concurrent use.
// Insertion order per tariff is preserved so that "first match wins"
// reflects rate card order.
type MemoryStore struct {
	mu    sync.RWMutex
	rates map[string][]types.TariffRate
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rates: make(map[string][]types.TariffRate),
	}
}

// Add appends rates to their tariff cards
func (s *MemoryStore) Add(rates ...types.TariffRate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rates {
		s.rates[r.TariffID] = append(s.rates[r.TariffID], r)
	}
}

// Resolve implements Resolver
func (s *MemoryStore) Resolve(ctx context.Context, tariffID, itemCode string) ([]types.TariffRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []types.TariffRate
	for _, r := range s.rates[tariffID] {
		if r.ItemCode == itemCode {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

// Tariffs returns the known tariff identifiers
func (s *MemoryStore) Tariffs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.rates))
	for id := range s.rates {
		ids = append(ids, id)
	}
	return ids
}

// Rates returns all rates on one tariff card
func (s *MemoryStore) Rates(tariffID string) []types.TariffRate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.TariffRate(nil), s.rates[tariffID]...)
}
