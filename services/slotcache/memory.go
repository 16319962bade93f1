package slotcache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"servicehub/models"
)

// MemoryStore is a per-process LRU with a TTL. With more than one instance
// running, invalidations must reach every instance (see the AMQP listener).
type MemoryStore struct {
	lru *expirable.LRU[string, models.WeeklySlotsFetchResult]
}

func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		lru: expirable.NewLRU[string, models.WeeklySlotsFetchResult](size, nil, ttl),
	}
}

func (s *MemoryStore) Get(_ context.Context, key Key) (models.WeeklySlotsFetchResult, bool, error) {
	result, ok := s.lru.Get(key.String())
	return result, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key Key, result models.WeeklySlotsFetchResult) error {
	s.lru.Add(key.String(), result)
	return nil
}

func (s *MemoryStore) InvalidateProvider(_ context.Context, providerID string, rng models.DateRange) (int, error) {
	dropped := 0
	for _, raw := range s.lru.Keys() {
		key, err := ParseKey(raw)
		if err != nil {
			continue
		}
		if key.ProviderID == providerID && key.Range().Overlaps(rng) {
			if s.lru.Remove(raw) {
				dropped++
			}
		}
	}
	return dropped, nil
}

func (s *MemoryStore) Len() int {
	return s.lru.Len()
}
