package slotcache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"servicehub/models"
	"servicehub/services/availability"
)

// CachedAvailabilityService serves repeated generation passes from Store.
// Results carrying an error are never cached. Slots that have started since
// an entry was stored are dropped when it is served.
type CachedAvailabilityService struct {
	Next   availability.AvailabilityService
	Store  Store
	Logger *zap.Logger
	Now    func() time.Time
}

func (s *CachedAvailabilityService) Normalize(params models.GenerateParams) (models.GenerateParams, error) {
	return s.Next.Normalize(params)
}

func (s *CachedAvailabilityService) Window(params models.GenerateParams) models.DateRange {
	return s.Next.Window(params)
}

func (s *CachedAvailabilityService) GenerateWeeklySlots(ctx context.Context, params models.GenerateParams) (models.WeeklySlotsFetchResult, error) {
	logger := s.logger()

	p, err := s.Next.Normalize(params)
	if err != nil {
		return models.WeeklySlotsFetchResult{Slots: []models.Slot{}}, err
	}
	key := KeyFor(p, s.Next.Window(p))

	cached, ok, err := s.Store.Get(ctx, key)
	if err != nil {
		logger.Warn("slots.cache.get_failed", zap.String("key", key.String()), zap.Error(err))
	}
	if ok {
		logger.Debug("slots.cache.hit", zap.String("key", key.String()))
		return dropElapsed(cached, s.now()), nil
	}

	result, err := s.Next.GenerateWeeklySlots(ctx, p)
	if err != nil || result.Error != "" {
		return result, err
	}

	if err := s.Store.Set(ctx, key, result); err != nil {
		logger.Warn("slots.cache.set_failed", zap.String("key", key.String()), zap.Error(err))
	}
	return result, nil
}

// dropElapsed copies the slot list so the stored entry is never mutated.
func dropElapsed(result models.WeeklySlotsFetchResult, now time.Time) models.WeeklySlotsFetchResult {
	slots := make([]models.Slot, 0, len(result.Slots))
	for _, slot := range result.Slots {
		if !slot.StartTime.Before(now) {
			slots = append(slots, slot)
		}
	}
	result.Slots = slots
	return result
}

func (s *CachedAvailabilityService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *CachedAvailabilityService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
