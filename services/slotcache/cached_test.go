package slotcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"servicehub/models"
	"servicehub/services/availability"
)

type countingService struct {
	gen    *availability.Generator
	result models.WeeklySlotsFetchResult
	calls  int
}

func (c *countingService) Normalize(p models.GenerateParams) (models.GenerateParams, error) {
	return c.gen.Normalize(p)
}

func (c *countingService) Window(p models.GenerateParams) models.DateRange {
	return c.gen.Window(p)
}

func (c *countingService) GenerateWeeklySlots(context.Context, models.GenerateParams) (models.WeeklySlotsFetchResult, error) {
	c.calls++
	return c.result, nil
}

func newCounting(result models.WeeklySlotsFetchResult) *countingService {
	gen := availability.NewGenerator(availability.GridTemplate{Open: 8 * 60, Close: 18 * 60}, time.UTC)
	gen.Now = func() time.Time { return date(2025, 1, 1) }
	return &countingService{gen: gen, result: result}
}

func params() models.GenerateParams {
	return models.GenerateParams{
		ProviderID:      "prov-1",
		ListingID:       "listing-1",
		ServiceDuration: 60,
		StartDate:       date(2025, 1, 6),
		DaysAhead:       7,
	}
}

func TestCachedServiceServesRepeatsFromStore(t *testing.T) {
	next := newCounting(sampleResult())
	svc := &CachedAvailabilityService{Next: next, Store: NewMemoryStore(8, time.Minute), Logger: zap.NewNop(), Now: next.gen.Now}
	ctx := context.Background()

	first, err := svc.GenerateWeeklySlots(ctx, params())
	require.NoError(t, err)
	second, err := svc.GenerateWeeklySlots(ctx, params())
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first, second)

	_, err = svc.Store.InvalidateProvider(ctx, "prov-1", models.DateRange{Start: date(2025, 1, 8), End: date(2025, 1, 9)})
	require.NoError(t, err)
	_, err = svc.GenerateWeeklySlots(ctx, params())
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedServiceSkipsFailedResults(t *testing.T) {
	next := newCounting(models.WeeklySlotsFetchResult{Slots: []models.Slot{}, Error: "fetchFailure: timeout"})
	svc := &CachedAvailabilityService{Next: next, Store: NewMemoryStore(8, time.Minute)}

	for i := 0; i < 2; i++ {
		result, err := svc.GenerateWeeklySlots(context.Background(), params())
		require.NoError(t, err)
		assert.NotEmpty(t, result.Error)
	}
	assert.Equal(t, 2, next.calls)
}

func TestCachedServiceRejectsInvalidParams(t *testing.T) {
	next := newCounting(sampleResult())
	svc := &CachedAvailabilityService{Next: next, Store: NewMemoryStore(8, time.Minute)}

	p := params()
	p.ServiceDuration = 0
	_, err := svc.GenerateWeeklySlots(context.Background(), p)
	assert.ErrorIs(t, err, availability.ErrInvalidDuration)
	assert.Zero(t, next.calls)
}

func TestCachedServiceDropsSlotsStartedSinceCaching(t *testing.T) {
	next := newCounting(sampleResult())
	now := date(2025, 1, 6).Add(8 * time.Hour)
	svc := &CachedAvailabilityService{
		Next:  next,
		Store: NewMemoryStore(8, time.Minute),
		Now:   func() time.Time { return now },
	}
	ctx := context.Background()

	first, err := svc.GenerateWeeklySlots(ctx, params())
	require.NoError(t, err)
	require.Len(t, first.Slots, 1)

	// exactly at start time the slot is still offered
	now = first.Slots[0].StartTime
	atStart, err := svc.GenerateWeeklySlots(ctx, params())
	require.NoError(t, err)
	assert.Len(t, atStart.Slots, 1)

	now = first.Slots[0].StartTime.Add(time.Minute)
	late, err := svc.GenerateWeeklySlots(ctx, params())
	require.NoError(t, err)
	assert.Empty(t, late.Slots)
	assert.NotNil(t, late.Slots)
	assert.Equal(t, first.LastUpdated, late.LastUpdated)
	assert.Equal(t, 1, next.calls)

	// the stored entry keeps its slots for a clock that has not caught up
	now = date(2025, 1, 6)
	again, err := svc.GenerateWeeklySlots(ctx, params())
	require.NoError(t, err)
	assert.Len(t, again.Slots, 1)
	assert.Equal(t, 1, next.calls)
}
