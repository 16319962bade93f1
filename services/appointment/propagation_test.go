package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicehub/models"
	"servicehub/services/availability"
	"servicehub/services/invalidation"
	"servicehub/services/slotcache"
)

func findSlot(t *testing.T, slots []models.Slot, date, clock string) models.Slot {
	t.Helper()
	for _, s := range slots {
		if s.Date == date && s.Time == clock {
			return s
		}
	}
	t.Fatalf("no slot at %s %s", date, clock)
	return models.Slot{}
}

// A cancelled appointment frees its slot on the next pass even though the
// previous pass was cached.
func TestCancellationFreesCachedSlot(t *testing.T) {
	monday := tuesday.AddDate(0, 0, -1)
	clock := func() time.Time { return monday.AddDate(0, 0, -2) }

	repo := newMemoryRepo(scheduled("a1"))
	store := slotcache.NewMemoryStore(16, time.Hour)

	gen := availability.NewGenerator(availability.GridTemplate{Open: 8 * 60, Close: 18 * 60}, time.UTC)
	gen.Now = clock
	slots := &slotcache.CachedAvailabilityService{
		Next:  &availability.DefaultAvailabilityService{Generator: gen, Reservations: repo},
		Store: store,
		Now:   clock,
	}
	svc := &DefaultAppointmentService{
		Repo:     repo,
		Notifier: &invalidation.CacheNotifier{Store: store},
		Now:      clock,
	}

	params := models.GenerateParams{
		ProviderID:      "prov-1",
		ListingID:       "listing-1",
		ServiceDuration: 60,
		StartDate:       monday,
		DaysAhead:       7,
	}
	ctx := context.Background()

	before, err := slots.GenerateWeeklySlots(ctx, params)
	require.NoError(t, err)
	assert.True(t, findSlot(t, before.Slots, "2025-01-07", "10:00").HasConflict)
	assert.Equal(t, 1, store.Len())

	_, err = svc.CancelAppointment(ctx, "a1", true)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())

	after, err := slots.GenerateWeeklySlots(ctx, params)
	require.NoError(t, err)
	freed := findSlot(t, after.Slots, "2025-01-07", "10:00")
	assert.False(t, freed.HasConflict)
	assert.True(t, freed.IsAvailable)
	assert.Equal(t, 70, availability.Summarize(after.Slots).AvailableSlots)
}
