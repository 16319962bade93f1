package slotcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicehub/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func weekKey(provider, listing string, from time.Time) Key {
	return Key{
		ProviderID: provider,
		ListingID:  listing,
		From:       from,
		To:         from.AddDate(0, 0, 7),
		Duration:   60,
		Recurrence: "none",
	}
}

func sampleResult() models.WeeklySlotsFetchResult {
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	return models.WeeklySlotsFetchResult{
		Slots: []models.Slot{{
			ID:          "slot-1",
			Date:        "2025-01-06",
			Time:        "09:00",
			Period:      models.PeriodAM,
			StartTime:   start,
			EndTime:     start.Add(time.Hour),
			IsAvailable: true,
		}},
		LastUpdated: date(2025, 1, 1),
	}
}

func TestParseKeyRoundTrip(t *testing.T) {
	k := weekKey("prov|with:odd chars", "listing-1", date(2025, 1, 6))
	k.Recurrence = "custom-3"

	parsed, err := ParseKey(k.String())
	require.NoError(t, err)
	assert.Equal(t, k.ProviderID, parsed.ProviderID)
	assert.Equal(t, k.ListingID, parsed.ListingID)
	assert.True(t, k.From.Equal(parsed.From))
	assert.True(t, k.To.Equal(parsed.To))
	assert.Equal(t, 60, parsed.Duration)
	assert.Equal(t, "custom-3", parsed.Recurrence)

	_, err = ParseKey("slots|too|short")
	assert.Error(t, err)
}

// storeContract runs the behaviour every Store must share.
func storeContract(t *testing.T, store Store) {
	ctx := context.Background()
	week1 := weekKey("prov-1", "listing-1", date(2025, 1, 6))
	week2 := weekKey("prov-1", "listing-1", date(2025, 1, 13))
	otherListing := weekKey("prov-1", "listing-2", date(2025, 1, 6))
	otherProvider := weekKey("prov-2", "listing-1", date(2025, 1, 6))

	_, ok, err := store.Get(ctx, week1)
	require.NoError(t, err)
	assert.False(t, ok)

	for _, k := range []Key{week1, week2, otherListing, otherProvider} {
		require.NoError(t, store.Set(ctx, k, sampleResult()))
	}

	got, ok, err := store.Get(ctx, week1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Slots, 1)
	assert.Equal(t, "slot-1", got.Slots[0].ID)
	assert.True(t, got.Slots[0].StartTime.Equal(sampleResult().Slots[0].StartTime))

	// cancellation on Tue 7 Jan busts both listings of prov-1 for that week only
	n, err := store.InvalidateProvider(ctx, "prov-1", models.DateRange{Start: date(2025, 1, 7), End: date(2025, 1, 8)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, tc := range []struct {
		key  Key
		want bool
	}{
		{week1, false},
		{otherListing, false},
		{week2, true},
		{otherProvider, true},
	} {
		_, ok, err := store.Get(ctx, tc.key)
		require.NoError(t, err)
		assert.Equal(t, tc.want, ok, tc.key.String())
	}

	// open-ended range reaches every later entry
	n, err = store.InvalidateProvider(ctx, "prov-1", models.DateRange{Start: date(2025, 1, 1)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore(16, time.Minute))
}

func TestMemoryStoreEvictsOldest(t *testing.T) {
	store := NewMemoryStore(2, time.Minute)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Set(ctx, weekKey("prov", "l", date(2025, 1, 6+7*i)), sampleResult()))
	}
	assert.Equal(t, 2, store.Len())
	_, ok, _ := store.Get(ctx, weekKey("prov", "l", date(2025, 1, 6)))
	assert.False(t, ok)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, 5*time.Minute)
	storeContract(t, store)

	require.NoError(t, store.Set(context.Background(), weekKey("prov-3", "l", date(2025, 1, 6)), sampleResult()))
	mr.FastForward(6 * time.Minute)
	_, ok, err := store.Get(context.Background(), weekKey("prov-3", "l", date(2025, 1, 6)))
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire with the TTL")
}
