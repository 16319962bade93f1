package slotcache

import (
	"context"

	"servicehub/models"
)

// Store keeps generation results until a calendar change invalidates them.
type Store interface {
	Get(ctx context.Context, key Key) (models.WeeklySlotsFetchResult, bool, error)
	Set(ctx context.Context, key Key, result models.WeeklySlotsFetchResult) error
	// InvalidateProvider drops every entry of providerID whose range overlaps rng
	// and reports how many were dropped.
	InvalidateProvider(ctx context.Context, providerID string, rng models.DateRange) (int, error)
}
