package invalidation

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"servicehub/models"
	"servicehub/services/slotcache"
)

// Notifier carries the advisory "provider calendar changed" signal to
// whatever caches generation results.
type Notifier interface {
	NotifyInvalidate(ctx context.Context, event models.InvalidationEvent) error
}

// CacheNotifier busts a slot cache in-process.
type CacheNotifier struct {
	Store  slotcache.Store
	Logger *zap.Logger
}

func (n *CacheNotifier) NotifyInvalidate(ctx context.Context, event models.InvalidationEvent) error {
	dropped, err := n.Store.InvalidateProvider(ctx, event.ProviderID, event.Range)
	if err != nil {
		return err
	}
	logger(n.Logger).Debug("slots.cache.invalidated",
		zap.String("providerId", event.ProviderID),
		zap.String("reason", event.Reason),
		zap.Int("entries", dropped),
	)
	return nil
}

// Fanout delivers each event to every notifier, returning the joined errors.
type Fanout []Notifier

func (f Fanout) NotifyInvalidate(ctx context.Context, event models.InvalidationEvent) error {
	var errs []error
	for _, n := range f {
		if err := n.NotifyInvalidate(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Noop is used when no cache sits in front of the generator.
type Noop struct{}

func (Noop) NotifyInvalidate(context.Context, models.InvalidationEvent) error { return nil }

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
