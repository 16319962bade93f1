package availability

import (
	"context"
	"time"

	"go.uber.org/zap"

	"servicehub/models"
)

// ReservationSource returns one-off reservations in range plus every
// recurring template that may produce an occurrence in it.
type ReservationSource interface {
	FetchReservations(ctx context.Context, providerID string, from, to time.Time) ([]models.Reservation, error)
}

type OverrideSource interface {
	FetchManualOverrides(ctx context.Context, providerID string, from, to time.Time) ([]models.ManualOverride, error)
}

// AvailabilityService is the asynchronous boundary around the generator.
// Invalid parameters are returned as errors; data source failures come back
// inside the result so callers can render a degraded state.
type AvailabilityService interface {
	GenerateWeeklySlots(ctx context.Context, params models.GenerateParams) (models.WeeklySlotsFetchResult, error)
	Normalize(params models.GenerateParams) (models.GenerateParams, error)
	Window(params models.GenerateParams) models.DateRange
}

type DefaultAvailabilityService struct {
	Generator    *Generator
	Reservations ReservationSource
	Overrides    OverrideSource
	Logger       *zap.Logger
}

func (s *DefaultAvailabilityService) Normalize(params models.GenerateParams) (models.GenerateParams, error) {
	return s.Generator.Normalize(params)
}

func (s *DefaultAvailabilityService) Window(params models.GenerateParams) models.DateRange {
	return s.Generator.Window(params)
}

func (s *DefaultAvailabilityService) GenerateWeeklySlots(ctx context.Context, params models.GenerateParams) (models.WeeklySlotsFetchResult, error) {
	logger := s.logger()

	p, err := s.Generator.Normalize(params)
	if err != nil {
		logger.Debug("slots.generate.rejected", zap.Error(err))
		return models.WeeklySlotsFetchResult{Slots: []models.Slot{}}, err
	}
	window := s.Generator.Window(p)
	logger.Debug("slots.generate.started",
		zap.String("providerId", p.ProviderID),
		zap.String("listingId", p.ListingID),
		zap.Time("from", window.Start),
		zap.Time("to", window.End),
	)

	reservations, err := s.Reservations.FetchReservations(ctx, p.ProviderID, window.Start, window.End)
	if err != nil {
		logger.Error("slots.fetch.reservations_failed", zap.String("providerId", p.ProviderID), zap.Error(err))
		return failedResult(newEngineError(CodeFetchFailure, "could not load reservations: %v", err)), nil
	}

	var overrides []models.ManualOverride
	if s.Overrides != nil {
		overrides, err = s.Overrides.FetchManualOverrides(ctx, p.ProviderID, window.Start, window.End)
		if err != nil {
			logger.Error("slots.fetch.overrides_failed", zap.String("providerId", p.ProviderID), zap.Error(err))
			return failedResult(newEngineError(CodeFetchFailure, "could not load manual overrides: %v", err)), nil
		}
	}

	slots, err := s.Generator.Generate(p, reservations, overrides)
	if err != nil {
		// parameters were already validated, so this is bad reservation data
		logger.Error("slots.generate.failed", zap.String("providerId", p.ProviderID), zap.Error(err))
		return failedResult(err), nil
	}

	logger.Debug("slots.generate.completed",
		zap.String("providerId", p.ProviderID),
		zap.Int("slots", len(slots)),
		zap.Int("reservations", len(reservations)),
	)
	return models.WeeklySlotsFetchResult{
		Slots:       slots,
		IsLoading:   false,
		LastUpdated: s.Generator.now(),
	}, nil
}

func failedResult(err error) models.WeeklySlotsFetchResult {
	return models.WeeklySlotsFetchResult{
		Slots:     []models.Slot{},
		IsLoading: false,
		Error:     err.Error(),
	}
}

func (s *DefaultAvailabilityService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
