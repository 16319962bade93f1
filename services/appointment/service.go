package appointment

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	appointmentRepo "servicehub/database/repository/appointment"
	"servicehub/models"
	"servicehub/services/invalidation"
)

type AppointmentService interface {
	CancelAppointment(ctx context.Context, id string, confirmed bool) (*models.Appointment, error)
	CompleteAppointment(ctx context.Context, id string, asOf time.Time) (*models.Appointment, error)
	RunCompletionSweep(ctx context.Context, asOf time.Time) (int, error)
}

type DefaultAppointmentService struct {
	Repo     appointmentRepo.AppointmentRepository
	Notifier invalidation.Notifier
	Logger   *zap.Logger
	Now      func() time.Time
}

// CancelAppointment cancels a scheduled appointment once the caller has
// confirmed it. The stored record is the only source of truth: nothing is
// marked cancelled unless the write succeeds, and caches are invalidated
// only after it does.
func (s *DefaultAppointmentService) CancelAppointment(ctx context.Context, id string, confirmed bool) (*models.Appointment, error) {
	logger := s.logger().With(zap.String("appointmentId", id))

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, newLifecycleError(CodeInvalidParameters, "appointment id is required")
	}
	if !confirmed {
		return nil, newLifecycleError(CodeConfirmationRequired, "cancellation of %s must be confirmed", id)
	}

	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cancelled, err := Cancel(*appt, now)
	if err != nil {
		logger.Warn("appointment.cancel.rejected", zap.String("status", string(appt.Status)), zap.Error(err))
		return nil, err
	}

	if err := s.Repo.PersistCancellation(ctx, id, now); err != nil {
		return nil, s.persistError(logger, "appointment.cancel.persist_failed", id, err)
	}
	logger.Info("appointment.cancel.persisted", zap.String("providerId", appt.ProviderID))

	s.invalidate(ctx, cancelled, "appointment.cancelled")
	return &cancelled, nil
}

// CompleteAppointment completes a single appointment whose end has passed.
func (s *DefaultAppointmentService) CompleteAppointment(ctx context.Context, id string, asOf time.Time) (*models.Appointment, error) {
	logger := s.logger().With(zap.String("appointmentId", id))
	if asOf.IsZero() {
		asOf = s.now()
	}

	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	completed, err := Complete(*appt, asOf)
	if err != nil {
		logger.Warn("appointment.complete.rejected", zap.String("status", string(appt.Status)), zap.Error(err))
		return nil, err
	}
	if err := s.Repo.PersistCompletion(ctx, id, asOf); err != nil {
		return nil, s.persistError(logger, "appointment.complete.persist_failed", id, err)
	}

	s.invalidate(ctx, completed, "appointment.completed")
	return &completed, nil
}

// RunCompletionSweep completes every one-off appointment that ended at or
// before asOf and returns how many changed. Safe to run repeatedly.
func (s *DefaultAppointmentService) RunCompletionSweep(ctx context.Context, asOf time.Time) (int, error) {
	logger := s.logger()
	if asOf.IsZero() {
		asOf = s.now()
	}

	loaded, err := s.Repo.FetchDueForCompletion(ctx, asOf)
	if err != nil {
		logger.Error("sweep.load_failed", zap.Time("asOf", asOf), zap.Error(err))
		return 0, newLifecycleError(CodePersistFailure, "completion sweep: %v", err)
	}

	_, due := Sweep(loaded, asOf)
	done := make([]models.Appointment, 0, len(due))
	var persistErr error
	for _, a := range due {
		err := s.Repo.PersistCompletion(ctx, a.ID, asOf)
		switch {
		case err == nil:
			done = append(done, a)
		case errors.Is(err, appointmentRepo.ErrNotScheduled), errors.Is(err, appointmentRepo.ErrNotFound):
			// cancelled or removed since it was loaded
			logger.Debug("sweep.skipped", zap.String("appointmentId", a.ID), zap.Error(err))
		default:
			logger.Error("sweep.persist_failed", zap.String("appointmentId", a.ID), zap.Error(err))
			persistErr = err
		}
		if persistErr != nil {
			break
		}
	}

	// whatever was written is durable, so caches are told even on failure
	for _, ev := range sweepEvents(done) {
		if err := s.notifier().NotifyInvalidate(ctx, ev); err != nil {
			logger.Error("sweep.invalidate_failed", zap.String("providerId", ev.ProviderID), zap.Error(err))
		}
	}

	if persistErr != nil {
		return len(done), newLifecycleError(CodePersistFailure, "completion sweep: %v", persistErr)
	}
	logger.Info("sweep.completed", zap.Time("asOf", asOf), zap.Int("count", len(done)))
	return len(done), nil
}

type sweepDay struct {
	providerID string
	date       string
}

// sweepEvents emits one event per provider and calendar day, covering the
// earliest start to the latest end completed on that day.
func sweepEvents(done []models.Appointment) []models.InvalidationEvent {
	byDay := map[sweepDay]*models.InvalidationEvent{}
	for _, a := range done {
		r := AffectedRange(a)
		key := sweepDay{providerID: a.ProviderID, date: a.Start.Format(models.DateLayout)}
		ev, ok := byDay[key]
		if !ok {
			byDay[key] = &models.InvalidationEvent{
				ProviderID: a.ProviderID,
				ListingID:  a.ListingID,
				Range:      r,
				Reason:     "appointment.completed",
			}
			continue
		}
		if r.Start.Before(ev.Range.Start) {
			ev.Range.Start = r.Start
		}
		if r.End.After(ev.Range.End) {
			ev.Range.End = r.End
		}
		if ev.ListingID != a.ListingID {
			ev.ListingID = ""
		}
	}

	events := make([]models.InvalidationEvent, 0, len(byDay))
	for _, ev := range byDay {
		events = append(events, *ev)
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].ProviderID != events[j].ProviderID {
			return events[i].ProviderID < events[j].ProviderID
		}
		return events[i].Range.Start.Before(events[j].Range.Start)
	})
	return events
}

func (s *DefaultAppointmentService) load(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, appointmentRepo.ErrNotFound) {
		return nil, newLifecycleError(CodeNotFound, "appointment %s not found", id)
	}
	if err != nil {
		s.logger().Error("appointment.load_failed", zap.String("appointmentId", id), zap.Error(err))
		return nil, newLifecycleError(CodePersistFailure, "could not load appointment %s: %v", id, err)
	}
	return appt, nil
}

func (s *DefaultAppointmentService) persistError(logger *zap.Logger, event, id string, err error) error {
	switch {
	case errors.Is(err, appointmentRepo.ErrNotScheduled):
		// lost a race with another transition
		logger.Warn(event, zap.Error(err))
		return newLifecycleError(CodeInvalidTransition, "appointment %s is no longer scheduled", id)
	case errors.Is(err, appointmentRepo.ErrNotFound):
		return newLifecycleError(CodeNotFound, "appointment %s not found", id)
	}
	logger.Error(event, zap.Error(err))
	return newLifecycleError(CodePersistFailure, "could not save appointment %s: %v", id, err)
}

// invalidate is advisory: the transition is already durable, so a failed
// notification is logged rather than returned.
func (s *DefaultAppointmentService) invalidate(ctx context.Context, a models.Appointment, reason string) {
	ev := models.InvalidationEvent{
		ProviderID: a.ProviderID,
		ListingID:  a.ListingID,
		Range:      AffectedRange(a),
		Reason:     reason,
		EmittedAt:  s.now(),
	}
	if err := s.notifier().NotifyInvalidate(ctx, ev); err != nil {
		s.logger().Error("appointment.invalidate_failed",
			zap.String("appointmentId", a.ID),
			zap.String("providerId", a.ProviderID),
			zap.Error(err),
		)
	}
}

func (s *DefaultAppointmentService) notifier() invalidation.Notifier {
	if s.Notifier == nil {
		return invalidation.Noop{}
	}
	return s.Notifier
}

func (s *DefaultAppointmentService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *DefaultAppointmentService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
