package appointment

import (
	"time"

	"servicehub/models"
)

type Event string

const (
	EventComplete Event = "complete"
	EventCancel   Event = "cancel"
)

// Transition applies ev to a status. Only scheduled appointments move;
// completed and cancelled are terminal.
func Transition(from models.AppointmentStatus, ev Event) (models.AppointmentStatus, error) {
	if from != models.StatusScheduled {
		return from, newLifecycleError(CodeInvalidTransition, "cannot %s an appointment that is %s", ev, from)
	}
	switch ev {
	case EventComplete:
		return models.StatusCompleted, nil
	case EventCancel:
		return models.StatusCancelled, nil
	}
	return from, newLifecycleError(CodeInvalidTransition, "unknown event %q", ev)
}

// DueForCompletion reports whether a sweep at asOf should complete a.
// Recurring templates describe a series and are never swept.
func DueForCompletion(a models.Appointment, asOf time.Time) bool {
	if a.Status != models.StatusScheduled || isRecurring(a) {
		return false
	}
	return !a.End.After(asOf)
}

// Complete returns a copy of a marked completed at asOf.
func Complete(a models.Appointment, asOf time.Time) (models.Appointment, error) {
	next, err := Transition(a.Status, EventComplete)
	if err != nil {
		return a, err
	}
	if a.End.After(asOf) {
		return a, newLifecycleError(CodeInvalidTransition, "appointment %s has not ended yet", a.ID)
	}
	a.Status = next
	a.CompletedAt = &asOf
	a.UpdatedAt = asOf
	return a, nil
}

// Cancel returns a copy of a marked cancelled at the given instant.
func Cancel(a models.Appointment, at time.Time) (models.Appointment, error) {
	next, err := Transition(a.Status, EventCancel)
	if err != nil {
		return a, err
	}
	a.Status = next
	a.CancelledAt = &at
	a.UpdatedAt = at
	return a, nil
}

// Sweep completes every due appointment in appts, returning the updated
// slice and the ones it transitioned. Running it twice is a no-op.
func Sweep(appts []models.Appointment, asOf time.Time) ([]models.Appointment, []models.Appointment) {
	out := make([]models.Appointment, len(appts))
	var done []models.Appointment
	for i, a := range appts {
		out[i] = a
		if !DueForCompletion(a, asOf) {
			continue
		}
		if completed, err := Complete(a, asOf); err == nil {
			out[i] = completed
			done = append(done, completed)
		}
	}
	return out, done
}

func isRecurring(a models.Appointment) bool {
	return a.Recurrence != "" && a.Recurrence != string(models.RecurrenceNone)
}

// AffectedRange is the stretch of calendar a transition on a frees: the
// appointment's own window, or the whole remaining series for a template.
func AffectedRange(a models.Appointment) models.DateRange {
	if !isRecurring(a) {
		return models.DateRange{Start: a.Start, End: a.End}
	}
	if a.RecurrenceUntil == nil {
		return models.DateRange{Start: a.Start}
	}
	y, m, d := a.RecurrenceUntil.Date()
	lastDay := time.Date(y, m, d+1, 0, 0, 0, 0, a.RecurrenceUntil.Location())
	return models.DateRange{Start: a.Start, End: lastDay.Add(a.End.Sub(a.Start))}
}
