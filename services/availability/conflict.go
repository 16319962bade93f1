package availability

import (
	"fmt"
	"sort"
	"time"

	"servicehub/models"
)

// Window is one concrete occupied interval after recurrence expansion.
type Window struct {
	Start         time.Time
	End           time.Time
	ReservationID string
	Recurring     bool
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share an instant.
// Touching endpoints and empty intervals never overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if !aStart.Before(aEnd) || !bStart.Before(bEnd) {
		return false
	}
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// HasConflict returns the first window overlapping [start, end) and a reason naming it.
func HasConflict(start, end time.Time, windows []Window) (bool, string) {
	for _, w := range windows {
		if Overlaps(start, end, w.Start, w.End) {
			return true, conflictReason(w)
		}
	}
	return false, ""
}

func conflictReason(w Window) string {
	kind := "booking"
	if w.Recurring {
		kind = "recurring booking"
	}
	return fmt.Sprintf("Conflicts with %s on %s %s-%s",
		kind, w.Start.Format("Mon 2 Jan"), w.Start.Format(models.ClockLayout), w.End.Format(models.ClockLayout))
}

// ExpandReservations turns reservations into concrete windows overlapping
// [from, to), expanding recurring templates into each of their occurrences.
func ExpandReservations(reservations []models.Reservation, from, to time.Time) ([]Window, error) {
	var windows []Window
	for _, r := range reservations {
		length := r.End.Sub(r.Start)
		if length <= 0 {
			continue
		}

		rule, err := ParseRecurrenceRule(r.Recurrence)
		if err != nil {
			return nil, newEngineError(CodeInvalidRecurrenceRule, "reservation %s: unsupported recurrence rule %q", r.ID, r.Recurrence)
		}
		if !rule.IsRecurring() {
			if Overlaps(r.Start, r.End, from, to) {
				windows = append(windows, Window{Start: r.Start, End: r.End, ReservationID: r.ID, Recurring: r.IsRecurringInstance})
			}
			continue
		}

		for _, start := range occurrences(rule, r.Start, to) {
			if !r.Until.IsZero() && start.After(endOfDay(r.Until)) {
				break
			}
			end := start.Add(length)
			if Overlaps(start, end, from, to) {
				windows = append(windows, Window{Start: start, End: end, ReservationID: r.ID, Recurring: true})
			}
		}
	}

	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].Start.Before(windows[j].Start)
	})
	return windows, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
