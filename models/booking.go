package models

import "time"

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// IsTerminal reports whether no further transition is allowed.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Appointment is a booked visit between a user and a provider's listing.
// A non-empty Recurrence makes the record a recurring template anchored at Start.
type Appointment struct {
	ID              string            `bson:"id" json:"id"`
	ProviderID      string            `bson:"providerId" json:"providerId"`
	ListingID       string            `bson:"listingId" json:"listingId"`
	UserID          string            `bson:"userId,omitempty" json:"userId,omitempty"`
	Start           time.Time         `bson:"start" json:"start"`
	End             time.Time         `bson:"end" json:"end"`
	Status          AppointmentStatus `bson:"status" json:"status"`
	Recurrence      string            `bson:"recurrence,omitempty" json:"recurrence,omitempty"`
	RecurrenceUntil *time.Time        `bson:"recurrenceUntil,omitempty" json:"recurrenceUntil,omitempty"`
	CompletedAt     *time.Time        `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CancelledAt     *time.Time        `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CreatedAt       time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// Reservation converts the appointment into the window it occupies on the provider's calendar.
func (a Appointment) Reservation() Reservation {
	r := Reservation{
		ID:         a.ID,
		ProviderID: a.ProviderID,
		Start:      a.Start,
		End:        a.End,
		Recurrence: a.Recurrence,
	}
	if a.RecurrenceUntil != nil {
		r.Until = *a.RecurrenceUntil
	}
	return r
}

// Reservation is an occupied window [Start, End) for a provider. Recurring
// reservations are templates: Start/End describe the first occurrence.
type Reservation struct {
	ID                  string    `json:"id"`
	ProviderID          string    `json:"providerId"`
	Start               time.Time `json:"start"`
	End                 time.Time `json:"end"`
	Recurrence          string    `json:"recurrence,omitempty"`
	Until               time.Time `json:"until,omitzero"`
	IsRecurringInstance bool      `json:"isRecurringInstance"`
}

// DateRange is a half-open range [Start, End). A zero End is open-ended.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end,omitzero"`
}

// Overlaps reports whether the two ranges share an instant.
func (r DateRange) Overlaps(o DateRange) bool {
	if !r.End.IsZero() && !o.Start.Before(r.End) {
		return false
	}
	if !o.End.IsZero() && !r.Start.Before(o.End) {
		return false
	}
	return true
}
