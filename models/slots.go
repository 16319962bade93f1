package models

import "time"

// DateLayout is the calendar-date format used for slot and override dates.
const DateLayout = "2006-01-02"

// ClockLayout is the time-of-day format used for slot ticks and overrides.
const ClockLayout = "15:04"

type Period string

const (
	PeriodAM Period = "AM"
	PeriodPM Period = "PM"
)

// Slot is a single offerable window produced by one generation pass.
type Slot struct {
	ID                 string    `json:"id"`
	Date               string    `json:"date"`        // e.g. "2025-01-07"
	Time               string    `json:"time"`        // e.g. "10:00"
	Period             Period    `json:"period"`      // AM/PM bucket, display only
	DisplayTime        string    `json:"displayTime"` // e.g. "10:00 AM"
	StartTime          time.Time `json:"startTime"`
	EndTime            time.Time `json:"endTime"`
	IsAvailable        bool      `json:"isAvailable"`
	IsManuallyDisabled bool      `json:"isManuallyDisabled"`
	HasConflict        bool      `json:"hasConflict"`
	ConflictReason     string    `json:"conflictReason,omitempty"`
}

// SlotGroup holds one calendar day's slots with display metadata.
type SlotGroup struct {
	Date      string `json:"date"`
	DayName   string `json:"dayName"`   // e.g. "Tuesday"
	DayNumber int    `json:"dayNumber"` // day of month
	Month     string `json:"month"`     // e.g. "Jan"
	Label     string `json:"label"`     // e.g. "Tue 7 Jan"
	Slots     []Slot `json:"slots"`
}

type SlotStats struct {
	TotalSlots             int     `json:"totalSlots"`
	AvailableSlots         int     `json:"availableSlots"`
	UnavailableSlots       int     `json:"unavailableSlots"`
	DaysWithSlots          int     `json:"daysWithSlots"`
	DaysWithAvailableSlots int     `json:"daysWithAvailableSlots"`
	AverageSlotsPerDay     float64 `json:"averageSlotsPerDay"`
}

// WeeklySlotsFetchResult is what the availability boundary hands back to callers.
// A populated Error means the data sources failed and Slots is empty.
type WeeklySlotsFetchResult struct {
	Slots       []Slot    `json:"slots"`
	IsLoading   bool      `json:"isLoading"`
	Error       string    `json:"error,omitempty"`
	LastUpdated time.Time `json:"lastUpdated,omitzero"`
}

// GenerateParams describes one generation pass.
type GenerateParams struct {
	ProviderID      string    `json:"providerId" validate:"required"`
	ListingID       string    `json:"listingId" validate:"required"`
	ServiceDuration int       `json:"serviceDuration"` // minutes
	Recurrence      string    `json:"recurrence"`
	StartDate       time.Time `json:"startDate"`
	DaysAhead       int       `json:"daysAhead" validate:"gte=0,lte=90"`
}
