package models

import "strconv"

type RecurrenceKind string

const (
	RecurrenceNone     RecurrenceKind = "none"
	RecurrenceWeekly   RecurrenceKind = "weekly"
	RecurrenceBiweekly RecurrenceKind = "biweekly"
	RecurrenceMonthly  RecurrenceKind = "monthly"
	RecurrenceCustom   RecurrenceKind = "custom" // every Interval days
)

// RecurrenceRule is a parsed recurrence identifier such as "weekly" or "custom-3".
type RecurrenceRule struct {
	Kind     RecurrenceKind `json:"kind"`
	Interval int            `json:"interval,omitempty"`
}

func (r RecurrenceRule) String() string {
	if r.Kind == RecurrenceCustom {
		return string(RecurrenceCustom) + "-" + strconv.Itoa(r.Interval)
	}
	return string(r.Kind)
}

// IsRecurring reports whether the rule produces more than one occurrence.
func (r RecurrenceRule) IsRecurring() bool {
	return r.Kind != "" && r.Kind != RecurrenceNone
}

// RecurrenceDescriptor is presentation data for a recurrence badge.
type RecurrenceDescriptor struct {
	Rule       string `json:"rule"`
	Label      string `json:"label"`
	Icon       string `json:"icon"`
	ColorClass string `json:"colorClass"`
}
