package availability

import (
	"strconv"
	"strings"
	"time"

	"servicehub/models"
)

// MaxCustomInterval is the largest N accepted in "custom-N".
const MaxCustomInterval = 366

// ParseRecurrenceRule accepts "none", "weekly", "biweekly", "monthly" and
// "custom-N" (every N days, 1 <= N <= MaxCustomInterval). An empty
// identifier means "none".
func ParseRecurrenceRule(id string) (models.RecurrenceRule, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	switch models.RecurrenceKind(id) {
	case "", models.RecurrenceNone:
		return models.RecurrenceRule{Kind: models.RecurrenceNone}, nil
	case models.RecurrenceWeekly, models.RecurrenceBiweekly, models.RecurrenceMonthly:
		return models.RecurrenceRule{Kind: models.RecurrenceKind(id)}, nil
	}

	if n, ok := strings.CutPrefix(id, string(models.RecurrenceCustom)+"-"); ok {
		interval, err := strconv.Atoi(n)
		if err == nil && interval >= 1 && interval <= MaxCustomInterval {
			return models.RecurrenceRule{Kind: models.RecurrenceCustom, Interval: interval}, nil
		}
	}
	return models.RecurrenceRule{}, newEngineError(CodeInvalidRecurrenceRule, "unsupported recurrence rule %q", id)
}

// ResolveOccurrences returns every occurrence of rule from anchor up to and
// including windowEnd, in ascending order. Occurrences keep the anchor's
// time of day and location.
func ResolveOccurrences(rule string, anchor, windowEnd time.Time) ([]time.Time, error) {
	r, err := ParseRecurrenceRule(rule)
	if err != nil {
		return nil, err
	}
	return occurrences(r, anchor, windowEnd), nil
}

func occurrences(rule models.RecurrenceRule, anchor, windowEnd time.Time) []time.Time {
	if anchor.After(windowEnd) {
		return []time.Time{}
	}
	if !rule.IsRecurring() {
		return []time.Time{anchor}
	}

	var out []time.Time
	for i := 0; ; i++ {
		next := nthOccurrence(rule, anchor, i)
		if next.After(windowEnd) {
			break
		}
		// the series must move forward or the walk never ends
		if len(out) > 0 && !next.After(out[len(out)-1]) {
			break
		}
		out = append(out, next)
	}
	return out
}

func nthOccurrence(rule models.RecurrenceRule, anchor time.Time, n int) time.Time {
	switch rule.Kind {
	case models.RecurrenceWeekly:
		return anchor.AddDate(0, 0, 7*n)
	case models.RecurrenceBiweekly:
		return anchor.AddDate(0, 0, 14*n)
	case models.RecurrenceMonthly:
		return addMonthsClamped(anchor, n)
	case models.RecurrenceCustom:
		return anchor.AddDate(0, 0, rule.Interval*n)
	}
	return anchor
}

// addMonthsClamped moves anchor forward by months, keeping its day of month
// unless the target month is shorter, in which case the last day is used.
// Always computed from the anchor so Jan 31 yields Feb 28 and then Mar 31.
func addMonthsClamped(anchor time.Time, months int) time.Time {
	y, m, d := anchor.Date()
	hh, mm, ss := anchor.Clock()
	loc := anchor.Location()

	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, loc)
	if last := daysIn(first.Year(), first.Month(), loc); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, anchor.Nanosecond(), loc)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

var recurrenceBadges = map[models.RecurrenceKind]models.RecurrenceDescriptor{
	models.RecurrenceNone:     {Label: "One-time", Icon: "calendar", ColorClass: "bg-gray-100 text-gray-700"},
	models.RecurrenceWeekly:   {Label: "Weekly", Icon: "repeat", ColorClass: "bg-blue-100 text-blue-700"},
	models.RecurrenceBiweekly: {Label: "Every 2 weeks", Icon: "repeat", ColorClass: "bg-indigo-100 text-indigo-700"},
	models.RecurrenceMonthly:  {Label: "Monthly", Icon: "calendar-days", ColorClass: "bg-purple-100 text-purple-700"},
	models.RecurrenceCustom:   {Icon: "refresh-cw", ColorClass: "bg-amber-100 text-amber-700"},
}

// DescribeRecurrence is a presentation lookup; nothing in slot generation reads it.
func DescribeRecurrence(rule string) (models.RecurrenceDescriptor, error) {
	r, err := ParseRecurrenceRule(rule)
	if err != nil {
		return models.RecurrenceDescriptor{}, err
	}
	d := recurrenceBadges[r.Kind]
	d.Rule = r.String()
	if r.Kind == models.RecurrenceCustom {
		d.Label = "Every " + strconv.Itoa(r.Interval) + " days"
		if r.Interval == 1 {
			d.Label = "Daily"
		}
	}
	return d, nil
}
