package availability

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
)

const (
	TemplateGrid  = "grid"
	TemplateFixed = "fixed"
)

// DayTemplate enumerates candidate start times for one calendar day.
// day is midnight in the provider's location.
type DayTemplate interface {
	Starts(day time.Time, duration time.Duration) []time.Time
}

// GridTemplate emits duration-aligned ticks from Open, keeping only ticks
// that finish by Close. Open and Close are minutes from midnight.
type GridTemplate struct {
	Open  int
	Close int
}

func (g GridTemplate) Starts(day time.Time, duration time.Duration) []time.Time {
	step := int(duration / time.Minute)
	if step <= 0 {
		return nil
	}
	var starts []time.Time
	for m := g.Open; m+step <= g.Close; m += step {
		starts = append(starts, atMinute(day, m))
	}
	return starts
}

// FixedTemplate emits the same ticks every day regardless of duration.
type FixedTemplate struct {
	Times []int // minutes from midnight, ascending
}

func (f FixedTemplate) Starts(day time.Time, _ time.Duration) []time.Time {
	starts := make([]time.Time, 0, len(f.Times))
	for _, m := range f.Times {
		starts = append(starts, atMinute(day, m))
	}
	return starts
}

func atMinute(day time.Time, minute int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, minute, 0, 0, day.Location())
}

// ParseClock converts "HH:MM" to minutes from midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// NewDayTemplate builds the template named by kind from configuration values.
func NewDayTemplate(kind, open, close string, fixed []string) (DayTemplate, error) {
	switch strings.ToLower(kind) {
	case "", TemplateGrid:
		o, err := ParseClock(open)
		if err != nil {
			return nil, err
		}
		c, err := ParseClock(close)
		if err != nil {
			return nil, err
		}
		if c <= o {
			return nil, fmt.Errorf("grid template closes at %s before it opens at %s", close, open)
		}
		return GridTemplate{Open: o, Close: c}, nil
	case TemplateFixed:
		if len(fixed) == 0 {
			return nil, fmt.Errorf("fixed template needs at least one time")
		}
		times := make([]int, 0, len(fixed))
		for _, s := range fixed {
			m, err := ParseClock(s)
			if err != nil {
				return nil, err
			}
			times = append(times, m)
		}
		sort.Ints(times)
		return FixedTemplate{Times: slices.Compact(times)}, nil
	}
	return nil, fmt.Errorf("unknown slot template %q", kind)
}
