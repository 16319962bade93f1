package availability

import (
	"fmt"
	"sort"
	"time"

	"servicehub/models"
)

// Group buckets slots by their Date, ordering groups by date and slots by
// start time. Dates are taken as given; no time zone conversion happens here.
func Group(slots []models.Slot) []models.SlotGroup {
	sorted := make([]models.Slot, len(slots))
	copy(sorted, slots)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	groups := []models.SlotGroup{}
	for _, s := range sorted {
		if n := len(groups); n > 0 && groups[n-1].Date == s.Date {
			groups[n-1].Slots = append(groups[n-1].Slots, s)
			continue
		}
		groups = append(groups, newSlotGroup(s))
	}
	return groups
}

func newSlotGroup(first models.Slot) models.SlotGroup {
	g := models.SlotGroup{Date: first.Date, Slots: []models.Slot{first}}
	day, err := time.Parse(models.DateLayout, first.Date)
	if err != nil {
		g.Label = first.Date
		return g
	}
	g.DayName = day.Weekday().String()
	g.DayNumber = day.Day()
	g.Month = day.Month().String()[:3]
	g.Label = fmt.Sprintf("%s %d %s", g.DayName[:3], g.DayNumber, g.Month)
	return g
}

// Summarize computes aggregate statistics over one generation pass.
func Summarize(slots []models.Slot) models.SlotStats {
	var stats models.SlotStats
	days := map[string]bool{} // date -> has an available slot

	for _, s := range slots {
		stats.TotalSlots++
		if s.IsAvailable {
			stats.AvailableSlots++
			days[s.Date] = true
		} else if _, seen := days[s.Date]; !seen {
			days[s.Date] = false
		}
	}

	stats.UnavailableSlots = stats.TotalSlots - stats.AvailableSlots
	stats.DaysWithSlots = len(days)
	for _, available := range days {
		if available {
			stats.DaysWithAvailableSlots++
		}
	}
	if stats.DaysWithSlots > 0 {
		stats.AverageSlotsPerDay = float64(stats.TotalSlots) / float64(stats.DaysWithSlots)
	}
	return stats
}
