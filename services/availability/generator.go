package availability

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"servicehub/models"
)

const DefaultDaysAhead = 14

// MaxServiceDuration caps a service at one day, in minutes.
const MaxServiceDuration = 24 * 60

var (
	slotNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("servicehub/slots"))
	validate      = validator.New()
)

// Generator is the pure slot generation pass. It holds configuration only
// and is safe for concurrent use.
type Generator struct {
	Template  DayTemplate
	Location  *time.Location
	DaysAhead int
	Now       func() time.Time
}

func NewGenerator(template DayTemplate, loc *time.Location) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{
		Template:  template,
		Location:  loc,
		DaysAhead: DefaultDaysAhead,
		Now:       time.Now,
	}
}

// Normalize validates params and fills defaults: a zero StartDate becomes
// today and a zero DaysAhead becomes the generator default.
func (g *Generator) Normalize(params models.GenerateParams) (models.GenerateParams, error) {
	if params.ServiceDuration <= 0 {
		return params, newEngineError(CodeInvalidDuration, "service duration must be positive, got %d", params.ServiceDuration)
	}
	if params.ServiceDuration > MaxServiceDuration {
		return params, newEngineError(CodeInvalidDuration, "service duration may be at most %d minutes, got %d", MaxServiceDuration, params.ServiceDuration)
	}

	params.ProviderID = strings.TrimSpace(params.ProviderID)
	params.ListingID = strings.TrimSpace(params.ListingID)
	if err := validate.Struct(params); err != nil {
		return params, newEngineError(CodeInvalidParameters, "%s", err.Error())
	}

	rule, err := ParseRecurrenceRule(params.Recurrence)
	if err != nil {
		return params, err
	}
	params.Recurrence = rule.String()

	if params.DaysAhead == 0 {
		params.DaysAhead = g.DaysAhead
		if params.DaysAhead <= 0 {
			params.DaysAhead = DefaultDaysAhead
		}
	}
	if params.StartDate.IsZero() {
		params.StartDate = g.now()
	}
	params.StartDate = startOfDay(params.StartDate.In(g.location()))
	return params, nil
}

// Window is the half-open date range a normalized generation pass covers.
func (g *Generator) Window(params models.GenerateParams) models.DateRange {
	start := startOfDay(params.StartDate.In(g.location()))
	return models.DateRange{Start: start, End: start.AddDate(0, 0, params.DaysAhead)}
}

// Generate produces every candidate slot in the window, skipping candidates
// that start before now, annotated with conflicts and manual overrides.
func (g *Generator) Generate(params models.GenerateParams, reservations []models.Reservation, overrides []models.ManualOverride) ([]models.Slot, error) {
	p, err := g.Normalize(params)
	if err != nil {
		return nil, err
	}
	rule, _ := ParseRecurrenceRule(p.Recurrence)

	window := g.Window(p)
	booked, err := ExpandReservations(reservations, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	disabled := indexOverrides(overrides, p.ListingID)

	now := g.now()
	duration := time.Duration(p.ServiceDuration) * time.Minute
	slots := []models.Slot{}

	for i := 0; i < p.DaysAhead; i++ {
		day := window.Start.AddDate(0, 0, i)
		date := day.Format(models.DateLayout)

		for _, start := range g.Template.Starts(day, duration) {
			if start.Before(now) {
				continue
			}
			end := start.Add(duration)
			clock := start.Format(models.ClockLayout)

			conflict, reason := conflictAcrossOccurrences(rule, start, duration, window.End, booked)
			manual := disabled.has(date, clock)

			slots = append(slots, models.Slot{
				ID:                 SlotID(p.ProviderID, start),
				Date:               date,
				Time:               clock,
				Period:             periodOf(start),
				DisplayTime:        start.Format("3:04 PM"),
				StartTime:          start,
				EndTime:            end,
				IsAvailable:        !manual && !conflict,
				IsManuallyDisabled: manual,
				HasConflict:        conflict,
				ConflictReason:     reason,
			})
		}
	}
	return slots, nil
}

// conflictAcrossOccurrences checks the candidate and, for recurring services,
// every later occurrence that starts inside the window.
func conflictAcrossOccurrences(rule models.RecurrenceRule, start time.Time, duration time.Duration, windowEnd time.Time, booked []Window) (bool, string) {
	if !rule.IsRecurring() {
		return HasConflict(start, start.Add(duration), booked)
	}
	for _, occ := range occurrences(rule, start, windowEnd) {
		if !occ.Before(windowEnd) {
			break
		}
		if conflict, reason := HasConflict(occ, occ.Add(duration), booked); conflict {
			return true, reason
		}
	}
	return false, ""
}

// SlotID is stable for a provider and start instant across generation passes.
func SlotID(providerID string, start time.Time) string {
	return uuid.NewSHA1(slotNamespace, []byte(providerID+"|"+start.UTC().Format(time.RFC3339))).String()
}

func periodOf(t time.Time) models.Period {
	if t.Hour() < 12 {
		return models.PeriodAM
	}
	return models.PeriodPM
}

type overrideIndex struct {
	days  map[string]bool
	ticks map[string]bool
}

func indexOverrides(overrides []models.ManualOverride, listingID string) overrideIndex {
	idx := overrideIndex{days: map[string]bool{}, ticks: map[string]bool{}}
	for _, o := range overrides {
		if o.ListingID != "" && o.ListingID != listingID {
			continue
		}
		if o.Time == "" {
			idx.days[o.Date] = true
			continue
		}
		idx.ticks[o.Date+"|"+o.Time] = true
	}
	return idx
}

func (i overrideIndex) has(date, clock string) bool {
	return i.days[date] || i.ticks[date+"|"+clock]
}

func (g *Generator) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

func (g *Generator) location() *time.Location {
	if g.Location == nil {
		return time.UTC
	}
	return g.Location
}
