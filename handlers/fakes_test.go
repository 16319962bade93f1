package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	overrideRepo "servicehub/database/repository/override"
	"servicehub/models"
	"servicehub/services/appointment"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// scriptedAvailability returns results in order, repeating the last one.
type scriptedAvailability struct {
	mu      sync.Mutex
	results []models.WeeklySlotsFetchResult
	err     error
	calls   []models.GenerateParams
}

func (s *scriptedAvailability) GenerateWeeklySlots(_ context.Context, p models.GenerateParams) (models.WeeklySlotsFetchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, p)
	if s.err != nil {
		return models.WeeklySlotsFetchResult{Slots: []models.Slot{}}, s.err
	}
	i := len(s.calls) - 1
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	return s.results[i], nil
}

func (s *scriptedAvailability) Normalize(p models.GenerateParams) (models.GenerateParams, error) {
	return p, nil
}

func (s *scriptedAvailability) Window(p models.GenerateParams) models.DateRange {
	return models.DateRange{Start: p.StartDate, End: p.StartDate.AddDate(0, 0, p.DaysAhead)}
}

type fakeAppointments struct {
	cancelled []string
	confirmed []bool
	appt      *models.Appointment
	err       error
	sweepAsOf time.Time
	swept     int
}

func (f *fakeAppointments) CancelAppointment(_ context.Context, id string, confirmed bool) (*models.Appointment, error) {
	f.confirmed = append(f.confirmed, confirmed)
	if !confirmed {
		return nil, appointment.ErrConfirmationRequired
	}
	if f.err != nil {
		return nil, f.err
	}
	f.cancelled = append(f.cancelled, id)
	return f.appt, nil
}

func (f *fakeAppointments) CompleteAppointment(_ context.Context, id string, _ time.Time) (*models.Appointment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.appt, nil
}

func (f *fakeAppointments) RunCompletionSweep(_ context.Context, asOf time.Time) (int, error) {
	f.sweepAsOf = asOf
	return f.swept, f.err
}

type fakeOverrideRepo struct {
	items     map[string]models.ManualOverride
	createErr error
}

func newFakeOverrideRepo() *fakeOverrideRepo {
	return &fakeOverrideRepo{items: map[string]models.ManualOverride{}}
}

func (f *fakeOverrideRepo) FetchManualOverrides(context.Context, string, time.Time, time.Time) ([]models.ManualOverride, error) {
	var out []models.ManualOverride
	for _, o := range f.items {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOverrideRepo) Create(_ context.Context, o *models.ManualOverride) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.items[o.ID] = *o
	return nil
}

func (f *fakeOverrideRepo) Delete(_ context.Context, providerID, id string) (*models.ManualOverride, error) {
	o, ok := f.items[id]
	if !ok || o.ProviderID != providerID {
		return nil, overrideRepo.ErrNotFound
	}
	delete(f.items, id)
	return &o, nil
}

func (f *fakeOverrideRepo) EnsureIndexes() error { return nil }

type recordingNotifier struct {
	events []models.InvalidationEvent
}

func (r *recordingNotifier) NotifyInvalidate(_ context.Context, ev models.InvalidationEvent) error {
	r.events = append(r.events, ev)
	return nil
}
