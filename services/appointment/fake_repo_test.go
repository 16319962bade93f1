package appointment

import (
	"context"
	"sort"
	"sync"
	"time"

	appointmentRepo "servicehub/database/repository/appointment"
	"servicehub/models"
)

// memoryRepo mirrors the Mongo repository's conditional writes.
type memoryRepo struct {
	mu         sync.Mutex
	appts      map[string]models.Appointment
	persistErr error
	loadErr    error
	writes     int
	// staleDue simulates records that changed after the sweep loaded them
	staleDue []models.Appointment
}

var _ appointmentRepo.AppointmentRepository = (*memoryRepo)(nil)

func newMemoryRepo(appts ...models.Appointment) *memoryRepo {
	r := &memoryRepo{appts: map[string]models.Appointment{}}
	for _, a := range appts {
		r.appts[a.ID] = a
	}
	return r
}

func (r *memoryRepo) Create(_ context.Context, a *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appts[a.ID] = *a
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	a, ok := r.appts[id]
	if !ok {
		return nil, appointmentRepo.ErrNotFound
	}
	return &a, nil
}

func (r *memoryRepo) FetchReservations(_ context.Context, providerID string, _, _ time.Time) ([]models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Reservation
	for _, a := range r.appts {
		if a.ProviderID == providerID && a.Status != models.StatusCancelled {
			out = append(out, a.Reservation())
		}
	}
	return out, nil
}

func (r *memoryRepo) PersistCancellation(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.persistErr != nil {
		return r.persistErr
	}
	a, ok := r.appts[id]
	if !ok {
		return appointmentRepo.ErrNotFound
	}
	if a.Status != models.StatusScheduled {
		return appointmentRepo.ErrNotScheduled
	}
	a.Status = models.StatusCancelled
	a.CancelledAt = &at
	r.appts[id] = a
	r.writes++
	return nil
}

func (r *memoryRepo) PersistCompletion(_ context.Context, id string, asOf time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.persistErr != nil {
		return r.persistErr
	}
	a, ok := r.appts[id]
	if !ok {
		return appointmentRepo.ErrNotFound
	}
	completed, err := Complete(a, asOf)
	if err != nil {
		return appointmentRepo.ErrNotScheduled
	}
	r.appts[id] = completed
	r.writes++
	return nil
}

// FetchDueForCompletion is deliberately loose: it returns every scheduled
// appointment plus staleDue, leaving the due check to the service.
func (r *memoryRepo) FetchDueForCompletion(_ context.Context, _ time.Time) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	var out []models.Appointment
	for _, a := range r.appts {
		if a.Status == models.StatusScheduled {
			out = append(out, a)
		}
	}
	out = append(out, r.staleDue...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepo) EnsureIndexes() error { return nil }

func (r *memoryRepo) status(id string) models.AppointmentStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appts[id].Status
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.InvalidationEvent
	err    error
}

func (n *recordingNotifier) NotifyInvalidate(_ context.Context, ev models.InvalidationEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}
