// File: database/repository/appointment/interface.go
package appointmentRepo

import (
	"context"
	"errors"
	"time"

	"servicehub/database"
	"servicehub/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound     = errors.New("appointment not found")
	ErrNotScheduled = errors.New("appointment is no longer scheduled")
)

type AppointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	FetchReservations(ctx context.Context, providerID string, from, to time.Time) ([]models.Reservation, error)
	PersistCancellation(ctx context.Context, id string, at time.Time) error
	PersistCompletion(ctx context.Context, id string, asOf time.Time) error
	FetchDueForCompletion(ctx context.Context, asOf time.Time) ([]models.Appointment, error)
	EnsureIndexes() error
}

type mongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo constructs the MongoDB AppointmentRepository.
func NewMongoAppointmentRepo() AppointmentRepository {
	return &mongoAppointmentRepo{
		coll: database.Database().Collection("appointments"),
	}
}
