// File: database/repository/appointment/crud.go
package appointmentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"servicehub/models"
)

func (r *mongoAppointmentRepo) Create(ctx context.Context, appt *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	if appt.Status == "" {
		appt.Status = models.StatusScheduled
	}
	now := time.Now()
	appt.CreatedAt = now
	appt.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, appt); err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *mongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var appt models.Appointment
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&appt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load appointment %s: %w", id, err)
	}
	return &appt, nil
}

// PersistCancellation flips a scheduled appointment to cancelled. It never
// touches an appointment in a terminal state.
func (r *mongoAppointmentRepo) PersistCancellation(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.StatusScheduled}
	update := bson.M{"$set": bson.M{
		"status":      models.StatusCancelled,
		"cancelledAt": at,
		"updatedAt":   time.Now(),
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to cancel appointment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return r.missOrTerminal(ctx, id)
	}
	return nil
}

func (r *mongoAppointmentRepo) PersistCompletion(ctx context.Context, id string, asOf time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.StatusScheduled, "end": bson.M{"$lte": asOf}}
	update := bson.M{"$set": bson.M{
		"status":      models.StatusCompleted,
		"completedAt": asOf,
		"updatedAt":   time.Now(),
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to complete appointment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return r.missOrTerminal(ctx, id)
	}
	return nil
}

func (r *mongoAppointmentRepo) missOrTerminal(ctx context.Context, id string) error {
	n, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to look up appointment %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrNotScheduled
}
