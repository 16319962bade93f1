// File: database/repository/appointment/queries.go
package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"servicehub/models"
)

var oneOff = bson.A{"", models.RecurrenceNone, nil}

// FetchReservations returns the provider's live appointments that can occupy
// time in [from, to): one-off appointments overlapping the range and every
// recurring template anchored before `to` whose series has not ended.
func (r *mongoAppointmentRepo) FetchReservations(ctx context.Context, providerID string, from, to time.Time) ([]models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	y, m, d := from.Date()
	fromDay := time.Date(y, m, d, 0, 0, 0, 0, from.Location())

	filter := bson.M{
		"providerId": providerID,
		"status":     bson.M{"$ne": models.StatusCancelled},
		"$or": bson.A{
			bson.M{
				"recurrence": bson.M{"$in": oneOff},
				"start":      bson.M{"$lt": to},
				"end":        bson.M{"$gt": from},
			},
			bson.M{
				"recurrence": bson.M{"$nin": oneOff},
				"start":      bson.M{"$lt": to},
				"$or": bson.A{
					bson.M{"recurrenceUntil": nil},
					bson.M{"recurrenceUntil": bson.M{"$gte": fromDay}},
				},
			},
		},
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode reservations for provider %s: %w", providerID, err)
	}

	reservations := make([]models.Reservation, 0, len(appts))
	for _, a := range appts {
		reservations = append(reservations, a.Reservation())
	}
	return reservations, nil
}

// FetchDueForCompletion returns one-off scheduled appointments whose end is
// at or before asOf, oldest first. Recurring templates are series and are
// never due.
func (r *mongoAppointmentRepo) FetchDueForCompletion(ctx context.Context, asOf time.Time) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	filter := bson.M{
		"status":     models.StatusScheduled,
		"end":        bson.M{"$lte": asOf},
		"recurrence": bson.M{"$in": oneOff},
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "end", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find due appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var due []models.Appointment
	if err := cursor.All(ctx, &due); err != nil {
		return nil, fmt.Errorf("failed to decode due appointments: %w", err)
	}
	return due, nil
}
