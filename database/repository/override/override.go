// File: database/repository/override/override.go
package overrideRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"servicehub/database"
	"servicehub/models"
)

var ErrNotFound = errors.New("manual override not found")

// OverrideRepository stores provider-set slot disables.
type OverrideRepository interface {
	FetchManualOverrides(ctx context.Context, providerID string, from, to time.Time) ([]models.ManualOverride, error)
	Create(ctx context.Context, o *models.ManualOverride) error
	Delete(ctx context.Context, providerID, id string) (*models.ManualOverride, error)
	EnsureIndexes() error
}

type mongoOverrideRepo struct {
	coll *mongo.Collection
}

func NewMongoOverrideRepo() OverrideRepository {
	return &mongoOverrideRepo{
		coll: database.Database().Collection("manual_overrides"),
	}
}

// FetchManualOverrides returns overrides whose date falls in [from, to).
// Dates are stored as "2006-01-02" strings so lexical range queries work.
func (r *mongoOverrideRepo) FetchManualOverrides(ctx context.Context, providerID string, from, to time.Time) ([]models.ManualOverride, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"providerId": providerID,
		"date": bson.M{
			"$gte": from.Format(models.DateLayout),
			"$lt":  to.Format(models.DateLayout),
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query manual overrides for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	var overrides []models.ManualOverride
	if err := cursor.All(ctx, &overrides); err != nil {
		return nil, fmt.Errorf("failed to decode manual overrides: %w", err)
	}
	return overrides, nil
}

func (r *mongoOverrideRepo) Create(ctx context.Context, o *models.ManualOverride) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	o.CreatedAt = time.Now()

	if _, err := r.coll.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("failed to create manual override: %w", err)
	}
	return nil
}

// Delete removes the override and returns it so callers can invalidate its date.
func (r *mongoOverrideRepo) Delete(ctx context.Context, providerID, id string) (*models.ManualOverride, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var removed models.ManualOverride
	err := r.coll.FindOneAndDelete(ctx, bson.M{"id": id, "providerId": providerID}).Decode(&removed)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete manual override %s: %w", id, err)
	}
	return &removed, nil
}

// EnsureIndexes creates the necessary indexes on the manual_overrides collection.
func (r *mongoOverrideRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "providerId", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
			Options: options.Index().SetName("provider_date_time_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create manual override indexes: %w", err)
	}
	return nil
}
