// Command seed fills the appointments and manual_overrides collections with
// a week of demo data for one provider.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"servicehub/config"
	"servicehub/database"
	appointmentRepo "servicehub/database/repository/appointment"
	overrideRepo "servicehub/database/repository/override"
	"servicehub/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	providerID = "demo-provider"
	listingID  = "demo-listing"
)

func main() {
	config.LoadConfig()
	database.InitDB()
	db := database.Database()

	// Clear existing demo data.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	for _, name := range []string{"appointments", "manual_overrides"} {
		if _, err := db.Collection(name).DeleteMany(ctx, bson.M{"providerId": providerID}); err != nil {
			log.Fatalf("Failed to clear %s: %v", name, err)
		}
	}

	appts := appointmentRepo.NewMongoAppointmentRepo()
	overrides := overrideRepo.NewMongoOverrideRepo()
	if err := appts.EnsureIndexes(); err != nil {
		log.Fatalf("Failed to ensure appointment indexes: %v", err)
	}
	if err := overrides.EnsureIndexes(); err != nil {
		log.Fatalf("Failed to ensure override indexes: %v", err)
	}

	loc := config.AppConfig.Location()
	today := time.Now().In(loc)
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// One-off bookings: one random morning hour per day, yesterday through next week.
	count := 0
	for i := -1; i < 7; i++ {
		day := today.AddDate(0, 0, i)
		start := day.Add(time.Duration(8+rng.Intn(4)) * time.Hour)
		if err := appts.Create(ctx, demoAppointment(start, models.RecurrenceNone, nil)); err != nil {
			log.Fatalf("Failed to insert appointment: %v", err)
		}
		count++
	}

	// A weekly standing booking on today's weekday at 15:00, ending in a month.
	until := today.AddDate(0, 1, 0)
	if err := appts.Create(ctx, demoAppointment(today.Add(15*time.Hour), models.RecurrenceWeekly, &until)); err != nil {
		log.Fatalf("Failed to insert recurring appointment: %v", err)
	}
	count++

	// Block lunch tomorrow and the whole day after.
	blocks := []models.ManualOverride{
		{Date: today.AddDate(0, 0, 1).Format(models.DateLayout), Time: "12:00", Reason: "lunch"},
		{Date: today.AddDate(0, 0, 2).Format(models.DateLayout), Reason: "day off"},
	}
	for i := range blocks {
		blocks[i].ID = uuid.NewString()
		blocks[i].ProviderID = providerID
		blocks[i].ListingID = listingID
		blocks[i].CreatedAt = time.Now().UTC()
		if err := overrides.Create(ctx, &blocks[i]); err != nil {
			log.Fatalf("Failed to insert override: %v", err)
		}
	}

	fmt.Printf("Seeded %d appointments and %d overrides for %s\n", count, len(blocks), providerID)
}

func demoAppointment(start time.Time, rule models.RecurrenceKind, until *time.Time) *models.Appointment {
	now := time.Now().UTC()
	return &models.Appointment{
		ID:              uuid.NewString(),
		ProviderID:      providerID,
		ListingID:       listingID,
		UserID:          "demo-user",
		Start:           start.UTC(),
		End:             start.Add(time.Hour).UTC(),
		Status:          models.StatusScheduled,
		Recurrence:      string(rule),
		RecurrenceUntil: until,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
