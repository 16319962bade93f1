package models

import "time"

// ManualOverride disables slots for a provider independent of bookings.
// An empty Time disables the whole Date; an empty ListingID applies to every listing.
type ManualOverride struct {
	ID         string    `bson:"id" json:"id"`
	ProviderID string    `bson:"providerId" json:"providerId"`
	ListingID  string    `bson:"listingId,omitempty" json:"listingId,omitempty"`
	Date       string    `bson:"date" json:"date" binding:"required"` // e.g. "2025-01-08"
	Time       string    `bson:"time,omitempty" json:"time,omitempty"` // e.g. "14:00"
	Reason     string    `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}
