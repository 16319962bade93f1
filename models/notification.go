package models

import "time"

// InvalidationEvent tells slot caches that a provider's calendar changed inside Range.
type InvalidationEvent struct {
	ProviderID string    `json:"providerId"`
	ListingID  string    `json:"listingId,omitempty"`
	Range      DateRange `json:"range"`
	Reason     string    `json:"reason"`
	EmittedAt  time.Time `json:"emittedAt"`
}

// SweepTaskPayload is the queued completion sweep. A zero AsOf means "when the task runs".
type SweepTaskPayload struct {
	AsOf time.Time `json:"asOf,omitzero"`
}
