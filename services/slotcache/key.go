package slotcache

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"servicehub/models"
)

const keyPrefix = "slots"

// Key identifies one cached generation pass. Entries are owned per provider
// so a calendar change can bust every listing of that provider at once.
type Key struct {
	ProviderID string
	ListingID  string
	From       time.Time
	To         time.Time
	Duration   int
	Recurrence string
}

// KeyFor builds the key for already normalized params.
func KeyFor(params models.GenerateParams, window models.DateRange) Key {
	return Key{
		ProviderID: params.ProviderID,
		ListingID:  params.ListingID,
		From:       window.Start,
		To:         window.End,
		Duration:   params.ServiceDuration,
		Recurrence: params.Recurrence,
	}
}

func (k Key) Range() models.DateRange {
	return models.DateRange{Start: k.From, End: k.To}
}

// String renders slots|<provider>|<listing>|<from>|<to>|<duration>|<recurrence>
// with RFC 3339 instants so the range survives the round trip.
func (k Key) String() string {
	return strings.Join([]string{
		keyPrefix,
		url.QueryEscape(k.ProviderID),
		url.QueryEscape(k.ListingID),
		k.From.Format(time.RFC3339),
		k.To.Format(time.RFC3339),
		strconv.Itoa(k.Duration),
		url.QueryEscape(k.Recurrence),
	}, "|")
}

func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 7 || parts[0] != keyPrefix {
		return Key{}, fmt.Errorf("malformed slot cache key %q", s)
	}

	var k Key
	var err error
	if k.ProviderID, err = url.QueryUnescape(parts[1]); err != nil {
		return Key{}, fmt.Errorf("slot cache key provider: %w", err)
	}
	if k.ListingID, err = url.QueryUnescape(parts[2]); err != nil {
		return Key{}, fmt.Errorf("slot cache key listing: %w", err)
	}
	if k.From, err = time.Parse(time.RFC3339, parts[3]); err != nil {
		return Key{}, fmt.Errorf("slot cache key from: %w", err)
	}
	if k.To, err = time.Parse(time.RFC3339, parts[4]); err != nil {
		return Key{}, fmt.Errorf("slot cache key to: %w", err)
	}
	if k.Duration, err = strconv.Atoi(parts[5]); err != nil {
		return Key{}, fmt.Errorf("slot cache key duration: %w", err)
	}
	if k.Recurrence, err = url.QueryUnescape(parts[6]); err != nil {
		return Key{}, fmt.Errorf("slot cache key recurrence: %w", err)
	}
	return k, nil
}

func providerIndexKey(providerID string) string {
	return keyPrefix + ":idx:" + url.QueryEscape(providerID)
}
