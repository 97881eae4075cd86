package domain

import (
	"fmt"
	"strings"
	"time"
)

type Frequency string

const (
	FrequencyInstant Frequency = "instant"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyInstant, FrequencyDaily, FrequencyWeekly:
		return true
	}
	return false
}

// PriceRange bounds are inclusive; a nil bound is open.
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

type SearchFilters struct {
	PropertyTypes []string    `json:"propertyType,omitempty"`
	PriceRange    *PriceRange `json:"priceRange,omitempty"`
	Bedrooms      []int       `json:"bedrooms,omitempty"`
	Bathrooms     []int       `json:"bathrooms,omitempty"`
	Amenities     []string    `json:"amenities,omitempty"`
	Location      *string     `json:"location,omitempty"`
	Distance      *float64    `json:"distance,omitempty"`
}

type SavedSearch struct {
	ID                    string        `json:"id"`
	UserID                string        `json:"userId"`
	Name                  string        `json:"name"`
	Filters               SearchFilters `json:"filters"`
	EmailNotifications    bool          `json:"emailNotifications"`
	NotificationFrequency Frequency     `json:"notificationFrequency"`
	LastNotified          *time.Time    `json:"lastNotified,omitempty"`
	CreatedAt             time.Time     `json:"createdAt"`
	UpdatedAt             time.Time     `json:"updatedAt"`
}

func (s SavedSearch) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if !s.NotificationFrequency.Valid() {
		return fmt.Errorf("%w: unknown notification frequency %q", ErrInvalid, s.NotificationFrequency)
	}
	if pr := s.Filters.PriceRange; pr != nil {
		if (pr.Min != nil && *pr.Min < 0) || (pr.Max != nil && *pr.Max < 0) ||
			(pr.Min != nil && pr.Max != nil && *pr.Max < *pr.Min) {
			return fmt.Errorf("%w: price range must satisfy 0 <= min <= max", ErrInvalid)
		}
	}
	return nil
}

// Digest is the per-search notification payload; built and consumed within
// one batch invocation.
type Digest struct {
	To         UserContact
	SearchID   string
	SearchName string
	Properties []Property
	// RunAt identifies the batch invocation that produced the digest.
	RunAt time.Time
}
