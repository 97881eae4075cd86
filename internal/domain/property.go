package domain

import (
	"fmt"
	"time"
)

const (
	TypeApartment = "apartment"
	TypeHouse     = "house"
	TypeStudio    = "studio"
	TypeTownhouse = "townhouse"
	TypeOther     = "other"
)

var PropertyTypes = []string{TypeApartment, TypeHouse, TypeStudio, TypeTownhouse, TypeOther}

type Property struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Price         float64         `json:"price"` // monthly
	Location      string          `json:"location"`
	PropertyType  string          `json:"propertyType"`
	Bedrooms      int             `json:"bedrooms"`
	Bathrooms     int             `json:"bathrooms"`
	Area          float64         `json:"area"`
	Distance      float64         `json:"distance"` // from campus
	Amenities     map[string]bool `json:"amenities"`
	Images        []string        `json:"images"`
	AvailableFrom *string         `json:"availableFrom,omitempty"`
	LeaseTerm     *string         `json:"leaseTerm,omitempty"`
	Deposit       *float64        `json:"deposit,omitempty"`
	LandlordID    string          `json:"landlordId"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	DeletedAt     *time.Time      `json:"-"`
}

func KnownPropertyType(t string) bool {
	for _, k := range PropertyTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Validate checks the invariants a landlord-submitted listing must hold.
func (p Property) Validate() error {
	switch {
	case p.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalid)
	case p.Price < 0:
		return fmt.Errorf("%w: price must be non-negative", ErrInvalid)
	case p.Bedrooms < 0 || p.Bathrooms < 0:
		return fmt.Errorf("%w: bedroom and bathroom counts must be non-negative", ErrInvalid)
	case p.Area < 0:
		return fmt.Errorf("%w: area must be non-negative", ErrInvalid)
	case p.Distance < 0:
		return fmt.Errorf("%w: distance must be non-negative", ErrInvalid)
	case p.Deposit != nil && *p.Deposit < 0:
		return fmt.Errorf("%w: deposit must be non-negative", ErrInvalid)
	case !KnownPropertyType(p.PropertyType):
		return fmt.Errorf("%w: unknown property type %q", ErrInvalid, p.PropertyType)
	}
	return nil
}

// PropertyQuery is what a catalog read can push down to the store.
// Zero values impose no constraint; Limit 0 means unbounded.
type PropertyQuery struct {
	Types       []string
	PriceMin    *float64
	PriceMax    *float64
	Bedrooms    []int
	Bathrooms   []int
	MaxDistance *float64
	LandlordID  *string
	Limit       int
}
