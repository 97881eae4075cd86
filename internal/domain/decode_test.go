package domain_test

import (
	"errors"
	"reflect"
	"testing"

	"campus_rentals/internal/domain"
)

func TestDecodeSearchFilters_CanonicalShape(t *testing.T) {
	raw := map[string]any{
		"propertyType": []any{"apartment", "studio"},
		"priceRange":   map[string]any{"min": 30000.0, "max": 50000.0},
		"bedrooms":     []any{1.0, 2.0},
		"bathrooms":    []any{1.0},
		"amenities":    []any{"wifi"},
		"location":     " Downtown ",
		"distance":     2.5,
	}
	f, err := domain.DecodeSearchFilters(raw)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !reflect.DeepEqual(f.PropertyTypes, []string{"apartment", "studio"}) {
		t.Fatalf("types: %v", f.PropertyTypes)
	}
	if f.PriceRange == nil || *f.PriceRange.Min != 30000 || *f.PriceRange.Max != 50000 {
		t.Fatalf("price: %+v", f.PriceRange)
	}
	if !reflect.DeepEqual(f.Bedrooms, []int{1, 2}) || !reflect.DeepEqual(f.Bathrooms, []int{1}) {
		t.Fatalf("rooms: %v %v", f.Bedrooms, f.Bathrooms)
	}
	if f.Location == nil || *f.Location != "Downtown" {
		t.Fatalf("location: %v", f.Location)
	}
	if f.Distance == nil || *f.Distance != 2.5 {
		t.Fatalf("distance: %v", f.Distance)
	}
}

func TestDecodeSearchFilters_LenientScalars(t *testing.T) {
	raw := map[string]any{
		"type":     "house",
		"beds":     "3",
		"price":    map[string]any{"min": "1000,5"},
		"distance": "",
	}
	f, err := domain.DecodeSearchFilters(raw)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !reflect.DeepEqual(f.PropertyTypes, []string{"house"}) || !reflect.DeepEqual(f.Bedrooms, []int{3}) {
		t.Fatalf("unexpected: %+v", f)
	}
	if f.PriceRange == nil || *f.PriceRange.Min != 1000.5 || f.PriceRange.Max != nil {
		t.Fatalf("a lone min must leave max open: %+v", f.PriceRange)
	}
	if f.Distance != nil {
		t.Fatalf("empty distance should be absent")
	}
}

func TestDecodeSearchFilters_DialogShape(t *testing.T) {
	// the shape the web app's save-search dialog writes
	raw := map[string]any{
		"minPrice":      200.0,
		"maxPrice":      500.0,
		"minBedrooms":   1.0,
		"maxBedrooms":   3.0,
		"minBathrooms":  2.0,
		"propertyTypes": []any{"studio"},
		"amenities":     []any{"wifi"},
		"maxDistance":   1.5,
	}
	f, err := domain.DecodeSearchFilters(raw)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if f.PriceRange == nil || *f.PriceRange.Min != 200 || *f.PriceRange.Max != 500 {
		t.Fatalf("price: %+v", f.PriceRange)
	}
	if !reflect.DeepEqual(f.Bedrooms, []int{1, 2, 3}) {
		t.Fatalf("bedrooms: %v", f.Bedrooms)
	}
	if len(f.Bathrooms) != domain.MaxRoomCount-1 || f.Bathrooms[0] != 2 {
		t.Fatalf("open-ended bathrooms: %v", f.Bathrooms)
	}
	if !reflect.DeepEqual(f.PropertyTypes, []string{"studio"}) || *f.Distance != 1.5 {
		t.Fatalf("unexpected: %+v", f)
	}
}

func TestDecodeSearchFilters_OpenPriceBounds(t *testing.T) {
	f, err := domain.DecodeSearchFilters(map[string]any{"maxPrice": "500"})
	if err != nil {
		t.Fatal(err)
	}
	if f.PriceRange == nil || f.PriceRange.Min != nil || *f.PriceRange.Max != 500 {
		t.Fatalf("max only: %+v", f.PriceRange)
	}
	f, _ = domain.DecodeSearchFilters(map[string]any{"priceRange": map[string]any{"min": 1000.0}})
	if f.PriceRange == nil || *f.PriceRange.Min != 1000 || f.PriceRange.Max != nil {
		t.Fatalf("min only: %+v", f.PriceRange)
	}
}

func TestDecodeSearchFilters_InvertedRoomRange(t *testing.T) {
	_, err := domain.DecodeSearchFilters(map[string]any{"minBedrooms": 4.0, "maxBedrooms": 2.0})
	if !errors.Is(err, domain.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestDecodeSearchFilters_Malformed(t *testing.T) {
	if _, err := domain.DecodeSearchFilters("apartment"); !errors.Is(err, domain.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	f, err := domain.DecodeSearchFilters(nil)
	if err != nil || !reflect.DeepEqual(f, domain.SearchFilters{}) {
		t.Fatalf("nil filters should decode empty, got %+v %v", f, err)
	}
}

func TestSavedSearchValidate(t *testing.T) {
	ok := domain.SavedSearch{Name: "cheap", NotificationFrequency: domain.FrequencyDaily}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	bad := ok
	bad.NotificationFrequency = "hourly"
	if err := bad.Validate(); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	bad = ok
	lo, hi := 10.0, 5.0
	bad.Filters.PriceRange = &domain.PriceRange{Min: &lo, Max: &hi}
	if err := bad.Validate(); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for inverted range, got %v", err)
	}
}

func TestPropertyValidate(t *testing.T) {
	p := domain.Property{Title: "t", PropertyType: domain.TypeStudio}
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	p.Bedrooms = -1
	if err := p.Validate(); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}
