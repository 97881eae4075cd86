package httpserver

import (
	"errors"
	"net/url"
	"reflect"
	"testing"

	"campus_rentals/internal/domain"
)

func TestParseFilterSpec(t *testing.T) {
	v, _ := url.ParseQuery("q=+down+&minPrice=100&maxPrice=900.5&bedrooms=1,2&bedrooms=3&type=studio&amenities=wifi,parking&exclude=p1")
	f, err := parseFilterSpec(v)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if *f.SearchQuery != "down" || *f.PriceMin != 100 || *f.PriceMax != 900.5 {
		t.Fatalf("scalars: %+v", f)
	}
	if !reflect.DeepEqual(f.Bedrooms, []int{1, 2, 3}) || !reflect.DeepEqual(f.Amenities, []string{"wifi", "parking"}) {
		t.Fatalf("lists: %+v", f)
	}
	if f.MaxDistance != nil || f.Bathrooms != nil || f.OnlyIDs != nil {
		t.Fatalf("absent params must stay absent: %+v", f)
	}
}

func TestParseFilterSpec_Rejects(t *testing.T) {
	for _, q := range []string{"minPrice=cheap", "maxDistance=-1", "bedrooms=two"} {
		v, _ := url.ParseQuery(q)
		if _, err := parseFilterSpec(v); !errors.Is(err, domain.ErrInvalid) {
			t.Fatalf("%s: expected ErrInvalid, got %v", q, err)
		}
	}
}
