package app_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"campus_rentals/internal/app"
	"campus_rentals/internal/domain"
	"campus_rentals/internal/search"
)

func seedCatalog() *memStore {
	st := newMemStore()
	st.props = []domain.Property{
		{ID: "p1", Title: "Studio", PropertyType: "studio", Price: 25000, Bedrooms: 1, LandlordID: "l1"},
		{ID: "p2", Title: "Flat A", PropertyType: "apartment", Price: 40000, Bedrooms: 2, LandlordID: "l1"},
		{ID: "p3", Title: "Flat B", PropertyType: "apartment", Price: 44000, Bedrooms: 2, LandlordID: "l2"},
		{ID: "p4", Title: "Flat C", PropertyType: "apartment", Price: 70000, Bedrooms: 2, LandlordID: "l2"},
		{ID: "p5", Title: "Flat D", PropertyType: "apartment", Price: 36000, Bedrooms: 2, LandlordID: "l2"},
	}
	return st
}

func TestSearch_CacheMissThenHit(t *testing.T) {
	st := seedCatalog()
	q := app.NewSearchService(st, &jsonCache{}, 10*time.Minute)
	spec := search.FilterSpec{PropertyTypes: []string{"apartment"}, PriceMax: ptr(50000.0)}

	out, err := q.Search(context.Background(), spec)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !reflect.DeepEqual(propIDs(out), []string{"p2", "p3", "p5"}) {
		t.Fatalf("unexpected: %v", propIDs(out))
	}

	// Hit (served from cache)
	out2, _ := q.Search(context.Background(), spec)
	if st.propsCalls != 1 || !reflect.DeepEqual(propIDs(out2), propIDs(out)) {
		t.Fatalf("expected cached result, store calls=%d", st.propsCalls)
	}
}

func TestSearch_ListingWriteInvalidatesCache(t *testing.T) {
	st := seedCatalog()
	cache := &jsonCache{}
	q := app.NewSearchService(st, cache, 10*time.Minute)
	l := app.NewListingService(st, cache)
	spec := search.FilterSpec{PropertyTypes: []string{"house"}}

	if out, _ := q.Search(context.Background(), spec); len(out) != 0 {
		t.Fatalf("expected empty, got %v", propIDs(out))
	}
	if _, err := l.Create(context.Background(), "l1", domain.Property{Title: "Cottage", PropertyType: "house", Price: 50000}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if out, _ := q.Search(context.Background(), spec); len(out) != 1 {
		t.Fatalf("new listing should be visible, got %v", propIDs(out))
	}
}

func TestSearch_NoCache(t *testing.T) {
	q := app.NewSearchService(seedCatalog(), nil, 0)
	out, err := q.Search(context.Background(), search.FilterSpec{Bedrooms: []int{1}})
	if err != nil || !reflect.DeepEqual(propIDs(out), []string{"p1"}) {
		t.Fatalf("unexpected: %v %v", propIDs(out), err)
	}
}

func TestGetProperty_CacheMissThenHit(t *testing.T) {
	st := seedCatalog()
	q := app.NewSearchService(st, &jsonCache{}, 10*time.Minute)

	p, err := q.GetProperty(context.Background(), "p2")
	if err != nil || p.Title != "Flat A" {
		t.Fatalf("unexpected: %+v %v", p, err)
	}

	// Mutate repo to ensure second read indeed comes from cache
	st.props[1].Title = "SHOULD NOT SEE THIS"
	p, _ = q.GetProperty(context.Background(), "p2")
	if p.Title != "Flat A" {
		t.Fatalf("expected cached title, got %s", p.Title)
	}

	if _, err := q.GetProperty(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSimilar(t *testing.T) {
	q := app.NewSearchService(seedCatalog(), nil, 0)
	out, err := q.Similar(context.Background(), "p2", 0)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	// 70000 is outside +-20% of 40000
	if !reflect.DeepEqual(propIDs(out), []string{"p3", "p5"}) {
		t.Fatalf("unexpected: %v", propIDs(out))
	}
	out, _ = q.Similar(context.Background(), "p2", 1)
	if len(out) != 1 {
		t.Fatalf("limit not applied: %v", propIDs(out))
	}
}

func TestCompare(t *testing.T) {
	q := app.NewSearchService(seedCatalog(), nil, 0)
	out, err := q.Compare(context.Background(), []string{"p4", "p1"})
	if err != nil || !reflect.DeepEqual(propIDs(out), []string{"p1", "p4"}) {
		t.Fatalf("unexpected: %v %v", propIDs(out), err)
	}
	if _, err := q.Compare(context.Background(), []string{"p1", "p2", "p3", "p4", "p5"}); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if _, err := q.Compare(context.Background(), nil); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}
