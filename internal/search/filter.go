// Package search implements listing filtering shared by interactive search
// and the saved-search digest batch.
package search

import (
	"strings"

	"campus_rentals/internal/domain"
)

// FilterSpec enumerates every recognized filter option. A nil pointer or an
// empty slice imposes no constraint.
type FilterSpec struct {
	PriceMin      *float64
	PriceMax      *float64
	Bedrooms      []int // exact match against any listed count
	Bathrooms     []int
	PropertyTypes []string // case-sensitive
	MaxDistance   *float64 // inclusive
	ExcludeIDs    []string
	OnlyIDs       []string
	SearchQuery   *string // title, location or description, case-insensitive
	Amenities     []string
}

// PredicateSet selects which groups of predicates a caller applies.
type PredicateSet uint16

const (
	PricePredicate PredicateSet = 1 << iota
	BedroomsPredicate
	BathroomsPredicate
	TypePredicate
	DistancePredicate
	IDPredicate
	TextPredicate
	AmenityPredicate
)

const (
	AllPredicates = PricePredicate | BedroomsPredicate | BathroomsPredicate | TypePredicate |
		DistancePredicate | IDPredicate | TextPredicate | AmenityPredicate

	// DigestPredicates is the subset applied when re-running saved searches
	// for email digests: range and set-membership only.
	DigestPredicates = PricePredicate | BedroomsPredicate | BathroomsPredicate | TypePredicate
)

func (s PredicateSet) has(p PredicateSet) bool { return s&p != 0 }

type predicate func(p *domain.Property) bool

// predicates returns the active predicates in evaluation order.
func (f FilterSpec) predicates(active PredicateSet) []predicate {
	var ps []predicate

	if active.has(PricePredicate) {
		if f.PriceMin != nil {
			lo := *f.PriceMin
			ps = append(ps, func(p *domain.Property) bool { return p.Price >= lo })
		}
		if f.PriceMax != nil {
			hi := *f.PriceMax
			ps = append(ps, func(p *domain.Property) bool { return p.Price <= hi })
		}
	}
	if active.has(BedroomsPredicate) && len(f.Bedrooms) > 0 {
		set := intSet(f.Bedrooms)
		ps = append(ps, func(p *domain.Property) bool { _, ok := set[p.Bedrooms]; return ok })
	}
	if active.has(BathroomsPredicate) && len(f.Bathrooms) > 0 {
		set := intSet(f.Bathrooms)
		ps = append(ps, func(p *domain.Property) bool { _, ok := set[p.Bathrooms]; return ok })
	}
	if active.has(TypePredicate) && len(f.PropertyTypes) > 0 {
		set := stringSet(f.PropertyTypes)
		ps = append(ps, func(p *domain.Property) bool { _, ok := set[p.PropertyType]; return ok })
	}
	if active.has(DistancePredicate) && f.MaxDistance != nil {
		maxD := *f.MaxDistance
		ps = append(ps, func(p *domain.Property) bool { return p.Distance <= maxD })
	}
	if active.has(IDPredicate) {
		if len(f.ExcludeIDs) > 0 {
			set := stringSet(f.ExcludeIDs)
			ps = append(ps, func(p *domain.Property) bool { _, ok := set[p.ID]; return !ok })
		}
		if len(f.OnlyIDs) > 0 {
			set := stringSet(f.OnlyIDs)
			ps = append(ps, func(p *domain.Property) bool { _, ok := set[p.ID]; return ok })
		}
	}
	if active.has(TextPredicate) && f.SearchQuery != nil && *f.SearchQuery != "" {
		q := strings.ToLower(*f.SearchQuery)
		ps = append(ps, func(p *domain.Property) bool {
			return strings.Contains(strings.ToLower(p.Title), q) ||
				strings.Contains(strings.ToLower(p.Location), q) ||
				strings.Contains(strings.ToLower(p.Description), q)
		})
	}
	if active.has(AmenityPredicate) && len(f.Amenities) > 0 {
		want := append([]string(nil), f.Amenities...)
		ps = append(ps, func(p *domain.Property) bool {
			for _, a := range want {
				if !p.Amenities[a] {
					return false
				}
			}
			return true
		})
	}
	return ps
}

// Filter returns the properties that satisfy every active predicate of f, in
// their original order. The input slice is not modified.
func Filter(props []domain.Property, f FilterSpec, active PredicateSet) []domain.Property {
	ps := f.predicates(active)
	out := make([]domain.Property, 0, len(props))
next:
	for i := range props {
		for _, keep := range ps {
			if !keep(&props[i]) {
				continue next
			}
		}
		out = append(out, props[i])
	}
	return out
}

// Pushdown converts the store-friendly part of f into a catalog query.
// Predicates outside active are left out.
func (f FilterSpec) Pushdown(active PredicateSet, limit int) domain.PropertyQuery {
	q := domain.PropertyQuery{Limit: limit}
	if active.has(PricePredicate) {
		q.PriceMin, q.PriceMax = f.PriceMin, f.PriceMax
	}
	if active.has(BedroomsPredicate) {
		q.Bedrooms = f.Bedrooms
	}
	if active.has(BathroomsPredicate) {
		q.Bathrooms = f.Bathrooms
	}
	if active.has(TypePredicate) {
		q.Types = f.PropertyTypes
	}
	if active.has(DistancePredicate) {
		q.MaxDistance = f.MaxDistance
	}
	return q
}

func intSet(xs []int) map[int]struct{} {
	m := make(map[int]struct{}, len(xs))
	for _, x := range xs {
		m[x] = struct{}{}
	}
	return m
}

func stringSet(xs []string) map[string]struct{} {
	m := make(map[string]struct{}, len(xs))
	for _, x := range xs {
		m[x] = struct{}{}
	}
	return m
}
