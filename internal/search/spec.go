package search

import "campus_rentals/internal/domain"

// FromSavedSearch resolves a saved search's stored filters into a FilterSpec.
// The stored location string is matched the way the search box is.
func FromSavedSearch(f domain.SearchFilters) FilterSpec {
	spec := FilterSpec{
		Bedrooms:      f.Bedrooms,
		Bathrooms:     f.Bathrooms,
		PropertyTypes: f.PropertyTypes,
		Amenities:     f.Amenities,
		SearchQuery:   f.Location,
		MaxDistance:   f.Distance,
	}
	if pr := f.PriceRange; pr != nil {
		if pr.Min != nil {
			lo := *pr.Min
			spec.PriceMin = &lo
		}
		if pr.Max != nil {
			hi := *pr.Max
			spec.PriceMax = &hi
		}
	}
	return spec
}

// SimilarTo matches listings of the same type and bedroom count priced within
// 20% of p, excluding p itself.
func SimilarTo(p domain.Property) FilterSpec {
	lo, hi := p.Price*0.8, p.Price*1.2
	return FilterSpec{
		PropertyTypes: []string{p.PropertyType},
		PriceMin:      &lo,
		PriceMax:      &hi,
		Bedrooms:      []int{p.Bedrooms},
		ExcludeIDs:    []string{p.ID},
	}
}
