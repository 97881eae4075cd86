package httpserver

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"campus_rentals/internal/domain"
	"campus_rentals/internal/search"
)

// parseFilterSpec reads the property search query string. Absent or empty
// parameters impose no constraint; unparseable numbers are rejected.
func parseFilterSpec(v url.Values) (search.FilterSpec, error) {
	var f search.FilterSpec
	var err error

	if q := strings.TrimSpace(v.Get("q")); q != "" {
		f.SearchQuery = &q
	}
	if f.PriceMin, err = floatParam(v, "minPrice"); err != nil {
		return f, err
	}
	if f.PriceMax, err = floatParam(v, "maxPrice"); err != nil {
		return f, err
	}
	if f.MaxDistance, err = floatParam(v, "maxDistance"); err != nil {
		return f, err
	}
	if f.Bedrooms, err = intsParam(v, "bedrooms"); err != nil {
		return f, err
	}
	if f.Bathrooms, err = intsParam(v, "bathrooms"); err != nil {
		return f, err
	}
	f.PropertyTypes = listParam(v, "type")
	f.Amenities = listParam(v, "amenities")
	f.ExcludeIDs = listParam(v, "exclude")
	f.OnlyIDs = listParam(v, "ids")
	return f, nil
}

func floatParam(v url.Values, k string) (*float64, error) {
	s := strings.TrimSpace(v.Get(k))
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalid, k)
	}
	return &n, nil
}

func intsParam(v url.Values, k string) ([]int, error) {
	var out []int
	for _, s := range listParam(v, k) {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %s must be a list of non-negative integers", domain.ErrInvalid, k)
		}
		out = append(out, n)
	}
	return out, nil
}

// listParam accepts both repeated keys and comma-separated values.
func listParam(v url.Values, k string) []string {
	var out []string
	for _, raw := range v[k] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
