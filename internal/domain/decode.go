package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Saved-search filter documents were historically written piecemeal by
// different clients, so the same field shows up under several spellings and
// with numbers encoded as strings. Decoding is lenient per field and strict
// only about the overall shape.

var filterAliases = map[string][]string{
	"propertyType": {"propertyType", "propertyTypes", "type", "types"},
	"priceRange":   {"priceRange", "price"},
	"bedrooms":     {"bedrooms", "beds"},
	"bathrooms":    {"bathrooms", "baths"},
	"amenities":    {"amenities"},
	"location":     {"location", "searchQuery", "q"},
	"distance":     {"distance", "maxDistance"},
}

// DecodeSearchFilters builds SearchFilters from a loosely-typed document.
// A nil document decodes to empty filters.
func DecodeSearchFilters(raw any) (SearchFilters, error) {
	var f SearchFilters
	if raw == nil {
		return f, nil
	}
	m, ok := asMap(raw)
	if !ok {
		return f, fmt.Errorf("%w: filters is %T, want object", ErrMalformed, raw)
	}

	f.PropertyTypes = stringsAt(m, filterAliases["propertyType"]...)
	f.Bedrooms = intsAt(m, filterAliases["bedrooms"]...)
	f.Bathrooms = intsAt(m, filterAliases["bathrooms"]...)
	f.Amenities = stringsAt(m, filterAliases["amenities"]...)

	// nested {min,max} wins over the flat minPrice/maxPrice keys
	var lo, hi any = m["minPrice"], m["maxPrice"]
	if pr, ok := lookupAny(m, filterAliases["priceRange"]...).(map[string]any); ok {
		lo, hi = pr["min"], pr["max"]
	}
	f.PriceRange = priceRangeOf(lo, hi)

	var err error
	if f.Bedrooms == nil {
		if f.Bedrooms, err = countRange(m["minBedrooms"], m["maxBedrooms"]); err != nil {
			return SearchFilters{}, err
		}
	}
	if f.Bathrooms == nil {
		if f.Bathrooms, err = countRange(m["minBathrooms"], m["maxBathrooms"]); err != nil {
			return SearchFilters{}, err
		}
	}
	if s, ok := lookupAny(m, filterAliases["location"]...).(string); ok && strings.TrimSpace(s) != "" {
		loc := strings.TrimSpace(s)
		f.Location = &loc
	}
	if d, ok := floatOf(lookupAny(m, filterAliases["distance"]...)); ok {
		f.Distance = &d
	}
	return f, nil
}

// MaxRoomCount caps an open-ended min/max room filter when it is expanded
// into exact counts.
const MaxRoomCount = 10

func priceRangeOf(lo, hi any) *PriceRange {
	var r PriceRange
	if v, ok := floatOf(lo); ok {
		r.Min = &v
	}
	if v, ok := floatOf(hi); ok {
		r.Max = &v
	}
	if r.Min == nil && r.Max == nil {
		return nil
	}
	return &r
}

// countRange expands a min/max room filter into the exact counts it admits.
// A missing bound is open: 0 below, MaxRoomCount above.
func countRange(lo, hi any) ([]int, error) {
	minV, hasLo := floatOf(lo)
	maxV, hasHi := floatOf(hi)
	if !hasLo && !hasHi {
		return nil, nil
	}
	from, to := 0, MaxRoomCount
	if hasLo && minV > 0 {
		from = int(math.Ceil(minV))
	}
	if hasHi {
		to = int(math.Floor(maxV))
	}
	if to < from {
		return nil, fmt.Errorf("%w: room range %v..%v admits nothing", ErrMalformed, lo, hi)
	}
	out := make([]int, 0, to-from+1)
	for n := from; n <= to; n++ {
		out = append(out, n)
	}
	return out, nil
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out, true
	}
	return nil, false
}

// lookupAny returns the first present value among keys.
func lookupAny(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			if mm, ok := asMap(v); ok {
				return mm
			}
			return v
		}
	}
	return nil
}

// floatOf accepts float64/int/int32/int64/string like "8,5".
func floatOf(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", "."))
		if s == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// toSlice accepts a scalar or any slice type the JSON and BSON decoders produce.
func toSlice(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []int:
		out := make([]any, len(t))
		for i, n := range t {
			out[i] = n
		}
		return out
	default:
		return []any{t}
	}
}

func stringsAt(m map[string]any, keys ...string) []string {
	var out []string
	for _, it := range toSlice(lookupAny(m, keys...)) {
		if s, ok := it.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func intsAt(m map[string]any, keys ...string) []int {
	var out []int
	for _, it := range toSlice(lookupAny(m, keys...)) {
		if f, ok := floatOf(it); ok && f >= 0 {
			out = append(out, int(f))
		}
	}
	return out
}
