package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"campus_rentals/internal/domain"
	"campus_rentals/internal/search"
)

const (
	catalogGenKey  = "properties:gen"
	maxCompare     = 4
	DefaultSimilar = 3
)

type SearchService struct {
	repo     domain.PropertyRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewSearchService(r domain.PropertyRepository, c domain.Cache, ttl time.Duration) *SearchService {
	return &SearchService{repo: r, cache: c, cacheTTL: ttl}
}

// Search runs an interactive search: store pushdown first, then every
// predicate in memory. Results are cached per catalog generation.
func (s *SearchService) Search(ctx context.Context, spec search.FilterSpec) ([]domain.Property, error) {
	key := fmt.Sprintf("search:%d:%s", catalogGeneration(ctx, s.cache), specKey(spec))
	var out []domain.Property
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}

	props, err := s.repo.ListProperties(ctx, spec.Pushdown(search.AllPredicates, 0))
	if err != nil {
		return nil, err
	}
	out = search.Filter(props, spec, search.AllPredicates)

	// optional size guard
	if s.cache != nil {
		if b, _ := json.Marshal(out); len(b) < 1_000_000 {
			_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
		}
	}
	return out, nil
}

func (s *SearchService) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	key := propertyKey(id)
	var p domain.Property
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &p); ok {
			return p, nil
		}
	}
	p, err := s.repo.GetProperty(ctx, id)
	if err != nil {
		return domain.Property{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, p, int(s.cacheTTL.Seconds()))
	}
	return p, nil
}

// Similar returns up to n listings like id, never including id itself.
func (s *SearchService) Similar(ctx context.Context, id string, n int) ([]domain.Property, error) {
	p, err := s.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.Search(ctx, search.SimilarTo(p))
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = DefaultSimilar
	}
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// Compare returns the requested listings side by side, in catalog order.
func (s *SearchService) Compare(ctx context.Context, ids []string) ([]domain.Property, error) {
	if len(ids) == 0 || len(ids) > maxCompare {
		return nil, fmt.Errorf("%w: compare takes 1 to %d properties", domain.ErrInvalid, maxCompare)
	}
	return s.Search(ctx, search.FilterSpec{OnlyIDs: ids})
}

func propertyKey(id string) string { return "property:" + id }

// specKey hashes the filter once; equal specs share a cache entry.
func specKey(spec search.FilterSpec) string {
	b, err := json.Marshal(spec)
	if err != nil {
		return "nocache"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}

func catalogGeneration(ctx context.Context, c domain.Cache) int64 {
	if c == nil {
		return 0
	}
	var gen int64
	_, _ = c.Get(ctx, catalogGenKey, &gen)
	return gen
}

// invalidateCatalog retires every cached search result and the cached copy
// of one listing.
func invalidateCatalog(ctx context.Context, c domain.Cache, id string) {
	if c == nil {
		return
	}
	_ = c.Set(ctx, catalogGenKey, time.Now().UnixNano(), 0)
	_ = c.Del(ctx, propertyKey(id))
}
