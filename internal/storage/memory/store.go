// Package memory is a process-local Store for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"campus_rentals/internal/domain"
)

type Store struct {
	mu       sync.RWMutex
	props    map[string]domain.Property
	searches map[string]domain.SavedSearch
	users    map[string]domain.UserContact
	favs     map[[2]string]domain.Favorite
	viewings map[string]domain.Viewing
	reviews  map[string]domain.Review
	inqs     map[string]domain.Inquiry
	msgs     map[string]domain.Message
	msgOrder []string // insertion order breaks timestamp ties
}

var _ domain.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		props:    map[string]domain.Property{},
		searches: map[string]domain.SavedSearch{},
		users:    map[string]domain.UserContact{},
		favs:     map[[2]string]domain.Favorite{},
		viewings: map[string]domain.Viewing{},
		reviews:  map[string]domain.Review{},
		inqs:     map[string]domain.Inquiry{},
		msgs:     map[string]domain.Message{},
	}
}

func (s *Store) Close(ctx context.Context) error { return nil }

func (s *Store) CreateProperty(ctx context.Context, p domain.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.props[p.ID] = p
	return nil
}

func (s *Store) UpdateProperty(ctx context.Context, p domain.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.props[p.ID]
	if !ok || cur.DeletedAt != nil {
		return domain.ErrNotFound
	}
	p.CreatedAt, p.DeletedAt = cur.CreatedAt, nil
	s.props[p.ID] = p
	return nil
}

func (s *Store) SoftDeleteProperty(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.props[id]
	if !ok || cur.DeletedAt != nil {
		return domain.ErrNotFound
	}
	cur.DeletedAt = &at
	s.props[id] = cur
	return nil
}

func (s *Store) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.props[id]
	if !ok || p.DeletedAt != nil {
		return domain.Property{}, domain.ErrNotFound
	}
	return p, nil
}

// ListProperties returns matches newest first, like the database stores.
func (s *Store) ListProperties(ctx context.Context, q domain.PropertyQuery) ([]domain.Property, error) {
	s.mu.RLock()
	out := []domain.Property{}
	for _, p := range s.props {
		if p.DeletedAt == nil && matches(q, p) {
			out = append(out, p)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) ListRecentProperties(ctx context.Context, q domain.PropertyQuery) ([]domain.Property, error) {
	return s.ListProperties(ctx, q)
}

func matches(q domain.PropertyQuery, p domain.Property) bool {
	switch {
	case len(q.Types) > 0 && !contains(q.Types, p.PropertyType):
		return false
	case q.PriceMin != nil && p.Price < *q.PriceMin:
		return false
	case q.PriceMax != nil && p.Price > *q.PriceMax:
		return false
	case len(q.Bedrooms) > 0 && !contains(q.Bedrooms, p.Bedrooms):
		return false
	case len(q.Bathrooms) > 0 && !contains(q.Bathrooms, p.Bathrooms):
		return false
	case q.MaxDistance != nil && p.Distance > *q.MaxDistance:
		return false
	case q.LandlordID != nil && p.LandlordID != *q.LandlordID:
		return false
	}
	return true
}

func contains[T comparable](xs []T, x T) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func (s *Store) CreateSavedSearch(ctx context.Context, ss domain.SavedSearch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches[ss.ID] = ss
	return nil
}

func (s *Store) UpdateSavedSearch(ctx context.Context, ss domain.SavedSearch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.searches[ss.ID]
	if !ok {
		return domain.ErrNotFound
	}
	ss.LastNotified, ss.CreatedAt = cur.LastNotified, cur.CreatedAt
	s.searches[ss.ID] = ss
	return nil
}

func (s *Store) DeleteSavedSearch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.searches, id)
	return nil
}

func (s *Store) GetSavedSearch(ctx context.Context, id string) (domain.SavedSearch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ss, ok := s.searches[id]
	if !ok {
		return domain.SavedSearch{}, domain.ErrNotFound
	}
	return ss, nil
}

func (s *Store) ListSavedSearches(ctx context.Context, userID string) ([]domain.SavedSearch, error) {
	out := s.searchesWhere(func(ss domain.SavedSearch) bool { return ss.UserID == userID })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListActiveSavedSearches(ctx context.Context) ([]domain.SavedSearch, error) {
	out := s.searchesWhere(func(ss domain.SavedSearch) bool { return ss.EmailNotifications })
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) searchesWhere(keep func(domain.SavedSearch) bool) []domain.SavedSearch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.SavedSearch{}
	for _, ss := range s.searches {
		if keep(ss) {
			out = append(out, ss)
		}
	}
	return out
}

func (s *Store) SetLastNotified(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.searches[id]
	if !ok {
		return domain.ErrNotFound
	}
	ss.LastNotified = &at
	s.searches[id] = ss
	return nil
}

func (s *Store) UpsertUser(ctx context.Context, u domain.UserContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *Store) GetUserContact(ctx context.Context, id string) (domain.UserContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.UserContact{}, domain.ErrNotFound
	}
	return u, nil
}

func (s *Store) AddFavorite(ctx context.Context, f domain.Favorite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := [2]string{f.UserID, f.PropertyID}
	if _, ok := s.favs[k]; !ok {
		s.favs[k] = f
	}
	return nil
}

func (s *Store) RemoveFavorite(ctx context.Context, userID, propertyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.favs, [2]string{userID, propertyID})
	return nil
}

func (s *Store) IsFavorite(ctx context.Context, userID, propertyID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.favs[[2]string{userID, propertyID}]
	return ok, nil
}

func (s *Store) ListFavorites(ctx context.Context, userID string) ([]domain.Favorite, error) {
	s.mu.RLock()
	out := []domain.Favorite{}
	for _, f := range s.favs {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateViewing(ctx context.Context, v domain.Viewing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewings[v.ID] = v
	return nil
}

func (s *Store) GetViewing(ctx context.Context, id string) (domain.Viewing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.viewings[id]
	if !ok {
		return domain.Viewing{}, domain.ErrNotFound
	}
	return v, nil
}

func (s *Store) ListViewingsByUser(ctx context.Context, userID string) ([]domain.Viewing, error) {
	return s.viewingsWhere(func(v domain.Viewing) bool { return v.UserID == userID }), nil
}

func (s *Store) ListViewingsByLandlord(ctx context.Context, landlordID string) ([]domain.Viewing, error) {
	return s.viewingsWhere(func(v domain.Viewing) bool { return v.LandlordID == landlordID }), nil
}

func (s *Store) viewingsWhere(keep func(domain.Viewing) bool) []domain.Viewing {
	s.mu.RLock()
	out := []domain.Viewing{}
	for _, v := range s.viewings {
		if keep(v) {
			out = append(out, v)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Store) SetViewingStatus(ctx context.Context, id string, st domain.ViewingStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.viewings[id]
	if !ok {
		return domain.ErrNotFound
	}
	v.Status, v.UpdatedAt = st, at
	s.viewings[id] = v
	return nil
}
