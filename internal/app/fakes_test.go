package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"campus_rentals/internal/domain"
	"campus_rentals/internal/storage/memory"
)

// ---- fakes ----

type memStore struct {
	// reviews, inquiries and messages
	*memory.Store

	mu       sync.Mutex
	props    []domain.Property
	searches map[string]domain.SavedSearch
	users    map[string]domain.UserContact
	favs     map[string]domain.Favorite
	viewings map[string]domain.Viewing

	listErr    error
	userErr    map[string]error
	setErr     error
	setCalls   []string
	propsCalls int
}

func newMemStore() *memStore {
	return &memStore{
		Store:    memory.New(),
		searches: map[string]domain.SavedSearch{},
		users:    map[string]domain.UserContact{},
		favs:     map[string]domain.Favorite{},
		viewings: map[string]domain.Viewing{},
		userErr:  map[string]error{},
	}
}

func (m *memStore) CreateProperty(ctx context.Context, p domain.Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.props = append(m.props, p)
	return nil
}

func (m *memStore) UpdateProperty(ctx context.Context, p domain.Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.props {
		if m.props[i].ID == p.ID {
			m.props[i] = p
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memStore) SoftDeleteProperty(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.props {
		if m.props[i].ID == id {
			m.props[i].DeletedAt = &at
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memStore) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.props {
		if p.ID == id && p.DeletedAt == nil {
			return p, nil
		}
	}
	return domain.Property{}, domain.ErrNotFound
}

func (m *memStore) ListProperties(ctx context.Context, q domain.PropertyQuery) ([]domain.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.propsCalls++
	var out []domain.Property
	for _, p := range m.props {
		if p.DeletedAt == nil && queryMatches(q, p) {
			out = append(out, p)
		}
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *memStore) ListRecentProperties(ctx context.Context, q domain.PropertyQuery) ([]domain.Property, error) {
	lim := q.Limit
	q.Limit = 0
	all, err := m.ListProperties(ctx, q)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if lim > 0 && len(all) > lim {
		all = all[:lim]
	}
	return all, nil
}

func queryMatches(q domain.PropertyQuery, p domain.Property) bool {
	if len(q.Types) > 0 && !contains(q.Types, p.PropertyType) {
		return false
	}
	if q.PriceMin != nil && p.Price < *q.PriceMin || q.PriceMax != nil && p.Price > *q.PriceMax {
		return false
	}
	if len(q.Bedrooms) > 0 && !contains(q.Bedrooms, p.Bedrooms) {
		return false
	}
	if len(q.Bathrooms) > 0 && !contains(q.Bathrooms, p.Bathrooms) {
		return false
	}
	if q.MaxDistance != nil && p.Distance > *q.MaxDistance {
		return false
	}
	if q.LandlordID != nil && p.LandlordID != *q.LandlordID {
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

func (m *memStore) CreateSavedSearch(ctx context.Context, s domain.SavedSearch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches[s.ID] = s
	return nil
}

func (m *memStore) UpdateSavedSearch(ctx context.Context, s domain.SavedSearch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.searches[s.ID]
	if !ok {
		return domain.ErrNotFound
	}
	s.LastNotified = cur.LastNotified
	m.searches[s.ID] = s
	return nil
}

func (m *memStore) DeleteSavedSearch(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.searches, id)
	return nil
}

func (m *memStore) GetSavedSearch(ctx context.Context, id string) (domain.SavedSearch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.searches[id]
	if !ok {
		return domain.SavedSearch{}, domain.ErrNotFound
	}
	return s, nil
}

func (m *memStore) ListSavedSearches(ctx context.Context, userID string) ([]domain.SavedSearch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.SavedSearch
	for _, s := range m.searches {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) ListActiveSavedSearches(ctx context.Context) ([]domain.SavedSearch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.SavedSearch
	for _, s := range m.searches {
		if s.EmailNotifications {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) SetLastNotified(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls = append(m.setCalls, id)
	if m.setErr != nil {
		return m.setErr
	}
	s, ok := m.searches[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.LastNotified = &at
	m.searches[id] = s
	return nil
}

func (m *memStore) UpsertUser(ctx context.Context, u domain.UserContact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *memStore) GetUserContact(ctx context.Context, id string) (domain.UserContact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.userErr[id]; err != nil {
		return domain.UserContact{}, err
	}
	u, ok := m.users[id]
	if !ok {
		return domain.UserContact{}, domain.ErrNotFound
	}
	return u, nil
}

func favKey(userID, propertyID string) string { return userID + "/" + propertyID }

func (m *memStore) AddFavorite(ctx context.Context, f domain.Favorite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.favs[favKey(f.UserID, f.PropertyID)] = f
	return nil
}

func (m *memStore) RemoveFavorite(ctx context.Context, userID, propertyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.favs, favKey(userID, propertyID))
	return nil
}

func (m *memStore) IsFavorite(ctx context.Context, userID, propertyID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.favs[favKey(userID, propertyID)]
	return ok, nil
}

func (m *memStore) ListFavorites(ctx context.Context, userID string) ([]domain.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Favorite
	for _, f := range m.favs {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memStore) CreateViewing(ctx context.Context, v domain.Viewing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewings[v.ID] = v
	return nil
}

func (m *memStore) GetViewing(ctx context.Context, id string) (domain.Viewing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.viewings[id]
	if !ok {
		return domain.Viewing{}, domain.ErrNotFound
	}
	return v, nil
}

func (m *memStore) ListViewingsByUser(ctx context.Context, userID string) ([]domain.Viewing, error) {
	return m.viewingsWhere(func(v domain.Viewing) bool { return v.UserID == userID }), nil
}

func (m *memStore) ListViewingsByLandlord(ctx context.Context, landlordID string) ([]domain.Viewing, error) {
	return m.viewingsWhere(func(v domain.Viewing) bool { return v.LandlordID == landlordID }), nil
}

func (m *memStore) viewingsWhere(keep func(domain.Viewing) bool) []domain.Viewing {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Viewing
	for _, v := range m.viewings {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func (m *memStore) SetViewingStatus(ctx context.Context, id string, st domain.ViewingStatus, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.viewings[id]
	if !ok {
		return domain.ErrNotFound
	}
	v.Status, v.UpdatedAt = st, at
	m.viewings[id] = v
	return nil
}

func (m *memStore) Close(ctx context.Context) error { return nil }

var _ domain.Store = (*memStore)(nil)

// jsonCache round-trips values through JSON like the Redis cache does.
type jsonCache struct {
	store map[string][]byte
}

func (c *jsonCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *jsonCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *jsonCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

type sentDigest struct {
	To       string
	SearchID string
	IDs      []string
}

type fakeMailer struct {
	mu     sync.Mutex
	sent   []sentDigest
	failTo map[string]bool
	hook   func()
}

var errSMTP = errors.New("smtp: 451 try again later")

func (f *fakeMailer) SendDigest(ctx context.Context, d domain.Digest) error {
	if f.hook != nil {
		f.hook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTo[d.To.Email] {
		return errSMTP
	}
	ids := make([]string, 0, len(d.Properties))
	for _, p := range d.Properties {
		ids = append(ids, p.ID)
	}
	f.sent = append(f.sent, sentDigest{To: d.To.Email, SearchID: d.SearchID, IDs: ids})
	return nil
}

func ptr[T any](v T) *T { return &v }

func propIDs(ps []domain.Property) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}
