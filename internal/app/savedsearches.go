package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"campus_rentals/internal/domain"
)

type SavedSearchService struct {
	repo domain.SavedSearchRepository
	now  func() time.Time
}

func NewSavedSearchService(r domain.SavedSearchRepository) *SavedSearchService {
	return &SavedSearchService{repo: r, now: time.Now}
}

func (s *SavedSearchService) Save(ctx context.Context, userID string, in domain.SavedSearch) (domain.SavedSearch, error) {
	now := s.now().UTC()
	in.ID = uuid.NewString()
	in.UserID = userID
	in.LastNotified = nil
	in.CreatedAt, in.UpdatedAt = now, now
	if in.NotificationFrequency == "" {
		in.NotificationFrequency = domain.FrequencyDaily
	}
	if err := in.Validate(); err != nil {
		return domain.SavedSearch{}, err
	}
	if err := s.repo.CreateSavedSearch(ctx, in); err != nil {
		return domain.SavedSearch{}, fmt.Errorf("create saved search: %w", err)
	}
	return in, nil
}

// Update replaces the user-editable fields. The notification watermark is
// owned by the batch and is never written here.
func (s *SavedSearchService) Update(ctx context.Context, userID, id string, in domain.SavedSearch) (domain.SavedSearch, error) {
	cur, err := s.Get(ctx, userID, id)
	if err != nil {
		return domain.SavedSearch{}, err
	}
	in.ID, in.UserID, in.CreatedAt, in.LastNotified = cur.ID, cur.UserID, cur.CreatedAt, cur.LastNotified
	in.UpdatedAt = s.now().UTC()
	if in.NotificationFrequency == "" {
		in.NotificationFrequency = cur.NotificationFrequency
	}
	if err := in.Validate(); err != nil {
		return domain.SavedSearch{}, err
	}
	if err := s.repo.UpdateSavedSearch(ctx, in); err != nil {
		return domain.SavedSearch{}, fmt.Errorf("update saved search %s: %w", id, err)
	}
	return in, nil
}

func (s *SavedSearchService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.DeleteSavedSearch(ctx, id)
}

func (s *SavedSearchService) Get(ctx context.Context, userID, id string) (domain.SavedSearch, error) {
	cur, err := s.repo.GetSavedSearch(ctx, id)
	if err != nil {
		return domain.SavedSearch{}, err
	}
	if cur.UserID != userID {
		return domain.SavedSearch{}, fmt.Errorf("%w: saved search %s belongs to another user", domain.ErrForbidden, id)
	}
	return cur, nil
}

// ListForUser returns the user's saved searches, newest first.
func (s *SavedSearchService) ListForUser(ctx context.Context, userID string) ([]domain.SavedSearch, error) {
	return s.repo.ListSavedSearches(ctx, userID)
}
