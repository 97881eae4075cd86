package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"campus_rentals/internal/domain"
)

// ListingService handles landlord-side listing mutations.
type ListingService struct {
	repo  domain.PropertyRepository
	cache domain.Cache
	now   func() time.Time
}

func NewListingService(r domain.PropertyRepository, cache domain.Cache) *ListingService {
	return &ListingService{repo: r, cache: cache, now: time.Now}
}

func (s *ListingService) Create(ctx context.Context, landlordID string, p domain.Property) (domain.Property, error) {
	now := s.now().UTC()
	p.ID = uuid.NewString()
	p.LandlordID = landlordID
	p.CreatedAt, p.UpdatedAt, p.DeletedAt = now, now, nil
	if p.Amenities == nil {
		p.Amenities = map[string]bool{}
	}
	if err := p.Validate(); err != nil {
		return domain.Property{}, err
	}
	if err := s.repo.CreateProperty(ctx, p); err != nil {
		return domain.Property{}, fmt.Errorf("create property: %w", err)
	}
	invalidateCatalog(ctx, s.cache, p.ID)
	return p, nil
}

func (s *ListingService) Update(ctx context.Context, landlordID, id string, p domain.Property) (domain.Property, error) {
	cur, err := s.owned(ctx, landlordID, id)
	if err != nil {
		return domain.Property{}, err
	}
	p.ID, p.LandlordID, p.CreatedAt = cur.ID, cur.LandlordID, cur.CreatedAt
	p.UpdatedAt = s.now().UTC()
	if err := p.Validate(); err != nil {
		return domain.Property{}, err
	}
	if err := s.repo.UpdateProperty(ctx, p); err != nil {
		return domain.Property{}, fmt.Errorf("update property %s: %w", id, err)
	}
	invalidateCatalog(ctx, s.cache, id)
	return p, nil
}

// Delete removes the listing from the active catalog.
func (s *ListingService) Delete(ctx context.Context, landlordID, id string) error {
	if _, err := s.owned(ctx, landlordID, id); err != nil {
		return err
	}
	if err := s.repo.SoftDeleteProperty(ctx, id, s.now().UTC()); err != nil {
		return fmt.Errorf("delete property %s: %w", id, err)
	}
	invalidateCatalog(ctx, s.cache, id)
	return nil
}

func (s *ListingService) ListByLandlord(ctx context.Context, landlordID string) ([]domain.Property, error) {
	return s.repo.ListProperties(ctx, domain.PropertyQuery{LandlordID: &landlordID})
}

func (s *ListingService) owned(ctx context.Context, landlordID, id string) (domain.Property, error) {
	cur, err := s.repo.GetProperty(ctx, id)
	if err != nil {
		return domain.Property{}, err
	}
	if cur.LandlordID != landlordID {
		return domain.Property{}, fmt.Errorf("%w: property %s belongs to another landlord", domain.ErrForbidden, id)
	}
	return cur, nil
}
