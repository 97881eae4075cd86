package app

import (
	"context"
	"time"

	"campus_rentals/internal/domain"
	"campus_rentals/internal/search"
)

type FavoriteService struct {
	favs  domain.FavoriteRepository
	props domain.PropertyRepository
	now   func() time.Time
}

func NewFavoriteService(f domain.FavoriteRepository, p domain.PropertyRepository) *FavoriteService {
	return &FavoriteService{favs: f, props: p, now: time.Now}
}

// Toggle flips the favorite state and returns the new one.
func (s *FavoriteService) Toggle(ctx context.Context, userID, propertyID string) (bool, error) {
	fav, err := s.favs.IsFavorite(ctx, userID, propertyID)
	if err != nil {
		return false, err
	}
	if fav {
		return false, s.favs.RemoveFavorite(ctx, userID, propertyID)
	}
	if _, err := s.props.GetProperty(ctx, propertyID); err != nil {
		return false, err
	}
	return true, s.favs.AddFavorite(ctx, domain.Favorite{UserID: userID, PropertyID: propertyID, CreatedAt: s.now().UTC()})
}

// Properties returns the user's favorited listings that are still active.
func (s *FavoriteService) Properties(ctx context.Context, userID string) ([]domain.Property, error) {
	favs, err := s.favs.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(favs) == 0 {
		return []domain.Property{}, nil
	}
	ids := make([]string, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.PropertyID)
	}
	all, err := s.props.ListProperties(ctx, domain.PropertyQuery{})
	if err != nil {
		return nil, err
	}
	return search.Filter(all, search.FilterSpec{OnlyIDs: ids}, search.IDPredicate), nil
}
