package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"campus_rentals/internal/domain"
)

type ReviewService struct {
	repo  domain.ReviewRepository
	props domain.PropertyRepository
	now   func() time.Time
}

func NewReviewService(r domain.ReviewRepository, p domain.PropertyRepository) *ReviewService {
	return &ReviewService{repo: r, props: p, now: time.Now}
}

type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type PropertyReviews struct {
	Items   []domain.Review      `json:"items"`
	Summary domain.ReviewSummary `json:"summary"`
}

func (s *ReviewService) List(ctx context.Context, propertyID string) (PropertyReviews, error) {
	if _, err := s.props.GetProperty(ctx, propertyID); err != nil {
		return PropertyReviews{}, err
	}
	rs, err := s.repo.ListReviews(ctx, propertyID)
	if err != nil {
		return PropertyReviews{}, err
	}
	return PropertyReviews{Items: rs, Summary: domain.Summarize(rs)}, nil
}

// Add posts a review by user; a landlord cannot review their own listing.
func (s *ReviewService) Add(ctx context.Context, user domain.UserContact, propertyID string, in ReviewInput) (domain.Review, error) {
	p, err := s.props.GetProperty(ctx, propertyID)
	if err != nil {
		return domain.Review{}, err
	}
	if p.LandlordID == user.ID {
		return domain.Review{}, fmt.Errorf("%w: landlords cannot review their own listing", domain.ErrForbidden)
	}
	name := strings.TrimSpace(user.DisplayName)
	if name == "" {
		name = "Anonymous"
	}
	now := s.now().UTC()
	r := domain.Review{
		ID:         uuid.NewString(),
		PropertyID: p.ID,
		UserID:     user.ID,
		UserName:   name,
		Rating:     in.Rating,
		Comment:    strings.TrimSpace(in.Comment),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := r.Validate(); err != nil {
		return domain.Review{}, err
	}
	if err := s.repo.CreateReview(ctx, r); err != nil {
		return domain.Review{}, fmt.Errorf("create review: %w", err)
	}
	return r, nil
}

// owned loads a review of propertyID written by userID.
func (s *ReviewService) owned(ctx context.Context, userID, propertyID, id string) (domain.Review, error) {
	r, err := s.repo.GetReview(ctx, id)
	if err != nil {
		return domain.Review{}, err
	}
	if r.PropertyID != propertyID {
		return domain.Review{}, domain.ErrNotFound
	}
	if r.UserID != userID {
		return domain.Review{}, fmt.Errorf("%w: review %s belongs to another user", domain.ErrForbidden, id)
	}
	return r, nil
}

func (s *ReviewService) Edit(ctx context.Context, userID, propertyID, id string, in ReviewInput) (domain.Review, error) {
	r, err := s.owned(ctx, userID, propertyID, id)
	if err != nil {
		return domain.Review{}, err
	}
	r.Rating, r.Comment, r.UpdatedAt = in.Rating, strings.TrimSpace(in.Comment), s.now().UTC()
	if err := r.Validate(); err != nil {
		return domain.Review{}, err
	}
	if err := s.repo.UpdateReview(ctx, r); err != nil {
		return domain.Review{}, err
	}
	return r, nil
}

func (s *ReviewService) Remove(ctx context.Context, userID, propertyID, id string) error {
	if _, err := s.owned(ctx, userID, propertyID, id); err != nil {
		return err
	}
	return s.repo.DeleteReview(ctx, id)
}
