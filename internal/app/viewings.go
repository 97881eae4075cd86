package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"campus_rentals/internal/domain"
)

type ViewingService struct {
	repo  domain.ViewingRepository
	props domain.PropertyRepository
	now   func() time.Time
}

func NewViewingService(r domain.ViewingRepository, p domain.PropertyRepository) *ViewingService {
	return &ViewingService{repo: r, props: p, now: time.Now}
}

type ViewingRequest struct {
	PropertyID string  `json:"propertyId"`
	Date       string  `json:"date"`
	Time       string  `json:"time"`
	Notes      *string `json:"notes,omitempty"`
}

// Schedule records a pending viewing request from user.
func (s *ViewingService) Schedule(ctx context.Context, user domain.UserContact, req ViewingRequest) (domain.Viewing, error) {
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return domain.Viewing{}, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalid)
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		return domain.Viewing{}, fmt.Errorf("%w: time must be HH:MM", domain.ErrInvalid)
	}
	p, err := s.props.GetProperty(ctx, req.PropertyID)
	if err != nil {
		return domain.Viewing{}, err
	}
	name := strings.TrimSpace(user.DisplayName)
	if name == "" {
		name = user.Email
	}
	now := s.now().UTC()
	v := domain.Viewing{
		ID:            uuid.NewString(),
		PropertyID:    p.ID,
		PropertyTitle: p.Title,
		LandlordID:    p.LandlordID,
		UserID:        user.ID,
		UserEmail:     user.Email,
		UserName:      name,
		Date:          req.Date,
		Time:          req.Time,
		Notes:         req.Notes,
		Status:        domain.ViewingPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.CreateViewing(ctx, v); err != nil {
		return domain.Viewing{}, fmt.Errorf("create viewing: %w", err)
	}
	return v, nil
}

func (s *ViewingService) ListForUser(ctx context.Context, userID string) ([]domain.Viewing, error) {
	return s.repo.ListViewingsByUser(ctx, userID)
}

func (s *ViewingService) ListForLandlord(ctx context.Context, landlordID string) ([]domain.Viewing, error) {
	return s.repo.ListViewingsByLandlord(ctx, landlordID)
}

// SetStatus lets the listing's landlord confirm or cancel a request.
func (s *ViewingService) SetStatus(ctx context.Context, landlordID, id string, st domain.ViewingStatus) error {
	if !st.Valid() {
		return fmt.Errorf("%w: unknown viewing status %q", domain.ErrInvalid, st)
	}
	v, err := s.repo.GetViewing(ctx, id)
	if err != nil {
		return err
	}
	if v.LandlordID != landlordID {
		return fmt.Errorf("%w: viewing %s is for another landlord's property", domain.ErrForbidden, id)
	}
	return s.repo.SetViewingStatus(ctx, id, st, s.now().UTC())
}

// Cancel lets the requesting tenant withdraw their own request.
func (s *ViewingService) Cancel(ctx context.Context, userID, id string) error {
	v, err := s.repo.GetViewing(ctx, id)
	if err != nil {
		return err
	}
	if v.UserID != userID {
		return fmt.Errorf("%w: viewing %s belongs to another user", domain.ErrForbidden, id)
	}
	return s.repo.SetViewingStatus(ctx, id, domain.ViewingCancelled, s.now().UTC())
}
