package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"campus_rentals/internal/domain"
)

type InquiryService struct {
	repo  domain.InquiryRepository
	props domain.PropertyRepository
	now   func() time.Time
}

func NewInquiryService(r domain.InquiryRepository, p domain.PropertyRepository) *InquiryService {
	return &InquiryService{repo: r, props: p, now: time.Now}
}

type InquiryInput struct {
	PropertyID string  `json:"propertyId"`
	Message    string  `json:"message"`
	Phone      *string `json:"phone,omitempty"`
}

// Send opens a pending inquiry from tenant to the listing's landlord.
func (s *InquiryService) Send(ctx context.Context, tenant domain.UserContact, in InquiryInput) (domain.Inquiry, error) {
	p, err := s.props.GetProperty(ctx, in.PropertyID)
	if err != nil {
		return domain.Inquiry{}, err
	}
	if p.LandlordID == tenant.ID {
		return domain.Inquiry{}, fmt.Errorf("%w: cannot inquire about your own listing", domain.ErrInvalid)
	}
	name := strings.TrimSpace(tenant.DisplayName)
	if name == "" {
		name = tenant.Email
	}
	now := s.now().UTC()
	q := domain.Inquiry{
		ID:            uuid.NewString(),
		PropertyID:    p.ID,
		PropertyTitle: p.Title,
		LandlordID:    p.LandlordID,
		TenantID:      tenant.ID,
		TenantName:    name,
		TenantEmail:   tenant.Email,
		TenantPhone:   in.Phone,
		Message:       strings.TrimSpace(in.Message),
		Status:        domain.InquiryPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := q.Validate(); err != nil {
		return domain.Inquiry{}, err
	}
	if err := s.repo.CreateInquiry(ctx, q); err != nil {
		return domain.Inquiry{}, fmt.Errorf("create inquiry: %w", err)
	}
	return q, nil
}

func (s *InquiryService) ListForTenant(ctx context.Context, tenantID string) ([]domain.Inquiry, error) {
	return s.repo.ListInquiriesByTenant(ctx, tenantID)
}

func (s *InquiryService) ListForLandlord(ctx context.Context, landlordID string, st domain.InquiryStatus) ([]domain.Inquiry, error) {
	if st != "" && !st.Valid() {
		return nil, fmt.Errorf("%w: unknown inquiry status %q", domain.ErrInvalid, st)
	}
	return s.repo.ListInquiriesByLandlord(ctx, landlordID, st)
}

// Get returns an inquiry to either of its two parties.
func (s *InquiryService) Get(ctx context.Context, userID, id string) (domain.Inquiry, error) {
	q, err := s.repo.GetInquiry(ctx, id)
	if err != nil {
		return domain.Inquiry{}, err
	}
	if q.TenantID != userID && q.LandlordID != userID {
		return domain.Inquiry{}, fmt.Errorf("%w: inquiry %s", domain.ErrForbidden, id)
	}
	return q, nil
}

func (s *InquiryService) landlords(ctx context.Context, landlordID, id string) (domain.Inquiry, error) {
	q, err := s.repo.GetInquiry(ctx, id)
	if err != nil {
		return domain.Inquiry{}, err
	}
	if q.LandlordID != landlordID {
		return domain.Inquiry{}, fmt.Errorf("%w: inquiry %s is for another landlord's property", domain.ErrForbidden, id)
	}
	return q, nil
}

// Respond records the landlord's answer and marks the inquiry responded.
func (s *InquiryService) Respond(ctx context.Context, landlordID, id, response string) (domain.Inquiry, error) {
	q, err := s.landlords(ctx, landlordID, id)
	if err != nil {
		return domain.Inquiry{}, err
	}
	if q.Status.Closed() {
		return domain.Inquiry{}, fmt.Errorf("%w: inquiry %s is %s", domain.ErrInvalid, id, q.Status)
	}
	response = strings.TrimSpace(response)
	if response == "" {
		return domain.Inquiry{}, fmt.Errorf("%w: response is required", domain.ErrInvalid)
	}
	now := s.now().UTC()
	q.Response, q.ResponseAt = &response, &now
	q.Status, q.UpdatedAt = domain.InquiryResponded, now
	if err := s.repo.UpdateInquiry(ctx, q); err != nil {
		return domain.Inquiry{}, err
	}
	return q, nil
}

// SetStatus lets the landlord move an open inquiry to any status but
// cancelled, which only the tenant may choose.
func (s *InquiryService) SetStatus(ctx context.Context, landlordID, id string, st domain.InquiryStatus) error {
	if !st.Valid() || st == domain.InquiryCancelled {
		return fmt.Errorf("%w: cannot set inquiry status %q", domain.ErrInvalid, st)
	}
	q, err := s.landlords(ctx, landlordID, id)
	if err != nil {
		return err
	}
	if q.Status == domain.InquiryCancelled {
		return fmt.Errorf("%w: inquiry %s was cancelled by the tenant", domain.ErrInvalid, id)
	}
	q.Status, q.UpdatedAt = st, s.now().UTC()
	return s.repo.UpdateInquiry(ctx, q)
}

// Cancel withdraws the tenant's own inquiry unless it is already decided.
func (s *InquiryService) Cancel(ctx context.Context, tenantID, id string) error {
	q, err := s.repo.GetInquiry(ctx, id)
	if err != nil {
		return err
	}
	if q.TenantID != tenantID {
		return fmt.Errorf("%w: inquiry %s belongs to another user", domain.ErrForbidden, id)
	}
	if q.Status.Closed() {
		return fmt.Errorf("%w: inquiry %s is %s", domain.ErrInvalid, id, q.Status)
	}
	q.Status, q.UpdatedAt = domain.InquiryCancelled, s.now().UTC()
	return s.repo.UpdateInquiry(ctx, q)
}

func (s *InquiryService) Stats(ctx context.Context, landlordID string) (domain.InquiryStats, error) {
	qs, err := s.repo.ListInquiriesByLandlord(ctx, landlordID, "")
	if err != nil {
		return domain.InquiryStats{}, err
	}
	return domain.StatsOf(qs), nil
}
