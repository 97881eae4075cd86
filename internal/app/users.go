package app

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"campus_rentals/internal/domain"
)

type UserService struct{ repo domain.UserRepository }

func NewUserService(r domain.UserRepository) *UserService { return &UserService{repo: r} }

// UpsertProfile stores the contact details digests are sent to.
func (s *UserService) UpsertProfile(ctx context.Context, u domain.UserContact) (domain.UserContact, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(u.Email))
	if err != nil {
		return domain.UserContact{}, fmt.Errorf("%w: invalid email", domain.ErrInvalid)
	}
	u.Email = addr.Address
	u.DisplayName = strings.TrimSpace(u.DisplayName)
	if err := s.repo.UpsertUser(ctx, u); err != nil {
		return domain.UserContact{}, fmt.Errorf("upsert user %s: %w", u.ID, err)
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (domain.UserContact, error) {
	return s.repo.GetUserContact(ctx, id)
}
