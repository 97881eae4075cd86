package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"campus_rentals/internal/domain"
)

type MessageService struct {
	repo  domain.MessageRepository
	props domain.PropertyRepository
	now   func() time.Time
}

func NewMessageService(r domain.MessageRepository, p domain.PropertyRepository) *MessageService {
	return &MessageService{repo: r, props: p, now: time.Now}
}

type MessageInput struct {
	PropertyID string `json:"propertyId"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

// Send delivers a message about a listing. One side of every thread is the
// listing's landlord.
func (s *MessageService) Send(ctx context.Context, senderID string, in MessageInput) (domain.Message, error) {
	p, err := s.props.GetProperty(ctx, in.PropertyID)
	if err != nil {
		return domain.Message{}, err
	}
	m := domain.Message{
		ID:         uuid.NewString(),
		PropertyID: p.ID,
		SenderID:   senderID,
		ReceiverID: strings.TrimSpace(in.ReceiverID),
		Content:    strings.TrimSpace(in.Content),
		CreatedAt:  s.now().UTC(),
	}
	if err := m.Validate(); err != nil {
		return domain.Message{}, err
	}
	if m.ReceiverID == "" {
		return domain.Message{}, fmt.Errorf("%w: receiverId is required", domain.ErrInvalid)
	}
	if p.LandlordID != senderID && p.LandlordID != m.ReceiverID {
		return domain.Message{}, fmt.Errorf("%w: messages about %s go to or from its landlord", domain.ErrForbidden, p.ID)
	}
	if err := s.repo.CreateMessage(ctx, m); err != nil {
		return domain.Message{}, fmt.Errorf("create message: %w", err)
	}
	return m, nil
}

// Thread returns the caller's exchange with other about one listing.
func (s *MessageService) Thread(ctx context.Context, userID, propertyID, other string) ([]domain.Message, error) {
	if other == "" {
		return nil, fmt.Errorf("%w: with is required", domain.ErrInvalid)
	}
	return s.repo.ListConversation(ctx, propertyID, userID, other)
}

// Conversations groups the caller's messages into threads, most recent
// activity first.
func (s *MessageService) Conversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	ms, err := s.repo.ListMessagesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := []domain.Conversation{}
	idx := map[[2]string]int{}
	for _, m := range ms {
		other := m.ReceiverID
		if other == userID {
			other = m.SenderID
		}
		k := [2]string{m.PropertyID, other}
		i, ok := idx[k]
		if !ok {
			// ms is newest first, so the first message seen is the latest
			i = len(out)
			idx[k] = i
			out = append(out, domain.Conversation{PropertyID: m.PropertyID, OtherUserID: other, Last: m})
		}
		if m.ReceiverID == userID && !m.Read {
			out[i].Unread++
		}
	}
	return out, nil
}

// MarkRead is allowed only for the message's receiver.
func (s *MessageService) MarkRead(ctx context.Context, userID, id string) error {
	m, err := s.repo.GetMessage(ctx, id)
	if err != nil {
		return err
	}
	if m.ReceiverID != userID {
		return fmt.Errorf("%w: message %s was not sent to you", domain.ErrForbidden, id)
	}
	return s.repo.MarkMessageRead(ctx, id)
}
