package memory

import (
	"context"
	"slices"
	"sort"

	"campus_rentals/internal/domain"
)

func (s *Store) CreateReview(ctx context.Context, r domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews[r.ID] = r
	return nil
}

func (s *Store) UpdateReview(ctx context.Context, r domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.reviews[r.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Rating, cur.Comment, cur.UpdatedAt = r.Rating, r.Comment, r.UpdatedAt
	s.reviews[r.ID] = cur
	return nil
}

func (s *Store) DeleteReview(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.reviews, id)
	return nil
}

func (s *Store) GetReview(ctx context.Context, id string) (domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reviews[id]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	return r, nil
}

func (s *Store) ListReviews(ctx context.Context, propertyID string) ([]domain.Review, error) {
	s.mu.RLock()
	out := []domain.Review{}
	for _, r := range s.reviews {
		if r.PropertyID == propertyID {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CreateInquiry(ctx context.Context, q domain.Inquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inqs[q.ID] = q
	return nil
}

func (s *Store) GetInquiry(ctx context.Context, id string) (domain.Inquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.inqs[id]
	if !ok {
		return domain.Inquiry{}, domain.ErrNotFound
	}
	return q, nil
}

func (s *Store) ListInquiriesByTenant(ctx context.Context, tenantID string) ([]domain.Inquiry, error) {
	return s.inquiriesWhere(func(q domain.Inquiry) bool { return q.TenantID == tenantID }), nil
}

func (s *Store) ListInquiriesByLandlord(ctx context.Context, landlordID string, st domain.InquiryStatus) ([]domain.Inquiry, error) {
	return s.inquiriesWhere(func(q domain.Inquiry) bool {
		return q.LandlordID == landlordID && (st == "" || q.Status == st)
	}), nil
}

func (s *Store) inquiriesWhere(keep func(domain.Inquiry) bool) []domain.Inquiry {
	s.mu.RLock()
	out := []domain.Inquiry{}
	for _, q := range s.inqs {
		if keep(q) {
			out = append(out, q)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Store) UpdateInquiry(ctx context.Context, q domain.Inquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.inqs[q.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Status, cur.Response, cur.ResponseAt, cur.UpdatedAt = q.Status, q.Response, q.ResponseAt, q.UpdatedAt
	s.inqs[q.ID] = cur
	return nil
}

func (s *Store) CreateMessage(ctx context.Context, m domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.msgs[m.ID]; !ok {
		s.msgOrder = append(s.msgOrder, m.ID)
	}
	s.msgs[m.ID] = m
	return nil
}

func (s *Store) GetMessage(ctx context.Context, id string) (domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.msgs[id]
	if !ok {
		return domain.Message{}, domain.ErrNotFound
	}
	return m, nil
}

func (s *Store) ListConversation(ctx context.Context, propertyID, a, b string) ([]domain.Message, error) {
	out := s.messagesWhere(func(m domain.Message) bool {
		return m.PropertyID == propertyID &&
			((m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a))
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListMessagesForUser(ctx context.Context, userID string) ([]domain.Message, error) {
	out := s.messagesWhere(func(m domain.Message) bool { return m.SenderID == userID || m.ReceiverID == userID })
	slices.Reverse(out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) messagesWhere(keep func(domain.Message) bool) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Message{}
	for _, id := range s.msgOrder {
		if m := s.msgs[id]; keep(m) {
			out = append(out, m)
		}
	}
	return out
}

func (s *Store) MarkMessageRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.msgs[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.Read = true
	s.msgs[id] = m
	return nil
}
