package domain

import (
	"fmt"
	"strings"
	"time"
)

type InquiryStatus string

const (
	InquiryPending   InquiryStatus = "pending"
	InquiryResponded InquiryStatus = "responded"
	InquiryAccepted  InquiryStatus = "accepted"
	InquiryRejected  InquiryStatus = "rejected"
	InquiryCancelled InquiryStatus = "cancelled"
)

var InquiryStatuses = []InquiryStatus{InquiryPending, InquiryResponded, InquiryAccepted, InquiryRejected, InquiryCancelled}

func (s InquiryStatus) Valid() bool {
	for _, v := range InquiryStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Closed inquiries accept no further response or status change.
func (s InquiryStatus) Closed() bool {
	return s == InquiryAccepted || s == InquiryRejected || s == InquiryCancelled
}

const MaxMessageBody = 4000

// Inquiry is a tenant's question to a listing's landlord, answered at most
// once and then accepted or rejected.
type Inquiry struct {
	ID            string        `json:"id"`
	PropertyID    string        `json:"propertyId"`
	PropertyTitle string        `json:"propertyTitle"`
	LandlordID    string        `json:"landlordId"`
	TenantID      string        `json:"tenantId"`
	TenantName    string        `json:"tenantName"`
	TenantEmail   string        `json:"tenantEmail"`
	TenantPhone   *string       `json:"tenantPhone,omitempty"`
	Message       string        `json:"message"`
	Status        InquiryStatus `json:"status"`
	Response      *string       `json:"response,omitempty"`
	ResponseAt    *time.Time    `json:"responseAt,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// InquiryStats summarizes a landlord's inbox.
type InquiryStats struct {
	Total      int                   `json:"total"`
	ByStatus   map[InquiryStatus]int `json:"byStatus"`
	ByProperty map[string]int        `json:"byProperty"`
	// AvgResponseSeconds averages over answered inquiries only.
	AvgResponseSeconds float64 `json:"avgResponseSeconds"`
}

func StatsOf(qs []Inquiry) InquiryStats {
	st := InquiryStats{Total: len(qs), ByStatus: map[InquiryStatus]int{}, ByProperty: map[string]int{}}
	for _, s := range InquiryStatuses {
		st.ByStatus[s] = 0
	}
	var total time.Duration
	answered := 0
	for _, q := range qs {
		st.ByStatus[q.Status]++
		st.ByProperty[q.PropertyID]++
		if q.ResponseAt != nil {
			total += q.ResponseAt.Sub(q.CreatedAt)
			answered++
		}
	}
	if answered > 0 {
		st.AvgResponseSeconds = total.Seconds() / float64(answered)
	}
	return st
}

// Message is one direct message about a listing between two users.
type Message struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"propertyId"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Conversation is the latest message of one (listing, counterpart) thread.
type Conversation struct {
	PropertyID  string  `json:"propertyId"`
	OtherUserID string  `json:"otherUserId"`
	Last        Message `json:"last"`
	Unread      int     `json:"unread"`
}

func checkText(field, s string, max int) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, field)
	}
	if len(s) > max {
		return fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalid, field, max)
	}
	return nil
}

func (q Inquiry) Validate() error { return checkText("message", q.Message, MaxMessageBody) }

func (m Message) Validate() error {
	if m.SenderID == m.ReceiverID {
		return fmt.Errorf("%w: cannot message yourself", ErrInvalid)
	}
	return checkText("content", m.Content, MaxMessageBody)
}
